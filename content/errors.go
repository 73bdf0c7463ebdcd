package content

import (
	"errors"
	"fmt"
)

// Kind classifies the failures the content layer can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindEmptyCollection
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindEmptyCollection:
		return "empty_collection"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	// ErrNoPosts is returned by FeaturedPost when there is nothing to feature.
	ErrNoPosts = errors.New("no blog posts available")
	// ErrNotFound matches every *PostNotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// PostNotFoundError is raised at the page boundary when a slug has no post.
// PostBySlug itself never returns it.
type PostNotFoundError struct {
	Slug string
}

func (e *PostNotFoundError) Error() string {
	return fmt.Sprintf("blog post with slug %q not found", e.Slug)
}

func (e *PostNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a malformed field in the dataset or in an argument.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, fmt.Sprint(e.Value))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// KindOf reports which kind of failure err is. Wrapped and combined errors are
// inspected; the first recognised kind wins in the order EmptyCollection,
// NotFound, Validation.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNoPosts):
		return KindEmptyCollection
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindUnknown
	}
}
