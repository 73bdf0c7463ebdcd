package content

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Store is a read-only snapshot of a Dataset. It is safe for concurrent use
// because nothing can change it after NewStore returns.
type Store struct {
	posts  []Post
	author AuthorProfile
	faqs   []FAQItem
}

// NewStore validates d and takes a private copy of it.
func NewStore(d Dataset) (*Store, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}
	return &Store{
		posts:  clonePosts(d.Posts),
		author: cloneAuthor(d.Author),
		faqs:   cloneFAQs(d.FAQs),
	}, nil
}

// Posts returns the posts in dataset order.
func (s *Store) Posts() []Post {
	return clonePosts(s.posts)
}

func (s *Store) Author() AuthorProfile {
	return cloneAuthor(s.author)
}

// FAQs returns the FAQ items in dataset order (not sorted by Order).
func (s *Store) FAQs() []FAQItem {
	return cloneFAQs(s.faqs)
}

// Dataset returns a copy of the whole snapshot.
func (s *Store) Dataset() Dataset {
	return Dataset{Posts: s.Posts(), Author: s.Author(), FAQs: s.FAQs()}
}

// Validate checks d and reports every problem at once. Each problem is a
// *ValidationError; the result matches ErrValidation.
func Validate(d Dataset) error {
	var errs error
	ids := make(map[string]struct{}, len(d.Posts))
	slugs := make(map[string]struct{}, len(d.Posts))
	for i, p := range d.Posts {
		field := func(name string) string {
			return fmt.Sprintf("posts[%d].%s", i, name)
		}
		if strings.TrimSpace(p.ID) == "" {
			errs = multierr.Append(errs, &ValidationError{Field: field("id"), Value: p.ID, Message: "must not be empty"})
		} else if _, dup := ids[p.ID]; dup {
			errs = multierr.Append(errs, &ValidationError{Field: field("id"), Value: p.ID, Message: "duplicate id"})
		}
		ids[p.ID] = struct{}{}

		switch {
		case p.Slug == "":
			errs = multierr.Append(errs, &ValidationError{Field: field("slug"), Value: p.Slug, Message: "must not be empty"})
		case !isURLSafe(p.Slug):
			errs = multierr.Append(errs, &ValidationError{Field: field("slug"), Value: p.Slug, Message: "must be lowercase letters, digits and dashes"})
		}
		if _, dup := slugs[p.Slug]; dup && p.Slug != "" {
			errs = multierr.Append(errs, &ValidationError{Field: field("slug"), Value: p.Slug, Message: "duplicate slug"})
		}
		slugs[p.Slug] = struct{}{}

		if _, err := parseDate(p.PublishedDate); err != nil {
			errs = multierr.Append(errs, &ValidationError{Field: field("publishedDate"), Value: p.PublishedDate, Message: "not an ISO calendar date"})
		}
		if p.ReadingTime < 0 {
			errs = multierr.Append(errs, &ValidationError{Field: field("readingTime"), Value: p.ReadingTime, Message: "must be positive"})
		}
	}

	faqIDs := make(map[string]struct{}, len(d.FAQs))
	for i, f := range d.FAQs {
		if _, dup := faqIDs[f.ID]; dup || f.ID == "" {
			errs = multierr.Append(errs, &ValidationError{Field: fmt.Sprintf("faqs[%d].id", i), Value: f.ID, Message: "must be unique and not empty"})
		}
		faqIDs[f.ID] = struct{}{}
	}
	return errs
}

func isURLSafe(slug string) bool {
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
