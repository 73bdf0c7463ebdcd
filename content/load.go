package content

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Dataset files, relative to the directory passed to LoadDir.
const (
	PostsFile  = "posts.yaml"
	AuthorFile = "author.yaml"
	FAQsFile   = "faqs.yaml"
)

//go:embed data/*.yaml
var builtin embed.FS

// Builtin returns the sample dataset compiled into the binary.
func Builtin() (Dataset, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return Dataset{}, err
	}
	return LoadDir(sub)
}

// LoadDir reads posts.yaml, author.yaml and faqs.yaml from fsys. The files
// are decoded strictly: unknown keys are an error.
func LoadDir(fsys fs.FS) (Dataset, error) {
	var posts, author, faqs Dataset
	if err := decodeFile(fsys, PostsFile, &posts); err != nil {
		return Dataset{}, err
	}
	if err := decodeFile(fsys, AuthorFile, &author); err != nil {
		return Dataset{}, err
	}
	if err := decodeFile(fsys, FAQsFile, &faqs); err != nil {
		return Dataset{}, err
	}
	return Dataset{Posts: posts.Posts, Author: author.Author, FAQs: faqs.FAQs}, nil
}

func decodeFile(fsys fs.FS, name string, into *Dataset) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("content: open %s: %w", name, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("content: decode %s: %w", name, err)
	}
	return nil
}
