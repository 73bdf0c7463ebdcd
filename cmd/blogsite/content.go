package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/eringen/blogsite"
	"github.com/eringen/blogsite/content"
)

func newSeedCmd() *cobra.Command {
	var dbPath, contentDir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a content dataset into a SQLite snapshot",
		Long: "Seed validates the YAML content in --content (or the built-in sample\n" +
			"content) and replaces everything in the --db snapshot with it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				return errors.New("--db is required")
			}
			d, err := loadYAML(contentDir)
			if err != nil {
				return err
			}
			if err := content.Validate(d); err != nil {
				return err
			}
			store, err := blogsite.NewStore(dbPath)
			if err != nil {
				return err
			}
			err = store.SaveDataset(d)
			err = multierr.Append(err, store.Close())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d posts, %d faqs\n", dbPath, len(d.Posts), len(d.FAQs))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite snapshot to write")
	cmd.Flags().StringVar(&contentDir, "content", "", "directory with posts.yaml, author.yaml and faqs.yaml (default: built-in content)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var dbPath, contentDir string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a content dataset and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath != "" && contentDir != "" {
				return errors.New("use either --db or --content, not both")
			}
			var d content.Dataset
			var err error
			if dbPath != "" {
				d, err = loadSnapshot(dbPath)
			} else {
				d, err = loadYAML(contentDir)
			}
			if err != nil {
				return err
			}
			store, err := content.NewStore(d)
			if err != nil {
				return err
			}
			return summarize(cmd.OutOrStdout(), store)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite snapshot to read")
	cmd.Flags().StringVar(&contentDir, "content", "", "YAML content directory to read")
	return cmd
}

func loadYAML(dir string) (content.Dataset, error) {
	if dir == "" {
		return content.Builtin()
	}
	return content.LoadDir(os.DirFS(dir))
}

func loadSnapshot(path string) (d content.Dataset, err error) {
	if _, err := os.Stat(path); err != nil {
		return content.Dataset{}, err
	}
	store, err := blogsite.NewStore(path)
	if err != nil {
		return content.Dataset{}, err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()
	return store.LoadDataset()
}

func summarize(w io.Writer, s *content.Store) error {
	posts := s.Posts()
	fmt.Fprintf(w, "%d posts, %d faqs, %d tags\n", len(posts), len(s.FAQs()), len(content.Tags(posts)))
	fmt.Fprintf(w, "author: %s\n", s.Author().Name)

	featured, err := content.FeaturedPost(posts)
	switch {
	case errors.Is(err, content.ErrNoPosts):
		fmt.Fprintln(w, "featured: none")
		return nil
	case err != nil:
		return err
	}
	date, err := content.FormatDate(featured.PublishedDate)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "featured: %s (%s)\n", featured.Slug, date)
	for _, slug := range content.PostSlugs(content.SortPostsByDate(posts)) {
		fmt.Fprintf(w, "  /blogs/%s/\n", slug)
	}
	return nil
}
