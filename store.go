package blogsite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	_ "modernc.org/sqlite"

	"github.com/eringen/blogsite/content"
)

// Store keeps a snapshot of the content dataset in SQLite. The site reads it
// once at startup; `blogsite seed` writes it.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    position INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    content TEXT NOT NULL,
    author TEXT NOT NULL,
    published_date TEXT NOT NULL,
    featured_image TEXT NOT NULL DEFAULT '',
    reading_time INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS post_tags (
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (post_id, position)
);
CREATE TABLE IF NOT EXISTS author (
    singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
    name TEXT NOT NULL,
    bio TEXT NOT NULL,
    profile_image TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS author_expertise (
    position INTEGER PRIMARY KEY,
    item TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS social_links (
    position INTEGER PRIMARY KEY,
    platform TEXT NOT NULL,
    url TEXT NOT NULL,
    label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS faqs (
    position INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL
);
`)
	return err
}

// SaveDataset replaces the stored snapshot with d in one transaction.
func (s *Store) SaveDataset(d content.Dataset) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	for _, table := range []string{"post_tags", "posts", "author_expertise", "social_links", "author", "faqs"} {
		if _, err = tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, p := range d.Posts {
		if _, err = tx.Exec(`INSERT INTO posts (position, id, slug, title, excerpt, content, author, published_date, featured_image, reading_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, p.ID, p.Slug, p.Title, p.Excerpt, p.Content, p.Author, p.PublishedDate, p.FeaturedImage, p.ReadingTime); err != nil {
			return fmt.Errorf("insert post %s: %w", p.Slug, err)
		}
		for j, t := range p.Tags {
			if _, err = tx.Exec(`INSERT INTO post_tags (post_id, position, tag) VALUES (?, ?, ?)`, p.ID, j, t); err != nil {
				return fmt.Errorf("insert tag for %s: %w", p.Slug, err)
			}
		}
	}

	a := d.Author
	if _, err = tx.Exec(`INSERT INTO author (singleton, name, bio, profile_image) VALUES (1, ?, ?, ?)`,
		a.Name, a.Bio, a.ProfileImage); err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	for i, e := range a.Expertise {
		if _, err = tx.Exec(`INSERT INTO author_expertise (position, item) VALUES (?, ?)`, i, e); err != nil {
			return fmt.Errorf("insert expertise: %w", err)
		}
	}
	for i, l := range a.SocialLinks {
		if _, err = tx.Exec(`INSERT INTO social_links (position, platform, url, label) VALUES (?, ?, ?, ?)`,
			i, l.Platform, l.URL, l.Label); err != nil {
			return fmt.Errorf("insert social link: %w", err)
		}
	}

	for i, f := range d.FAQs {
		if _, err = tx.Exec(`INSERT INTO faqs (position, id, question, answer, category, sort_order) VALUES (?, ?, ?, ?, ?, ?)`,
			i, f.ID, f.Question, f.Answer, f.Category, f.Order); err != nil {
			return fmt.Errorf("insert faq %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// LoadDataset reads the snapshot back in the order it was saved. An empty
// database yields an empty dataset.
func (s *Store) LoadDataset() (content.Dataset, error) {
	var d content.Dataset
	var err error
	if d.Posts, err = s.loadPosts(); err != nil {
		return content.Dataset{}, err
	}
	if d.Author, err = s.loadAuthor(); err != nil {
		return content.Dataset{}, err
	}
	if d.FAQs, err = s.loadFAQs(); err != nil {
		return content.Dataset{}, err
	}
	return d, nil
}

func (s *Store) loadPosts() ([]content.Post, error) {
	rows, err := s.db.Query(`SELECT id, slug, title, excerpt, content, author, published_date, featured_image, reading_time FROM posts ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	index := make(map[string]int)
	for rows.Next() {
		var p content.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.Author, &p.PublishedDate, &p.FeaturedImage, &p.ReadingTime); err != nil {
			return nil, err
		}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := s.db.Query(`SELECT post_id, tag FROM post_tags ORDER BY post_id, position`)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var id, tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			posts[i].Tags = append(posts[i].Tags, tag)
		}
	}
	return posts, tagRows.Err()
}

func (s *Store) loadAuthor() (content.AuthorProfile, error) {
	var a content.AuthorProfile
	err := s.db.QueryRow(`SELECT name, bio, profile_image FROM author WHERE singleton = 1`).
		Scan(&a.Name, &a.Bio, &a.ProfileImage)
	if err == sql.ErrNoRows {
		return a, nil
	}
	if err != nil {
		return a, err
	}

	if a.Expertise, err = s.queryStrings(`SELECT item FROM author_expertise ORDER BY position`); err != nil {
		return a, err
	}

	rows, err := s.db.Query(`SELECT platform, url, label FROM social_links ORDER BY position`)
	if err != nil {
		return a, err
	}
	defer rows.Close()
	for rows.Next() {
		var l content.SocialLink
		if err := rows.Scan(&l.Platform, &l.URL, &l.Label); err != nil {
			return a, err
		}
		a.SocialLinks = append(a.SocialLinks, l)
	}
	return a, rows.Err()
}

func (s *Store) loadFAQs() ([]content.FAQItem, error) {
	rows, err := s.db.Query(`SELECT id, question, answer, category, sort_order FROM faqs ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []content.FAQItem
	for rows.Next() {
		var f content.FAQItem
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.Order); err != nil {
			return nil, err
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

func (s *Store) queryStrings(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
