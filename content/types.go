// Package content holds the blog's immutable dataset and the pure query
// functions the pages are built from: featured post selection, slug lookup,
// date ordering, text truncation, image fallback and date formatting.
//
// Every query takes its collection as an argument. A Store is built once per
// process and only ever hands out copies.
package content

// Post is a single article. PublishedDate is a calendar date in DateLayout.
type Post struct {
	ID            string   `yaml:"id"`
	Slug          string   `yaml:"slug"`
	Title         string   `yaml:"title"`
	Excerpt       string   `yaml:"excerpt"`
	Content       string   `yaml:"content"`
	Author        string   `yaml:"author"`
	PublishedDate string   `yaml:"publishedDate"`
	FeaturedImage string   `yaml:"featuredImage,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
	ReadingTime   int      `yaml:"readingTime,omitempty"` // minutes, 0 when unknown
}

// Link returns the site-relative URL of the post detail page.
func (p Post) Link() string {
	return "/blogs/" + p.Slug + "/"
}

// SocialLink is one entry in the author's "connect" list.
type SocialLink struct {
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
	Label    string `yaml:"label"`
}

// AuthorProfile describes the one author of the site.
type AuthorProfile struct {
	Name         string       `yaml:"name"`
	Bio          string       `yaml:"bio"`
	ProfileImage string       `yaml:"profileImage,omitempty"`
	Expertise    []string     `yaml:"expertise"`
	SocialLinks  []SocialLink `yaml:"socialLinks,omitempty"`
}

// FAQItem is a question shown on the FAQ page. Order is not unique.
type FAQItem struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Category string `yaml:"category,omitempty"`
	Order    int    `yaml:"order"`
}

// Dataset is everything the site shows, as loaded from YAML or a snapshot
// database.
type Dataset struct {
	Posts  []Post        `yaml:"posts"`
	Author AuthorProfile `yaml:"author"`
	FAQs   []FAQItem     `yaml:"faqs"`
}

func clonePost(p Post) Post {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

func clonePosts(posts []Post) []Post {
	if posts == nil {
		return nil
	}
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = clonePost(p)
	}
	return out
}

func cloneAuthor(a AuthorProfile) AuthorProfile {
	if a.Expertise != nil {
		a.Expertise = append([]string(nil), a.Expertise...)
	}
	if a.SocialLinks != nil {
		a.SocialLinks = append([]SocialLink(nil), a.SocialLinks...)
	}
	return a
}

func cloneFAQs(faqs []FAQItem) []FAQItem {
	if faqs == nil {
		return nil
	}
	return append([]FAQItem(nil), faqs...)
}
