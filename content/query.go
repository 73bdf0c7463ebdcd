package content

import (
	"slices"
	"strings"
	"time"
)

const (
	// DefaultPlaceholderImage stands in for a post without a featured image.
	DefaultPlaceholderImage = "/images/placeholder.jpg"
	// DefaultAuthorImage stands in for a missing author profile image.
	DefaultAuthorImage = "/images/placeholder.svg"

	MaxTitleLength   = 60
	MaxExcerptLength = 150

	// DateLayout is the layout of Post.PublishedDate.
	DateLayout = "2006-01-02"

	displayLayout = "January 2, 2006"
	ellipsis      = "..."
)

// FeaturedPost returns the most recently published post. Posts are scanned in
// order and the current pick is only replaced by a strictly newer one, so on
// equal dates the earlier post wins.
func FeaturedPost(posts []Post) (Post, error) {
	if len(posts) == 0 {
		return Post{}, ErrNoPosts
	}
	latest := posts[0]
	latestAt := publishedAt(latest)
	for _, p := range posts[1:] {
		if at := publishedAt(p); at.After(latestAt) {
			latest, latestAt = p, at
		}
	}
	return latest, nil
}

// PostBySlug returns the first post whose slug equals slug exactly.
func PostBySlug(posts []Post, slug string) (Post, bool) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}

// SortPostsByDate returns a new slice ordered newest first. Posts published on
// the same date keep their relative order; posts is not modified.
func SortPostsByDate(posts []Post) []Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b Post) int {
		return publishedAt(b).Compare(publishedAt(a))
	})
	return out
}

// TruncateText cuts text to maxLength characters and appends "..." when it is
// longer than that. It does not look for word boundaries.
func TruncateText(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + ellipsis
}

// FeaturedImage returns the post's image or the placeholder.
func FeaturedImage(p Post) string {
	if p.FeaturedImage != "" {
		return p.FeaturedImage
	}
	return DefaultPlaceholderImage
}

// AuthorImage returns the author's profile image or the placeholder.
func AuthorImage(a AuthorProfile) string {
	if a.ProfileImage != "" {
		return a.ProfileImage
	}
	return DefaultAuthorImage
}

// FormatDate renders an ISO calendar date as "December 1, 2025". The date is
// never shifted into a local zone.
func FormatDate(date string) (string, error) {
	t, err := parseDate(date)
	if err != nil {
		return "", &ValidationError{Field: "publishedDate", Value: date, Message: "not an ISO calendar date"}
	}
	return t.Format(displayLayout), nil
}

// SortFAQs returns the items ordered by Order, keeping dataset order on ties.
func SortFAQs(faqs []FAQItem) []FAQItem {
	out := slices.Clone(faqs)
	slices.SortStableFunc(out, func(a, b FAQItem) int {
		return a.Order - b.Order
	})
	return out
}

// PostSlugs lists every slug in collection order, one per post.
func PostSlugs(posts []Post) []string {
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

// FilterByTag returns the posts carrying tag, compared case-insensitively.
// An empty tag returns posts unchanged.
func FilterByTag(posts []Post, tag string) []Post {
	want := normalizeTag(tag)
	if want == "" {
		return posts
	}
	var out []Post
	for _, p := range posts {
		if hasTag(p, want) {
			out = append(out, p)
		}
	}
	return out
}

// Tags returns every distinct tag across posts, spelled as first seen and
// sorted case-insensitively.
func Tags(posts []Post) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range posts {
		for _, t := range p.Tags {
			key := normalizeTag(t)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, strings.TrimSpace(t))
		}
	}
	slices.SortFunc(tags, func(a, b string) int {
		return strings.Compare(normalizeTag(a), normalizeTag(b))
	})
	return tags
}

// RelatedPosts returns up to limit posts sharing at least one tag with
// current, in collection order. A limit <= 0 means no limit.
func RelatedPosts(current Post, posts []Post, limit int) []Post {
	var related []Post
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range current.Tags {
			if key := normalizeTag(t); key != "" && hasTag(p, key) {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

func hasTag(p Post, normalized string) bool {
	for _, t := range p.Tags {
		if normalizeTag(t) == normalized {
			return true
		}
	}
	return false
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// publishedAt orders posts; an unparseable date sorts as the oldest.
func publishedAt(p Post) time.Time {
	t, err := parseDate(p.PublishedDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, nil
	}
	ts, tsErr := time.Parse(time.RFC3339, s)
	if tsErr != nil {
		return time.Time{}, err
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
