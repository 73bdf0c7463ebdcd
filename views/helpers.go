package views

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/eringen/blogsite/content"
	"github.com/eringen/blogsite/markdown"
)

// cardTagLimit is how many tags a post card shows.
const cardTagLimit = 3

var funcs = template.FuncMap{
	"displayDate":   DisplayDate,
	"cardTitle":     CardTitle,
	"cardExcerpt":   CardExcerpt,
	"featuredImage": content.FeaturedImage,
	"authorImage":   content.AuthorImage,
	"topTags":       TopTags,
	"postURL":       PostURL,
	"tagURL":        TagURL,
	"lower":         strings.ToLower,
}

// DisplayDate formats an ISO date for humans, falling back to the raw value
// when it cannot be parsed.
func DisplayDate(date string) string {
	s, err := content.FormatDate(date)
	if err != nil {
		return date
	}
	return s
}

// CardTitle shortens a title for a post card.
func CardTitle(title string) string {
	return content.TruncateText(title, content.MaxTitleLength)
}

// CardExcerpt shortens an excerpt for a post card.
func CardExcerpt(excerpt string) string {
	return content.TruncateText(excerpt, content.MaxExcerptLength)
}

// TopTags returns at most n tags.
func TopTags(tags []string, n int) []string {
	if len(tags) <= n {
		return tags
	}
	return tags[:n]
}

// PostURL returns the detail page path for slug.
func PostURL(slug string) string {
	return "/blogs/" + url.PathEscape(slug) + "/"
}

// TagURL returns the listing path filtered to tag.
func TagURL(tag string) string {
	return "/blogs/?tag=" + url.QueryEscape(tag)
}

func renderBody(md string) template.HTML {
	var buf bytes.Buffer
	markdown.Render(&buf, md)
	return template.HTML(buf.String())
}
