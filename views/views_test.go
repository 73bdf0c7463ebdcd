package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/eringen/blogsite/content"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testSite = Site{Name: "My Blog", Description: "Articles on web development.", URL: "https://myblog.com"}

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func samplePost() content.Post {
	return content.Post{
		ID:            "1",
		Slug:          "getting-started-with-nextjs",
		Title:         "Getting Started with Next.js: A Complete Guide",
		Excerpt:       "Learn how to build modern web applications.",
		Content:       "# Getting Started\n\n## Why Next.js?\n\n- SSR\n- Routing\n\n## Conclusion\n\nDone.",
		Author:        "John Doe",
		PublishedDate: "2025-12-01",
		Tags:          []string{"Next.js", "React", "Web Development", "Extra"},
		ReadingTime:   5,
	}
}

func TestHomeFeatured(t *testing.T) {
	p := samplePost()
	doc := renderDoc(t, Home(testSite, &p))

	assert.Equal(t, "My Blog", doc.Find("title").Text())
	featured := doc.Find("section.featured")
	require.Equal(t, 1, featured.Length())
	assert.Equal(t, p.Title, strings.TrimSpace(featured.Find("h1").Text()))
	assert.Equal(t, "December 1, 2025", featured.Find("time").Text())
	assert.Equal(t, content.DefaultPlaceholderImage, featured.Find("img").AttrOr("src", ""))
	assert.Equal(t, "/blogs/getting-started-with-nextjs/", featured.Find("a.read-more").AttrOr("href", ""))
	assert.Contains(t, featured.Text(), "5 min read")
	assert.Equal(t, "page", doc.Find(`nav li a[href="/"]`).AttrOr("aria-current", ""))
}

func TestHomeEmpty(t *testing.T) {
	doc := renderDoc(t, Home(testSite, nil))
	assert.Equal(t, 0, doc.Find("section.featured").Length())
	assert.Equal(t, "No posts yet", doc.Find("section.empty h1").Text())
}

func TestBlogsCards(t *testing.T) {
	long := samplePost()
	long.Slug = "long"
	long.Title = strings.Repeat("a", 70)
	long.Excerpt = strings.Repeat("b", 200)
	long.FeaturedImage = "/images/custom.jpg"

	doc := renderDoc(t, Blogs(testSite, []content.Post{samplePost(), long}, 20, []string{"React", "Next.js"}, "react"))

	assert.Equal(t, "All Blog Posts | My Blog", doc.Find("title").Text())
	assert.Contains(t, doc.Find(".page-header p").Text(), "Explore 20 articles")

	cards := doc.Find("a.card")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "/blogs/getting-started-with-nextjs/", cards.First().AttrOr("href", ""))
	assert.Equal(t, 3, cards.First().Find(".tags li").Length(), "cards show three tags")
	assert.Contains(t, cards.First().Text(), "5 min")

	second := cards.Eq(1)
	assert.Equal(t, strings.Repeat("a", 60)+"...", second.Find("h2").Text())
	assert.Equal(t, strings.Repeat("b", 150)+"...", second.Find(".excerpt").Text())
	assert.Equal(t, "/images/custom.jpg", second.Find("img").AttrOr("src", ""))

	active := doc.Find(".tag-filter a.active")
	require.Equal(t, 1, active.Length())
	assert.Equal(t, "React", active.Text())
}

func TestBlogsNoMatches(t *testing.T) {
	doc := renderDoc(t, Blogs(testSite, nil, 20, []string{"Go"}, "rust"))
	assert.Contains(t, doc.Find(".grid .empty").Text(), "rust")
}

func TestBlogsWithoutPosts(t *testing.T) {
	doc := renderDoc(t, Blogs(Site{}, nil, 0, nil, ""))
	empty := doc.Find(".grid .empty")
	require.Equal(t, 1, empty.Length())
	assert.Equal(t, "No posts yet. Check back soon.", empty.Text())
	assert.NotContains(t, empty.Text(), "tagged")
	assert.Equal(t, 0, doc.Find(".tag-filter").Length())
}

func TestPostPage(t *testing.T) {
	p := samplePost()
	related := content.Post{Slug: "react-hooks-deep-dive", Title: "React Hooks", PublishedDate: "2025-11-20"}
	doc := renderDoc(t, Post(testSite, p, []content.Post{related}))

	assert.Equal(t, p.Title+" | My Blog", doc.Find("title").Text())
	assert.Equal(t, "John Doe", doc.Find(".meta .author").Text())
	assert.Equal(t, "2025-12-01", doc.Find(".meta time").AttrOr("datetime", ""))
	assert.Equal(t, "5 min read", doc.Find(".reading-time").Text())
	assert.Equal(t, 4, doc.Find("header .tags li").Length(), "detail page shows every tag")
	assert.Equal(t, "/blogs/?tag=Next.js", doc.Find("header .tags a").First().AttrOr("href", ""))

	prose := doc.Find(".prose")
	assert.Equal(t, 1, prose.Find("h2#why-next-js").Length())
	assert.Equal(t, 2, prose.Find("ul li").Length())

	outline := doc.Find("nav.outline a")
	require.Equal(t, 2, outline.Length())
	assert.Equal(t, "#why-next-js", outline.First().AttrOr("href", ""))

	assert.Equal(t, "/blogs/react-hooks-deep-dive/", doc.Find("aside.related a.card").AttrOr("href", ""))
}

func TestPostWithoutReadingTimeOrTags(t *testing.T) {
	p := samplePost()
	p.ReadingTime = 0
	p.Tags = nil
	doc := renderDoc(t, Post(testSite, p, nil))
	assert.Equal(t, 0, doc.Find(".reading-time").Length())
	assert.Equal(t, 0, doc.Find("header .tags").Length())
	assert.Equal(t, 0, doc.Find("aside.related").Length())
}

func TestAboutPage(t *testing.T) {
	author := content.AuthorProfile{
		Name:      "John Doe",
		Bio:       "Full-stack developer.",
		Expertise: []string{"Go", "Web Development"},
		SocialLinks: []content.SocialLink{
			{Platform: "GitHub", URL: "https://github.com/johndoe", Label: "github.com/johndoe"},
			{Platform: "Email", URL: "mailto:john@example.com", Label: "john@example.com"},
		},
	}
	doc := renderDoc(t, About(testSite, author))

	assert.Equal(t, content.DefaultAuthorImage, doc.Find(".profile img").AttrOr("src", ""))
	assert.Equal(t, 2, doc.Find(".expertise li").Length())
	links := doc.Find(".social a")
	require.Equal(t, 2, links.Length())
	assert.Equal(t, "mailto:john@example.com", links.Eq(1).AttrOr("href", ""))
}

func TestAboutWithoutSocialLinks(t *testing.T) {
	doc := renderDoc(t, About(testSite, content.AuthorProfile{Name: "A", ProfileImage: "/me.png"}))
	assert.Equal(t, 0, doc.Find(".social").Length())
	assert.Equal(t, "/me.png", doc.Find(".profile img").AttrOr("src", ""))
}

func TestFAQFirstItemExpanded(t *testing.T) {
	faqs := []content.FAQItem{
		{ID: "faq-1", Question: "How often?", Answer: "Weekly.", Category: "General", Order: 1},
		{ID: "faq-2", Question: "Guest posts?", Answer: "Yes.", Order: 2},
	}
	doc := renderDoc(t, FAQ(testSite, faqs))

	items := doc.Find("details.faq-item")
	require.Equal(t, 2, items.Length())
	_, open := items.First().Attr("open")
	assert.True(t, open)
	_, open = items.Eq(1).Attr("open")
	assert.False(t, open)
	assert.Equal(t, "How often?", items.First().Find("summary").Text())
	assert.Equal(t, "General", items.First().Find(".category").Text())
	assert.Equal(t, 0, items.Eq(1).Find(".category").Length())
}

func TestErrorPages(t *testing.T) {
	doc := renderDoc(t, NotFound(testSite))
	assert.Equal(t, "404", doc.Find(".not-found h1").Text())

	doc = renderDoc(t, ServerError(testSite))
	assert.Equal(t, "500", doc.Find(".server-error h1").Text())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "December 1, 2025", DisplayDate("2025-12-01"))
	assert.Equal(t, "someday", DisplayDate("someday"))
	assert.Equal(t, []string{"a", "b"}, TopTags([]string{"a", "b"}, 3))
	assert.Equal(t, []string{"a", "b", "c"}, TopTags([]string{"a", "b", "c", "d"}, 3))
	assert.Equal(t, "/blogs/?tag=Web+Development", TagURL("Web Development"))
	assert.Equal(t, "/blogs/a%20b/", PostURL("a b"))
}
