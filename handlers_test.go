package blogsite

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogsite/content"
	"github.com/eringen/blogsite/views"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(t *testing.T) SiteConfig {
	t.Helper()
	return SiteConfig{
		StaticDir:     t.TempDir(),
		PageCacheSize: 8 * 1024 * 1024,
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	return newTestAppWithConfig(t, testConfig(t), opts...)
}

func newTestAppWithConfig(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	a := New(cfg, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, a.Setup())
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	return a
}

func get(t *testing.T, a *App, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestHomeShowsFeaturedPost(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, echoHTML, rec.Header().Get("Content-Type"))

	doc := parse(t, rec)
	assert.Equal(t, "Getting Started with Next.js: A Complete Guide", doc.Find("section.featured h1").Text())
	assert.Equal(t, "/blogs/getting-started-with-nextjs/", doc.Find("section.featured a.read-more").AttrOr("href", ""))
	assert.Equal(t, "My Blog", doc.Find("title").Text())
}

const echoHTML = "text/html; charset=UTF-8"

func TestHomeWithoutPosts(t *testing.T) {
	a := newTestApp(t, WithDataset(content.Dataset{Author: content.AuthorProfile{Name: "A"}}))
	rec := get(t, a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)
	assert.Equal(t, 0, doc.Find("section.featured").Length())
	assert.Equal(t, "No posts yet", doc.Find("section.empty h1").Text())
}

func TestBlogsListsNewestFirst(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/blogs/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parse(t, rec)
	cards := doc.Find(".grid a.card")
	require.Equal(t, 20, cards.Length())
	assert.Equal(t, "/blogs/getting-started-with-nextjs/", cards.First().AttrOr("href", ""))
	assert.Equal(t, "/blogs/microservices-architecture/", cards.Last().AttrOr("href", ""))
	assert.Contains(t, doc.Find(".page-header p").Text(), "Explore 20 articles")
	cards.Each(func(_ int, s *goquery.Selection) {
		assert.LessOrEqual(t, s.Find(".tags li").Length(), 3)
	})
}

func TestBlogsFilterByTag(t *testing.T) {
	a := newTestApp(t)
	doc := parse(t, get(t, a, "/blogs/?tag=css"))

	var hrefs []string
	doc.Find(".grid a.card").Each(func(_ int, s *goquery.Selection) {
		hrefs = append(hrefs, s.AttrOr("href", ""))
	})
	assert.Equal(t, []string{
		"/blogs/tailwind-css-tips/",
		"/blogs/modern-css-layouts/",
		"/blogs/responsive-web-design/",
	}, hrefs)
	assert.Equal(t, "CSS", doc.Find(".tag-filter a.active").Text())
	assert.Contains(t, doc.Find(".page-header p").Text(), "Explore 20 articles")
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/blogs/react-hooks-deep-dive/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parse(t, rec)
	assert.Equal(t, "React Hooks: A Deep Dive", strings.TrimSpace(doc.Find("article.post header h1").Text()))
	assert.Equal(t, "November 20, 2025", doc.Find("article.post > header .meta time").Text())
	assert.Greater(t, doc.Find(".prose h2").Length(), 0)

	related := doc.Find("aside.related a.card")
	assert.Greater(t, related.Length(), 0)
	assert.LessOrEqual(t, related.Length(), relatedLimit)
	related.Each(func(_ int, s *goquery.Selection) {
		assert.NotEqual(t, "/blogs/react-hooks-deep-dive/", s.AttrOr("href", ""))
		date := s.Find(".meta time")
		require.Equal(t, 1, date.Length())
		assert.Equal(t, views.DisplayDate(date.AttrOr("datetime", "")), date.Text())
	})
	assert.Equal(t, "December 1, 2025", related.First().Find(".meta time").Text())
}

func TestPostNotFound(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/blogs/missing-post/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	doc := parse(t, rec)
	assert.Equal(t, "404", doc.Find(".not-found h1").Text())
}

func TestResolvePost(t *testing.T) {
	a := newTestApp(t)
	p, err := a.resolvePost("docker-for-developers")
	require.NoError(t, err)
	assert.Equal(t, "14", p.ID)

	_, err = a.resolvePost("missing-post")
	var nf *content.PostNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing-post", nf.Slug)
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/nowhere/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404", parse(t, rec).Find(".not-found h1").Text())
}

func TestRedirects(t *testing.T) {
	a := newTestApp(t)
	for target, want := range map[string]string{
		"/blog":  "/blogs/",
		"/about": "/about/",
		"/blogs": "/blogs/",
	} {
		rec := get(t, a, target)
		assert.Equal(t, http.StatusMovedPermanently, rec.Code, target)
		assert.Equal(t, want, rec.Header().Get("Location"), target)
	}
}

func TestAboutPage(t *testing.T) {
	a := newTestApp(t)
	doc := parse(t, get(t, a, "/about/"))
	assert.Equal(t, "John Doe", doc.Find(".profile h2").Text())
	assert.Equal(t, 6, doc.Find(".expertise li").Length())
	assert.Equal(t, 4, doc.Find(".social a").Length())
}

func TestFAQPage(t *testing.T) {
	a := newTestApp(t)
	doc := parse(t, get(t, a, "/faq/"))
	items := doc.Find("details.faq-item")
	require.Equal(t, 8, items.Length())
	assert.Equal(t, "faq-1", items.First().AttrOr("id", ""))
	_, open := items.First().Attr("open")
	assert.True(t, open)
	assert.Equal(t, "How often do you publish new blog posts?", items.First().Find("summary").Text())
}

func TestServerErrorPage(t *testing.T) {
	broken := func(views.Site, content.AuthorProfile) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("template exploded")
		})
	}
	a := newTestApp(t, WithViews(ViewFuncs{About: broken}))

	rec := get(t, a, "/about/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "500", parse(t, rec).Find(".server-error h1").Text())

	// Other pages keep their default views.
	assert.Equal(t, http.StatusOK, get(t, a, "/faq/").Code)
}

func TestPageCache(t *testing.T) {
	a := newTestApp(t)

	first := get(t, a, "/")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Page-Cache"))

	second := get(t, a, "/")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get("X-Page-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echoHTML, second.Header().Get("Content-Type"))

	missing := get(t, a, "/blogs/missing-post/")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	missing = get(t, a, "/blogs/missing-post/")
	assert.Equal(t, "miss", missing.Header().Get("X-Page-Cache"), "error pages are not cached")
}

func TestFeed(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

	var feed rssXML
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "My Blog", feed.Channel.Title)
	require.Len(t, feed.Channel.Items, 20)

	item := feed.Channel.Items[0]
	assert.Equal(t, "http://localhost:3000/blogs/getting-started-with-nextjs/", item.Link)
	assert.Equal(t, item.Link, item.GUID.Value)
	assert.True(t, item.GUID.IsPermaLink)
	assert.Equal(t, []string{"Next.js", "React", "Web Development"}, item.Categories)

	pub, err := time.Parse(time.RFC1123Z, item.PubDate)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", pub.Format(content.DateLayout))
	assert.Equal(t, item.PubDate, feed.Channel.LastBuildDate)
}

func TestSitemap(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)

	var set sitemapURLSet
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.URLs, 24)
	assert.Equal(t, "http://localhost:3000/", set.URLs[0].Loc)
	assert.Equal(t, "http://localhost:3000/blogs/", set.URLs[1].Loc)
	assert.Equal(t, "http://localhost:3000/blogs/getting-started-with-nextjs/", set.URLs[4].Loc)
	assert.Equal(t, "2025-12-01", set.URLs[4].LastMod)
}

func TestRobots(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: http://localhost:3000/sitemap.xml")

	require.NoError(t, os.WriteFile(filepath.Join(a.Config.StaticDir, "robots.txt"), []byte("User-agent: *\nDisallow: /\n"), 0o644))
	a.Pages.Clear()
	rec = get(t, a, "/robots.txt")
	assert.Equal(t, "User-agent: *\nDisallow: /\n", rec.Body.String())
}

func TestPlaceholderImagesServed(t *testing.T) {
	a := newTestApp(t)

	rec := get(t, a, content.DefaultPlaceholderImage)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=604800", rec.Header().Get("Cache-Control"))

	rec = get(t, a, content.DefaultAuthorImage)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestMetrics(t *testing.T) {
	a := newTestApp(t)
	get(t, a, "/")
	get(t, a, "/")

	rec := get(t, a, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "blogsite_page_cache_hits_total 1")
	assert.Contains(t, body, "blogsite_page_cache_entries 1")
	assert.Contains(t, body, "blogsite_http_requests_total")
}

func TestSecurityHeaders(t *testing.T) {
	a := newTestApp(t)
	rec := get(t, a, "/")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestContentFromDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		content.PostsFile: `posts:
  - id: "a"
    slug: only-post
    title: The Only Post
    excerpt: Just one.
    author: Me
    publishedDate: "2024-02-03"
    content: |
      Hello.
`,
		content.AuthorFile: "author:\n  name: Me\n  bio: Hi.\n  expertise: [Go]\n",
		content.FAQsFile:   "faqs: []\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cfg := testConfig(t)
	cfg.ContentDir = dir
	a := newTestAppWithConfig(t, cfg)

	assert.Equal(t, "Me", a.Config.Author)
	doc := parse(t, get(t, a, "/"))
	assert.Equal(t, "The Only Post", doc.Find("section.featured h1").Text())
}

func TestContentFromSnapshot(t *testing.T) {
	d, err := content.Builtin()
	require.NoError(t, err)
	d.Posts = d.Posts[1:4]

	path := filepath.Join(t.TempDir(), "content.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveDataset(d))
	require.NoError(t, s.Close())

	cfg := testConfig(t)
	cfg.ContentDatabasePath = path
	a := newTestAppWithConfig(t, cfg)

	doc := parse(t, get(t, a, "/blogs/"))
	assert.Equal(t, 3, doc.Find(".grid a.card").Length())
	doc = parse(t, get(t, a, "/"))
	assert.Equal(t, "TypeScript Best Practices for 2025", doc.Find("section.featured h1").Text())
}

func TestSetupRejectsInvalidContent(t *testing.T) {
	d := content.Dataset{Posts: []content.Post{
		{ID: "1", Slug: "dup", PublishedDate: "2025-01-01"},
		{ID: "2", Slug: "dup", PublishedDate: "2025-01-02"},
	}}
	a := New(testConfig(t), WithLogger(quietLogger()), WithDataset(d))
	err := a.Setup()
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrValidation)
}

func TestCustomRoutes(t *testing.T) {
	a := newTestApp(t, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/healthz/", func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
	}))
	rec := get(t, a, "/healthz/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
