// Package views renders the site's pages as templ components. Page markup
// lives in templates/*.html and is parsed once at startup.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/blogsite/content"
	"github.com/eringen/blogsite/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = parsePages("home", "blogs", "post", "about", "faq", "not_found", "server_error")

func parsePages(names ...string) map[string]*template.Template {
	base := template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html", "templates/card.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(base.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return out
}

func render(name string, p page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		p.Nav = Nav
		p.Year = time.Now().Year()
		return t.ExecuteTemplate(w, "layout", p)
	})
}

type homeData struct {
	Featured    content.Post
	HasFeatured bool
}

// Home renders the landing page. featured is nil when there are no posts.
func Home(site Site, featured *content.Post) templ.Component {
	d := homeData{}
	if featured != nil {
		d.Featured, d.HasFeatured = *featured, true
	}
	return render("home", page{Site: site, Active: "/", Data: d})
}

type blogsData struct {
	Posts     []content.Post
	Total     int
	Tags      []string
	ActiveTag string
}

// Blogs renders the listing page. posts are shown in the given order; total
// is the size of the whole collection.
func Blogs(site Site, posts []content.Post, total int, tags []string, activeTag string) templ.Component {
	return render("blogs", page{
		Site:   site,
		Title:  "All Blog Posts",
		Active: "/blogs/",
		Data:   blogsData{Posts: posts, Total: total, Tags: tags, ActiveTag: activeTag},
	})
}

type postData struct {
	Post    content.Post
	Body    template.HTML
	Outline []markdown.Heading
	Related []content.Post
}

// Post renders a post detail page.
func Post(site Site, post content.Post, related []content.Post) templ.Component {
	return render("post", page{
		Site:   site,
		Title:  post.Title,
		Active: "/blogs/",
		Data: postData{
			Post:    post,
			Body:    renderBody(post.Content),
			Outline: markdown.Headings(post.Content),
			Related: related,
		},
	})
}

func About(site Site, author content.AuthorProfile) templ.Component {
	return render("about", page{Site: site, Title: "About Me", Active: "/about/", Data: author})
}

// FAQ renders the accordion; faqs must already be in display order. The
// first item starts expanded.
func FAQ(site Site, faqs []content.FAQItem) templ.Component {
	return render("faq", page{Site: site, Title: "Frequently Asked Questions", Active: "/faq/", Data: faqs})
}

func NotFound(site Site) templ.Component {
	return render("not_found", page{Site: site, Title: "Page Not Found"})
}

func ServerError(site Site) templ.Component {
	return render("server_error", page{Site: site, Title: "Something went wrong"})
}
