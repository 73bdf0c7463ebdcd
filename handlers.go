package blogsite

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/eringen/blogsite/content"
)

// relatedLimit caps the related posts shown under a post.
const relatedLimit = 3

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.Static("/images", filepath.Join(a.Config.StaticDir, "images"))
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.Registry,
	}))

	e.GET("/", a.handleHome)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blogs/", a.handleBlogs)
	e.GET("/blogs/:slug/", a.handlePost)
	e.GET("/about/", a.handleAbout)
	e.GET("/faq/", a.handleFAQ)
}

func (a *App) handleHome(c echo.Context) error {
	var featured *content.Post
	p, err := content.FeaturedPost(a.posts)
	switch {
	case err == nil:
		featured = &p
	case !errors.Is(err, content.ErrNoPosts):
		return err
	}
	return Render(c, a.Views.Home(a.site(), featured))
}

func (a *App) handleBlogs(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts := a.posts
	if tag != "" {
		posts = content.FilterByTag(posts, tag)
	}
	return Render(c, a.Views.Blogs(a.site(), posts, len(a.posts), a.tags, tag))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.resolvePost(c.Param("slug"))
	if err != nil {
		return err
	}
	related := content.RelatedPosts(post, a.posts, relatedLimit)
	return Render(c, a.Views.Post(a.site(), post, related))
}

// resolvePost looks slug up in the dataset.
func (a *App) resolvePost(slug string) (content.Post, error) {
	p, ok := content.PostBySlug(a.posts, slug)
	if !ok {
		return content.Post{}, &content.PostNotFoundError{Slug: slug}
	}
	return p, nil
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About(a.site(), a.Content.Author()))
}

func (a *App) handleFAQ(c echo.Context) error {
	return Render(c, a.Views.FAQ(a.site(), a.faqs))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.posts)
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blogs/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.Config.StaticDir, "favicon.svg"))
}

// handleRobots serves robots.txt from the static dir, or a permissive one
// pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	body := "User-agent: *\nAllow: /\n\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case content.KindOf(err) == content.KindNotFound:
		code = http.StatusNotFound
	case errors.As(err, &he):
		code = he.Code
	}

	if code == http.StatusNotFound {
		if rerr := RenderStatus(c, code, a.Views.NotFound(a.site())); rerr != nil {
			a.log.WithError(rerr).Error("render not found page")
		}
		return
	}
	if code >= 500 {
		a.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("server error")
		if rerr := RenderStatus(c, code, a.Views.ServerError(a.site())); rerr != nil {
			a.log.WithError(rerr).Error("render server error page")
			_ = c.NoContent(code)
		}
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
