package blogsite

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogsite/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (a *App) buildSitemap(posts []content.Post) sitemapURLSet {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: BuildURL(base, "blogs"), ChangeFreq: "weekly", Priority: "0.8"},
		{Loc: BuildURL(base, "about"), ChangeFreq: "monthly", Priority: "0.5"},
		{Loc: BuildURL(base, "faq"), ChangeFreq: "monthly", Priority: "0.5"},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:      PostURL(base, p),
			LastMod:  p.PublishedDate,
			Priority: "0.7",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post) error {
	return writeXML(c, "application/xml; charset=utf-8", a.buildSitemap(posts))
}
