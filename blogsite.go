// Package blogsite serves a static personal blog: a featured post on the
// home page, a listing of every post, post detail pages, an about page and
// an FAQ. Content is loaded once at startup and never changes while the
// server runs.
//
// Page markup comes from the views package by default; callers can swap any
// page through ViewFuncs.
package blogsite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/eringen/blogsite/content"
	"github.com/eringen/blogsite/views"
)

// metricsNamespace prefixes every metric the site exports.
const metricsNamespace = "blogsite"

// ViewFuncs holds the components the handlers render. Nil fields fall back
// to the views package.
type ViewFuncs struct {
	Home        func(site views.Site, featured *content.Post) templ.Component
	Blogs       func(site views.Site, posts []content.Post, total int, tags []string, activeTag string) templ.Component
	Post        func(site views.Site, post content.Post, related []content.Post) templ.Component
	About       func(site views.Site, author content.AuthorProfile) templ.Component
	FAQ         func(site views.Site, faqs []content.FAQItem) templ.Component
	NotFound    func(site views.Site) templ.Component
	ServerError func(site views.Site) templ.Component
}

// DefaultViews returns the built-in page components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Blogs:       views.Blogs,
		Post:        views.Post,
		About:       views.About,
		FAQ:         views.FAQ,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v *ViewFuncs) fillDefaults() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Blogs == nil {
		v.Blogs = d.Blogs
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.About == nil {
		v.About = d.About
	}
	if v.FAQ == nil {
		v.FAQ = d.FAQ
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

// App wires together the content store, page cache, handlers, middleware
// and views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Content  *content.Store
	Pages    *PageCache
	Views    ViewFuncs
	Registry *prometheus.Registry

	log          *logrus.Logger
	logCloser    io.Closer
	dataset      *content.Dataset
	db           *Store
	customRoutes []func(*App)
	ready        bool

	// Derived once from Content at setup.
	posts []content.Post // newest first
	faqs  []content.FAQItem
	tags  []string
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Views:    DefaultViews(),
		Registry: prometheus.NewRegistry(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	a.Views.fillDefaults()

	if a.log == nil {
		a.log, a.logCloser = SetupLogger(a.Config)
	}
	a.Pages = NewPageCache(a.Config.PageCacheSize, a.Config.PageCacheTTL.Duration)
	return a
}

// Setup loads content and registers middleware and routes. Start calls it
// when it has not run yet; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}

	d, err := a.loadDataset()
	if err != nil {
		return fmt.Errorf("blogsite: load content: %w", err)
	}
	store, err := content.NewStore(d)
	if err != nil {
		return fmt.Errorf("blogsite: load content: %w", err)
	}
	a.useContent(store)

	if err := EnsurePlaceholders(filepath.Join(a.Config.StaticDir, "images")); err != nil {
		a.log.WithError(err).Warn("placeholder images unavailable")
	}

	for _, c := range a.Pages.Collectors(metricsNamespace) {
		if err := a.Registry.Register(c); err != nil {
			return fmt.Errorf("blogsite: register metrics: %w", err)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.ready = true
	a.log.WithFields(logrus.Fields{
		"posts": len(a.posts),
		"faqs":  len(a.faqs),
		"tags":  len(a.tags),
	}).Info("content loaded")
	return nil
}

func (a *App) loadDataset() (content.Dataset, error) {
	switch {
	case a.dataset != nil:
		return *a.dataset, nil
	case a.Config.ContentDatabasePath != "":
		db, err := NewStore(a.Config.ContentDatabasePath)
		if err != nil {
			return content.Dataset{}, err
		}
		a.db = db
		a.log.WithField("path", a.Config.ContentDatabasePath).Debug("reading content from sqlite")
		return db.LoadDataset()
	case a.Config.ContentDir != "":
		a.log.WithField("dir", a.Config.ContentDir).Debug("reading content from directory")
		return content.LoadDir(os.DirFS(a.Config.ContentDir))
	default:
		return content.Builtin()
	}
}

func (a *App) useContent(s *content.Store) {
	a.Content = s
	all := s.Posts()
	a.posts = content.SortPostsByDate(all)
	a.faqs = content.SortFAQs(s.FAQs())
	a.tags = content.Tags(all)
	if a.Config.Author == "" {
		a.Config.Author = s.Author().Name
	}
}

// Start sets the app up if needed and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.log.WithField("addr", a.Config.Addr).Info("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close releases the content database and log file.
func (a *App) Close() error {
	var err error
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
	}
	if a.logCloser != nil {
		err = multierr.Append(err, a.logCloser.Close())
	}
	return err
}

// Logger returns the app's logger.
func (a *App) Logger() *logrus.Logger {
	return a.log
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		Description: a.Config.Description,
		URL:         a.Config.URL,
	}
}
