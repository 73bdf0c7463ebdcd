package blogsite

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/eringen/blogsite/content"
)

// SiteConfig holds all configuration for a blog site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "My Blog")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS and the home page
	Author      string `toml:"author"`      // Feed author, defaults to the dataset author

	Addr      string `toml:"addr"`       // Listen address (default ":3000")
	StaticDir string `toml:"static_dir"` // Static assets served under /public (default "public")

	// Content source, tried in this order: SQLite snapshot, YAML directory,
	// then the embedded dataset.
	ContentDatabasePath string `toml:"content_db"`
	ContentDir          string `toml:"content_dir"`

	LogLevel      string `toml:"log_level"`       // debug, info, warn, error or trace (default "info")
	LogsPath      string `toml:"logs_path"`       // Rotated log file; empty logs to stdout only
	LogToStdout   bool   `toml:"log_to_stdout"`   // Also log to stdout when LogsPath is set
	LogFormatJSON bool   `toml:"log_format_json"` // JSON log lines

	PageCacheSize int      `toml:"page_cache_size"` // Bytes (default 64MB); pages over 1/1024 of it are not cached
	PageCacheTTL  Duration `toml:"page_cache_ttl"`  // Default 10min
}

// Duration is a time.Duration that decodes from TOML strings like "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "My Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Articles on web development, programming, and technology."
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PageCacheSize == 0 {
		c.PageCacheSize = 64 * 1024 * 1024
	}
	if c.PageCacheTTL.Duration == 0 {
		c.PageCacheTTL.Duration = 10 * time.Minute
	}
}

// LoadConfig reads a TOML config file and applies environment overrides.
// An empty path skips the file.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("blogsite: load config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.StaticDir = EnvOr("STATIC_DIR", c.StaticDir)
	c.ContentDir = EnvOr("CONTENT_DIR", c.ContentDir)
	c.ContentDatabasePath = EnvOr("CONTENT_DB", c.ContentDatabasePath)
	c.LogLevel = EnvOr("LOG_LEVEL", c.LogLevel)
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory served under /public.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger replaces the logger built from the config.
func WithLogger(log *logrus.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithDataset serves d instead of loading content from the configured source.
func WithDataset(d content.Dataset) Option {
	return func(a *App) {
		a.dataset = &d
	}
}

// WithViews replaces the default page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
