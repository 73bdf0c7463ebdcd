package blogsite

import (
	"bytes"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/coocood/freecache"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// PageCache keeps rendered pages in memory keyed by request URI. Content
// never changes while the server runs, so entries only expire by TTL.
type PageCache struct {
	cache *freecache.Cache
	ttl   time.Duration
}

// NewPageCache creates a PageCache holding up to size bytes.
func NewPageCache(size int, ttl time.Duration) *PageCache {
	return &PageCache{cache: freecache.NewCache(size), ttl: ttl}
}

// Get returns the content type and body stored for key.
func (p *PageCache) Get(key string) (contentType string, body []byte, ok bool) {
	v, err := p.cache.Get([]byte(key))
	if err != nil {
		return "", nil, false
	}
	ct, b, found := bytes.Cut(v, []byte{'\n'})
	if !found {
		return "", nil, false
	}
	return string(ct), b, true
}

// Set stores body under key. Pages larger than the cache can hold are
// silently dropped.
func (p *PageCache) Set(key, contentType string, body []byte) error {
	v := make([]byte, 0, len(contentType)+1+len(body))
	v = append(v, contentType...)
	v = append(v, '\n')
	v = append(v, body...)
	err := p.cache.Set([]byte(key), v, expireSeconds(p.ttl))
	if errors.Is(err, freecache.ErrLargeEntry) || errors.Is(err, freecache.ErrLargeKey) {
		return nil
	}
	return err
}

// expireSeconds converts ttl to freecache's whole seconds, rounding up so a
// short positive TTL never becomes 0, which freecache treats as no expiry.
func expireSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	return int(math.Ceil(ttl.Seconds()))
}

// Len returns the number of cached pages.
func (p *PageCache) Len() int64 {
	return p.cache.EntryCount()
}

// Clear drops every cached page.
func (p *PageCache) Clear() {
	p.cache.Clear()
}

// Collectors exposes hit, miss and size figures for a prometheus registry.
func (p *PageCache) Collectors(namespace string) []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page_cache",
			Name:      "hits_total",
			Help:      "Pages served from the page cache",
		}, func() float64 { return float64(p.cache.HitCount()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page_cache",
			Name:      "misses_total",
			Help:      "Page cache lookups that rendered the page",
		}, func() float64 { return float64(p.cache.MissCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "page_cache",
			Name:      "entries",
			Help:      "Pages currently cached",
		}, func() float64 { return float64(p.cache.EntryCount()) }),
	}
}

func skipPageCache(c echo.Context) bool {
	if c.Request().Method != http.MethodGet {
		return true
	}
	path := c.Request().URL.Path
	return isStaticPath(path) || path == "/metrics"
}

// pageCacheMiddleware serves cached pages and stores successful responses.
// It must run inside Gzip so bodies are cached uncompressed.
func (a *App) pageCacheMiddleware() echo.MiddlewareFunc {
	capture := middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: skipPageCache,
		Handler: func(c echo.Context, _, body []byte) {
			if c.Response().Status != http.StatusOK {
				return
			}
			ct := c.Response().Header().Get(echo.HeaderContentType)
			if err := a.Pages.Set(c.Request().RequestURI, ct, body); err != nil {
				a.log.WithError(err).WithField("uri", c.Request().RequestURI).Warn("page cache store failed")
			}
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		miss := capture(next)
		return func(c echo.Context) error {
			if skipPageCache(c) {
				return next(c)
			}
			if ct, body, ok := a.Pages.Get(c.Request().RequestURI); ok {
				c.Response().Header().Set("X-Page-Cache", "hit")
				return c.Blob(http.StatusOK, ct, body)
			}
			c.Response().Header().Set("X-Page-Cache", "miss")
			return miss(c)
		}
	}
}
