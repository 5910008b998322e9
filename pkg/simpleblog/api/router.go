package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// RouterConfig holds everything needed to serve the blog API
type RouterConfig struct {
	Reader    simpleblog.Reader
	Publisher Publisher // optional; publish routes are omitted when nil
	JWTSecret string

	FeaturedLimit int
	RelatedLimit  int

	// CacheMaxAge sets Cache-Control on post queries when positive
	CacheMaxAge int
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewRouter creates a standalone router with the standard middleware stack
func NewRouter(cfg RouterConfig) chi.Router {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})

	MountRoutes(r, cfg)
	return r
}

// MountRoutes mounts /posts, /categories, /tags and (with a publisher)
// /publish under /api/v1 on an existing router
func MountRoutes(r chi.Router, cfg RouterConfig) {
	posts := NewPostsHandler(cfg.Reader, cfg.FeaturedLimit, cfg.RelatedLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.CacheMaxAge > 0 {
				r.Use(CacheMiddleware(cfg.CacheMaxAge))
			}
			r.Mount("/posts", posts.Routes())
			r.Get("/categories", posts.ListCategories)
			r.Get("/tags", posts.ListTags)
		})
		if cfg.Publisher != nil {
			r.Mount("/publish", NewPublishHandler(cfg.Publisher, cfg.JWTSecret).Routes())
		}
	})
}
