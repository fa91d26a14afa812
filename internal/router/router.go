package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/dt-photo-cdn/internal/catalog"
	"github.com/leca/dt-photo-cdn/internal/config"
	"github.com/leca/dt-photo-cdn/internal/handler"
	"github.com/leca/dt-photo-cdn/internal/rendition"
	"github.com/leca/dt-photo-cdn/internal/stats"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	Catalog catalog.Catalog
	Cache   *rendition.Cache
	Stats   *stats.Counter
	Config  *config.Config
	Router  chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(cat catalog.Catalog, cache *rendition.Cache, counter *stats.Counter, cfg *config.Config) *Server {
	s := &Server{Catalog: cat, Cache: cache, Stats: counter, Config: cfg}

	h := &handler.Handler{
		Catalog: cat,
		Cache:   cache,
		Stats:   counter,
		Config:  cfg,
	}

	r := chi.NewRouter()

	// CORS — must be before other middleware to handle preflight OPTIONS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", h.Health)
	r.Get("/info", h.Info)
	r.Get("/list", h.ListImages)
	r.Get("/stats", h.GetStats)

	// Rendition routes. Static routes above take priority over the
	// {size} wildcard.
	r.Get("/{size}", h.GetSquare)
	r.Get("/g/{size}", h.GetSquareGray)
	r.Get("/{width}/{height}", h.GetImage)
	r.Get("/g/{width}/{height}", h.GetImageGray)

	s.Router = r
	return s
}
