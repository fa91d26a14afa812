package handler

import (
	"github.com/leca/dt-photo-cdn/internal/catalog"
	"github.com/leca/dt-photo-cdn/internal/config"
	"github.com/leca/dt-photo-cdn/internal/rendition"
	"github.com/leca/dt-photo-cdn/internal/stats"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Catalog catalog.Catalog
	Cache   *rendition.Cache
	Stats   *stats.Counter
	Config  *config.Config
}
