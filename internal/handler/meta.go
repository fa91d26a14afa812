package handler

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/leca/dt-photo-cdn/internal/api"
)

const (
	serviceName    = "dt-photo-cdn"
	serviceVersion = "1.0.0"
)

// listEntry is one element of the /list response. Filenames are exposed
// as basenames only; absolute paths stay internal.
type listEntry struct {
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Filename  string `json:"filename"`
	ID        int    `json:"id"`
	Author    string `json:"author"`
	AuthorURL string `json:"author_url"`
	PostURL   string `json:"post_url"`
}

// ListImages handles GET /list -- the full catalog.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.Catalog.ListImages()
	if err != nil {
		slog.Error("listing images failed", "error", err)
		api.Internal(w)
		return
	}

	list := make([]listEntry, 0, len(images))
	for _, img := range images {
		list = append(list, listEntry{
			Format:    img.Format,
			Width:     img.Width,
			Height:    img.Height,
			Filename:  filepath.Base(img.Filename),
			ID:        img.ID,
			Author:    img.Author,
			AuthorURL: img.AuthorURL,
			PostURL:   img.PostURL,
		})
	}
	api.WriteJSON(w, http.StatusOK, list)
}

// Info handles GET /info -- service name and version.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"name":    serviceName,
		"version": serviceVersion,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStats handles GET /stats -- served-rendition count and catalog size.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	images, err := h.Catalog.Count()
	if err != nil {
		slog.Error("counting images failed", "error", err)
		api.Internal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  h.Stats.Count(),
		"images": images,
	})
}
