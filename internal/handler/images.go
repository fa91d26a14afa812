package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leca/dt-photo-cdn/internal/api"
	"github.com/leca/dt-photo-cdn/internal/catalog"
	"github.com/leca/dt-photo-cdn/internal/model"
)

// GetSquare handles GET /{size} -- a square color rendition.
func (h *Handler) GetSquare(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, true, false)
}

// GetSquareGray handles GET /g/{size} -- a square grayscale rendition.
func (h *Handler) GetSquareGray(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, true, true)
}

// GetImage handles GET /{width}/{height} -- a color rendition.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, false, false)
}

// GetImageGray handles GET /g/{width}/{height} -- a grayscale rendition.
func (h *Handler) GetImageGray(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, false, true)
}

// serveImage validates the request, resolves the source image, and serves
// the rendition out of the transform cache.
func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, square, gray bool) {
	var width, height int
	var err error
	if square {
		width, err = strconv.Atoi(chi.URLParam(r, "size"))
		height = width
	} else {
		width, err = strconv.Atoi(chi.URLParam(r, "width"))
		if err == nil {
			height, err = strconv.Atoi(chi.URLParam(r, "height"))
		}
	}
	if err != nil || width < 0 || height < 0 {
		api.BadRequest(w, "Invalid arguments")
		return
	}

	q := r.URL.Query()

	gravity := model.GravityCenter
	if s := q.Get("gravity"); s != "" {
		var ok bool
		gravity, ok = model.ParseGravity(s)
		if !ok {
			api.BadRequest(w, "Invalid arguments")
			return
		}
	}
	blur := q.Has("blur")

	var pinned *model.SourceImage
	naming := model.NamingShort
	if s := q.Get("image"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			api.NotFound(w, "Invalid image id")
			return
		}
		pinned, err = h.Catalog.FindByID(id)
		if errors.Is(err, catalog.ErrNotFound) {
			api.NotFound(w, "Invalid image id")
			return
		}
		if err != nil {
			slog.Error("looking up image failed", "id", id, "error", err)
			api.Internal(w)
			return
		}
		naming = model.NamingDescriptive
	}

	// The cap applies to the dimensions as requested; a zero slips
	// through and resolves to the native size below.
	if width > h.Config.MaxWidth || height > h.Config.MaxHeight {
		// Carve-out: a pinned image may be requested at exactly its
		// native size, however large.
		if pinned == nil || width != pinned.Width || height != pinned.Height {
			api.TooLarge(w, "Specified dimensions too large")
			return
		}
	}

	if pinned != nil {
		// Zero means "use the source's native dimension".
		if width == 0 {
			width = pinned.Width
		}
		if height == 0 {
			height = pinned.Height
		}
	}

	// A random request pins a concrete id and redirects, so the client
	// gets a stable URL for the image it was handed. The redirect itself
	// must never be cached. Zero dimensions survive the redirect; the
	// pinned follow-up request resolves them to the native size.
	if q.Has("random") {
		img, err := h.Catalog.Random()
		if err != nil {
			slog.Error("picking random image failed", "error", err)
			api.Internal(w)
			return
		}
		params := fmt.Sprintf("image=%d", img.ID)
		if q.Get("gravity") != "" {
			params += "&gravity=" + string(gravity)
		}
		if blur {
			params += "&blur=true"
		}
		target := fmt.Sprintf("/%d/%d?%s", width, height, params)
		if gray {
			target = "/g" + target
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	if pinned == nil && (width == 0 || height == 0) {
		// Nothing to substitute native dimensions from.
		api.BadRequest(w, "Invalid arguments")
		return
	}

	source := pinned
	if source == nil {
		source, err = h.Catalog.Random()
		if err != nil {
			slog.Error("picking random image failed", "error", err)
			api.Internal(w)
			return
		}
	}

	res, err := h.Cache.Get(r.Context(), model.TransformRequest{
		Width:          width,
		Height:         height,
		Gravity:        gravity,
		Grayscale:      gray,
		Blur:           blur,
		SourceFilename: source.Filename,
		Naming:         naming,
	})
	if err != nil {
		slog.Error("serving rendition failed", "source", source.Filename, "error", err)
		api.Internal(w)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=604800")
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		slog.Warn("writing rendition response failed", "path", res.Path, "error", err)
	}
	h.Stats.Increment()
}
