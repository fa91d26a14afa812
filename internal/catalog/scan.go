package catalog

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/leca/dt-photo-cdn/internal/model"
)

// metadataEntry is one row of the photographer metadata file, keyed by
// source basename. Ids are stored as strings there.
type metadataEntry struct {
	ID        json.Number `json:"id"`
	Filename  string      `json:"filename"`
	Author    string      `json:"author"`
	AuthorURL string      `json:"author_url"`
	PostURL   string      `json:"post_url"`
}

// Scan walks photosDir, reads dimensions and format for every image file,
// merges the author metadata, and upserts the records into the catalog.
// Files without a metadata entry are skipped with a warning; re-scans
// refresh the metadata fields of known images. Returns the number of
// records upserted.
func Scan(c Catalog, photosDir, metadataPath string) (int, error) {
	meta, err := loadMetadata(metadataPath)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(photosDir)
	if err != nil {
		return 0, fmt.Errorf("reading photos dir %s: %w", photosDir, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || skipFile(entry.Name()) {
			continue
		}

		path := filepath.Join(photosDir, entry.Name())
		m, ok := meta[entry.Name()]
		if !ok {
			slog.Warn("no metadata for photo, skipping", "filename", entry.Name())
			continue
		}
		id, err := strconv.Atoi(m.ID.String())
		if err != nil {
			slog.Warn("bad metadata id, skipping", "filename", entry.Name(), "id", m.ID)
			continue
		}

		width, height, format, err := probeImage(path)
		if err != nil {
			slog.Warn("unreadable photo, skipping", "filename", entry.Name(), "error", err)
			continue
		}

		img := &model.SourceImage{
			ID:        id,
			Filename:  path,
			Width:     width,
			Height:    height,
			Format:    format,
			Author:    m.Author,
			AuthorURL: m.AuthorURL,
			PostURL:   m.PostURL,
		}
		if err := c.UpsertImage(img); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func loadMetadata(path string) (map[string]metadataEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}
	var entries []metadataEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	meta := make(map[string]metadataEntry, len(entries))
	for _, e := range entries {
		meta[e.Filename] = e
	}
	return meta, nil
}

func skipFile(name string) bool {
	return strings.HasPrefix(name, ".") || name == "metadata.json"
}

// probeImage reads just enough of the file to learn its dimensions and
// format, without decoding the pixels.
func probeImage(path string) (width, height int, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", err
	}
	return cfg.Width, cfg.Height, format, nil
}
