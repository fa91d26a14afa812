package catalog

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePhoto(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if filepath.Ext(name) == ".png" {
		require.NoError(t, png.Encode(&buf, img))
	} else {
		require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func writeMetadata(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, dir, "0.jpeg", 120, 80)
	writePhoto(t, dir, "1.png", 64, 64)
	meta := writeMetadata(t, dir, `[
		{"id": "0", "filename": "0.jpeg", "author": "Jane", "author_url": "https://a", "post_url": "https://p"},
		{"id": "1", "filename": "1.png", "author": "John"}
	]`)

	c := newTestCatalog(t)
	n, err := Scan(c, dir, meta)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	img, err := c.FindByID(0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "0.jpeg"), img.Filename)
	assert.Equal(t, 120, img.Width)
	assert.Equal(t, 80, img.Height)
	assert.Equal(t, "jpeg", img.Format)
	assert.Equal(t, "Jane", img.Author)

	img, err = c.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 64, img.Width)
}

func TestScan_SkipsJunkFiles(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, dir, "0.jpeg", 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("junk"), 0644))
	meta := writeMetadata(t, dir, `[{"id": "0", "filename": "0.jpeg"}]`)

	c := newTestCatalog(t)
	n, err := Scan(c, dir, meta)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScan_SkipsPhotosWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, dir, "0.jpeg", 10, 10)
	writePhoto(t, dir, "unknown.jpeg", 10, 10)
	meta := writeMetadata(t, dir, `[{"id": "0", "filename": "0.jpeg"}]`)

	c := newTestCatalog(t)
	n, err := Scan(c, dir, meta)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScan_RescanRefreshesAuthor(t *testing.T) {
	dir := t.TempDir()
	writePhoto(t, dir, "0.jpeg", 10, 10)
	meta := writeMetadata(t, dir, `[{"id": "0", "filename": "0.jpeg", "author": "Jane"}]`)

	c := newTestCatalog(t)
	_, err := Scan(c, dir, meta)
	require.NoError(t, err)

	writeMetadata(t, dir, `[{"id": "0", "filename": "0.jpeg", "author": "John"}]`)
	_, err = Scan(c, dir, meta)
	require.NoError(t, err)

	img, err := c.FindByID(0)
	require.NoError(t, err)
	assert.Equal(t, "John", img.Author)
}

func TestScan_MissingMetadataFile(t *testing.T) {
	dir := t.TempDir()
	c := newTestCatalog(t)
	_, err := Scan(c, dir, filepath.Join(dir, "metadata.json"))
	require.Error(t, err)
}
