package catalog

import (
	"path/filepath"
	"testing"

	"github.com/leca/dt-photo-cdn/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func testImage(id int) *model.SourceImage {
	return &model.SourceImage{
		ID:        id,
		Filename:  filepath.Join("/photos", "img.jpg"),
		Width:     800,
		Height:    600,
		Format:    "jpeg",
		Author:    "Jane",
		AuthorURL: "https://example.com/jane",
		PostURL:   "https://example.com/post/1",
	}
}

func TestUpsertAndFind(t *testing.T) {
	c := newTestCatalog(t)
	img := testImage(1)
	require.NoError(t, c.UpsertImage(img))

	got, err := c.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestFindByID_NotFound(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.FindByID(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsert_RefreshesMetadata(t *testing.T) {
	c := newTestCatalog(t)
	img := testImage(1)
	require.NoError(t, c.UpsertImage(img))

	updated := *img
	updated.Author = "John"
	updated.AuthorURL = "https://example.com/john"
	require.NoError(t, c.UpsertImage(&updated))

	got, err := c.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "John", got.Author)
	assert.Equal(t, "https://example.com/john", got.AuthorURL)
	// Dimensions are immutable after the first scan.
	assert.Equal(t, 800, got.Width)
	assert.Equal(t, 600, got.Height)
}

func TestListImages_OrderedByID(t *testing.T) {
	c := newTestCatalog(t)
	for _, id := range []int{3, 1, 2} {
		img := testImage(id)
		img.Filename = filepath.Join("/photos", string(rune('a'+id))+".jpg")
		require.NoError(t, c.UpsertImage(img))
	}

	images, err := c.ListImages()
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, 1, images[0].ID)
	assert.Equal(t, 2, images[1].ID)
	assert.Equal(t, 3, images[2].ID)
}

func TestCount(t *testing.T) {
	c := newTestCatalog(t)
	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	img := testImage(1)
	require.NoError(t, c.UpsertImage(img))
	n, err = c.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRandom(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.Random()
	assert.ErrorIs(t, err, ErrNotFound)

	img := testImage(7)
	require.NoError(t, c.UpsertImage(img))
	got, err := c.Random()
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
}
