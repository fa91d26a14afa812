package catalog

import (
	"errors"

	"github.com/leca/dt-photo-cdn/internal/model"
)

// ErrNotFound is returned when no catalog record matches the requested id.
var ErrNotFound = errors.New("image not found")

// Catalog is the persistence interface for source-image records. The
// transform cache only reads it; writes happen during directory scans.
type Catalog interface {
	ListImages() ([]*model.SourceImage, error)
	FindByID(id int) (*model.SourceImage, error)
	Random() (*model.SourceImage, error)
	Count() (int, error)
	UpsertImage(img *model.SourceImage) error
	Close() error
}
