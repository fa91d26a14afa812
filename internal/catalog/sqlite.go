package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leca/dt-photo-cdn/internal/model"
	_ "modernc.org/sqlite"
)

// Compile-time check that SQLiteCatalog implements Catalog.
var _ Catalog = (*SQLiteCatalog)(nil)

// SQLiteCatalog implements Catalog backed by SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens (or creates) an SQLite database at dsn and runs
// migrations. For in-memory use pass "file::memory:?cache=shared".
func NewSQLiteCatalog(dsn string) (*SQLiteCatalog, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	} else if !strings.Contains(dsn, "_journal_mode") {
		dsn += "&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// UpsertImage inserts the record, or refreshes the metadata fields of an
// existing row with the same id. Dimensions and format are immutable after
// the first scan; author and url fields may change on re-scan.
func (c *SQLiteCatalog) UpsertImage(img *model.SourceImage) error {
	_, err := c.db.Exec(`
		INSERT INTO images (id, filename, width, height, format, author, author_url, post_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			author = excluded.author,
			author_url = excluded.author_url,
			post_url = excluded.post_url`,
		img.ID, img.Filename, img.Width, img.Height, img.Format,
		img.Author, img.AuthorURL, img.PostURL,
	)
	if err != nil {
		return fmt.Errorf("upsert image %d: %w", img.ID, err)
	}
	return nil
}

// FindByID returns the record with the given id, or ErrNotFound.
func (c *SQLiteCatalog) FindByID(id int) (*model.SourceImage, error) {
	row := c.db.QueryRow(`
		SELECT id, filename, width, height, format, author, author_url, post_url
		FROM images WHERE id = ?`, id)
	return scanImage(row)
}

// Random returns a uniformly random record, or ErrNotFound on an empty
// catalog.
func (c *SQLiteCatalog) Random() (*model.SourceImage, error) {
	row := c.db.QueryRow(`
		SELECT id, filename, width, height, format, author, author_url, post_url
		FROM images ORDER BY RANDOM() LIMIT 1`)
	return scanImage(row)
}

// ListImages returns all records ordered by id.
func (c *SQLiteCatalog) ListImages() ([]*model.SourceImage, error) {
	rows, err := c.db.Query(`
		SELECT id, filename, width, height, format, author, author_url, post_url
		FROM images ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []*model.SourceImage
	for rows.Next() {
		img := &model.SourceImage{}
		if err := rows.Scan(&img.ID, &img.Filename, &img.Width, &img.Height,
			&img.Format, &img.Author, &img.AuthorURL, &img.PostURL); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// Count returns the number of catalog records.
func (c *SQLiteCatalog) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return n, nil
}

func scanImage(row *sql.Row) (*model.SourceImage, error) {
	img := &model.SourceImage{}
	err := row.Scan(&img.ID, &img.Filename, &img.Width, &img.Height,
		&img.Format, &img.Author, &img.AuthorURL, &img.PostURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan image: %w", err)
	}
	return img, nil
}
