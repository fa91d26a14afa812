package model

// SourceImage is one catalog record describing an original photo on disk.
type SourceImage struct {
	ID        int    `json:"id"`
	Filename  string `json:"filename"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Author    string `json:"author,omitempty"`
	AuthorURL string `json:"author_url,omitempty"`
	PostURL   string `json:"post_url,omitempty"`
}

// NamingMode selects the cache-file naming scheme for a rendition.
type NamingMode int

const (
	// NamingDescriptive includes the source basename in the cache filename,
	// so renditions of different sources never collide.
	NamingDescriptive NamingMode = iota
	// NamingShort omits the source identity, so all sources sharing the
	// same transform parameters collapse onto one cache file. Used when the
	// caller picked the source at random and does not care which one it is.
	NamingShort
)

// TransformRequest describes one requested rendition. Width and Height are
// the exact output dimensions; the handler layer substitutes native
// dimensions for zero values before the request reaches the cache.
type TransformRequest struct {
	Width          int
	Height         int
	Gravity        Gravity
	Grayscale      bool
	Blur           bool
	SourceFilename string
	Naming         NamingMode
}
