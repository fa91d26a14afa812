package rendition

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leca/dt-photo-cdn/internal/model"
)

// Destination maps a transform request to its canonical cache file path.
// Pure function, no I/O: the path doubles as the cache key, so identical
// requests must always name the identical file. Gravity is normalized
// before naming so that alias spellings collide onto the same path.
func Destination(cacheDir string, req model.TransformRequest) string {
	gravity := req.Gravity.Normalize()

	prefix := ""
	if req.Grayscale {
		prefix = "gray-"
	}

	var name string
	switch req.Naming {
	case model.NamingShort:
		name = fmt.Sprintf("%s%d^%d-%s", prefix, req.Width, req.Height, gravity)
		if req.Blur {
			name += "-blurred"
		}
	default:
		base := filepath.Base(req.SourceFilename)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		name = fmt.Sprintf("%s%s-%dx%d-%s", prefix, base, req.Width, req.Height, gravity)
		if req.Blur {
			name += "-blur"
		}
	}

	return filepath.Join(cacheDir, name+".jpeg")
}
