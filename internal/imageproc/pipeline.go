package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/leca/dt-photo-cdn/internal/model"
)

// blurSigma is the fixed Gaussian blur strength. Deliberately not
// user-tunable; it matches the blur the service has always produced.
const blurSigma = 5.0

// jpegQuality is the encoder setting for all renditions.
const jpegQuality = 85

// Options holds the transform parameters the pipeline acts on. Width and
// Height must be positive; zero-dimension substitution happens before the
// pipeline is invoked.
type Options struct {
	Width     int
	Height    int
	Gravity   model.Gravity
	Grayscale bool
	Blur      bool
}

// Transform runs the full pixel pipeline on the source image: decode with
// EXIF auto-orientation, resize-then-crop to exactly Width x Height against
// the gravity anchor, optional grayscale, optional blur, JPEG encode.
// Each stage fails independently with an error naming the stage; no partial
// output is ever returned.
func Transform(src io.Reader, opts Options) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", opts.Width, opts.Height)
	}

	var img image.Image
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Cover policy: scale to fill the target box, then crop the overflow
	// on the side opposite the anchor. Output is always exactly WxH.
	img = imaging.Fill(img, opts.Width, opts.Height, anchorFor(opts.Gravity), imaging.Lanczos)

	if opts.Grayscale {
		img = imaging.Grayscale(img)
	}

	if opts.Blur {
		img = imaging.Blur(img, blurSigma)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// TransformFile opens path and runs Transform on its contents.
func TransformFile(path string, opts Options) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", path, err)
	}
	defer f.Close()
	return Transform(f, opts)
}

// anchorFor maps a gravity value to the imaging crop anchor. Unknown
// values fall back to center, matching the namer's default.
func anchorFor(g model.Gravity) imaging.Anchor {
	switch g.Normalize() {
	case model.GravityNorth:
		return imaging.Top
	case model.GravitySouth:
		return imaging.Bottom
	case model.GravityEast:
		return imaging.Right
	case model.GravityWest:
		return imaging.Left
	case model.GravityNorthEast:
		return imaging.TopRight
	case model.GravityNorthWest:
		return imaging.TopLeft
	case model.GravitySouthEast:
		return imaging.BottomRight
	case model.GravitySouthWest:
		return imaging.BottomLeft
	default:
		return imaging.Center
	}
}
