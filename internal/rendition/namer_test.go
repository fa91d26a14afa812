package rendition

import (
	"testing"

	"github.com/leca/dt-photo-cdn/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDestination_Descriptive(t *testing.T) {
	req := model.TransformRequest{
		Width:          458,
		Height:         354,
		SourceFilename: "/images/42.jpg",
		Naming:         model.NamingDescriptive,
	}
	assert.Equal(t, "/cache/42-458x354-center.jpeg", Destination("/cache", req))
}

func TestDestination_Deterministic(t *testing.T) {
	req := model.TransformRequest{
		Width:          100,
		Height:         200,
		Gravity:        model.GravityNorth,
		Grayscale:      true,
		Blur:           true,
		SourceFilename: "/images/7.png",
		Naming:         model.NamingDescriptive,
	}
	assert.Equal(t, Destination("/cache", req), Destination("/cache", req))
}

func TestDestination_FlagsProduceDistinctPaths(t *testing.T) {
	base := model.TransformRequest{
		Width:          100,
		Height:         100,
		SourceFilename: "/images/1.jpg",
		Naming:         model.NamingDescriptive,
	}

	gray := base
	gray.Grayscale = true
	blur := base
	blur.Blur = true
	grayBlur := gray
	grayBlur.Blur = true

	paths := map[string]bool{
		Destination("/cache", base):     true,
		Destination("/cache", gray):     true,
		Destination("/cache", blur):     true,
		Destination("/cache", grayBlur): true,
	}
	assert.Len(t, paths, 4, "each flag combination must name a distinct file")
}

func TestDestination_GravityAliasCollides(t *testing.T) {
	a := model.TransformRequest{
		Width: 50, Height: 50,
		Gravity:        "centre",
		SourceFilename: "/images/1.jpg",
		Naming:         model.NamingDescriptive,
	}
	b := a
	b.Gravity = "center"
	c := a
	c.Gravity = ""

	assert.Equal(t, Destination("/cache", a), Destination("/cache", b))
	assert.Equal(t, Destination("/cache", a), Destination("/cache", c))
}

func TestDestination_Short(t *testing.T) {
	req := model.TransformRequest{
		Width:          300,
		Height:         200,
		Gravity:        model.GravityEast,
		SourceFilename: "/images/42.jpg",
		Naming:         model.NamingShort,
	}
	assert.Equal(t, "/cache/300^200-east.jpeg", Destination("/cache", req))

	req.Blur = true
	req.Grayscale = true
	assert.Equal(t, "/cache/gray-300^200-east-blurred.jpeg", Destination("/cache", req))
}

func TestDestination_ShortIgnoresSource(t *testing.T) {
	a := model.TransformRequest{
		Width: 10, Height: 20,
		SourceFilename: "/images/1.jpg",
		Naming:         model.NamingShort,
	}
	b := a
	b.SourceFilename = "/images/999.jpg"
	assert.Equal(t, Destination("/cache", a), Destination("/cache", b))
}

func TestDestination_StripsSourceExtension(t *testing.T) {
	req := model.TransformRequest{
		Width: 10, Height: 10,
		SourceFilename: "/photos/sunset.JPEG",
		Naming:         model.NamingDescriptive,
	}
	assert.Equal(t, "/cache/sunset-10x10-center.jpeg", Destination("/cache", req))
}
