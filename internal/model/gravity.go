package model

// Gravity is the anchor point used when cropping a resized image to the
// exact target box.
type Gravity string

const (
	GravityCenter    Gravity = "center"
	GravityNorth     Gravity = "north"
	GravitySouth     Gravity = "south"
	GravityEast      Gravity = "east"
	GravityWest      Gravity = "west"
	GravityNorthEast Gravity = "northeast"
	GravityNorthWest Gravity = "northwest"
	GravitySouthEast Gravity = "southeast"
	GravitySouthWest Gravity = "southwest"
)

var gravities = map[Gravity]bool{
	GravityCenter:    true,
	GravityNorth:     true,
	GravitySouth:     true,
	GravityEast:      true,
	GravityWest:      true,
	GravityNorthEast: true,
	GravityNorthWest: true,
	GravitySouthEast: true,
	GravitySouthWest: true,
}

// Normalize resolves the empty value and the legacy "centre" spelling to
// GravityCenter. It leaves unknown values untouched; validation is
// ParseGravity's job.
func (g Gravity) Normalize() Gravity {
	switch g {
	case "", "centre":
		return GravityCenter
	default:
		return g
	}
}

// ParseGravity normalizes s and reports whether it names a known anchor.
func ParseGravity(s string) (Gravity, bool) {
	g := Gravity(s).Normalize()
	return g, gravities[g]
}
