package layout

import "math"

// Config holds the geometry of a layout.
type Config struct {
	CenterX float64
	CenterY float64

	// CenterRadius and LevelSpacing define baseRadius(d) = CenterRadius + d*LevelSpacing.
	CenterRadius float64
	LevelSpacing float64

	// MinDistance and MaxDistance clamp the parent to child distance.
	MinDistance float64
	MaxDistance float64

	// OverlapThreshold is the closest two nodes may be placed.
	OverlapThreshold float64

	// SpiralStep is added to the radius on every collision retry, and
	// SpiralAngle is added to the angle.
	SpiralStep  float64
	SpiralAngle float64

	// MaxAttempts bounds collision retries for one node.
	MaxAttempts int

	// EvenStep separates sibling angles for up to CompressAbove siblings.
	// Larger families share a CompressedArc.
	EvenStep      float64
	CompressAbove int
	CompressedArc float64
}

// DefaultConfig returns the default layout geometry.
func DefaultConfig() Config {
	return Config{
		CenterX:          600,
		CenterY:          400,
		CenterRadius:     120,
		LevelSpacing:     60,
		MinDistance:      90,
		MaxDistance:      420,
		OverlapThreshold: 70,
		SpiralStep:       35,
		SpiralAngle:      math.Pi / 4,
		MaxAttempts:      16,
		EvenStep:         math.Pi / 4,
		CompressAbove:    6,
		CompressedArc:    3 * math.Pi / 2,
	}
}

// Option configures a Layouter.
type Option func(*Config)

// WithCenter sets the root position.
func WithCenter(x, y float64) Option {
	return func(c *Config) {
		c.CenterX, c.CenterY = x, y
	}
}

// WithOverlapThreshold sets the minimum distance between placed nodes.
func WithOverlapThreshold(d float64) Option {
	return func(c *Config) {
		c.OverlapThreshold = d
	}
}

// WithMaxAttempts sets the collision retry budget.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
