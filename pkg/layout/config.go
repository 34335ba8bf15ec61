package layout

import "math"

// Defaults for [Config].
const (
	DefaultRootName     = "Sol"
	DefaultBaseRadius   = 100.0
	DefaultLevelSpacing = 150.0
	DefaultIterations   = 50
	DefaultRepulsion    = 1000.0
	DefaultThreshold    = 50.0
	DefaultMinDistance  = 0.1
	DefaultSectors      = 8
)

// Config holds the tunables of placement and relaxation.
type Config struct {
	// RootName is the system used as the center when no explicit root id
	// is given.
	RootName string `toml:"root_name" json:"root_name"`

	BaseRadius   float64 `toml:"base_radius" json:"base_radius" validate:"gt=0"`
	LevelSpacing float64 `toml:"level_spacing" json:"level_spacing" validate:"gt=0"`
	Sectors      int     `toml:"sectors" json:"sectors" validate:"gte=1,lte=64"`

	Iterations  int     `toml:"iterations" json:"iterations" validate:"gte=1,lte=10000"`
	Repulsion   float64 `toml:"repulsion" json:"repulsion" validate:"gt=0"`
	Threshold   float64 `toml:"threshold" json:"threshold" validate:"gt=0"`
	MinDistance float64 `toml:"min_distance" json:"min_distance" validate:"gt=0"`
}

// DefaultConfig returns the standard layout parameters.
func DefaultConfig() Config {
	return Config{
		RootName:     DefaultRootName,
		BaseRadius:   DefaultBaseRadius,
		LevelSpacing: DefaultLevelSpacing,
		Sectors:      DefaultSectors,
		Iterations:   DefaultIterations,
		Repulsion:    DefaultRepulsion,
		Threshold:    DefaultThreshold,
		MinDistance:  DefaultMinDistance,
	}
}

// SetDefaults fills zero fields with defaults. Zero is never a meaningful
// value for any field, so a zero always means unset.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.RootName == "" {
		c.RootName = d.RootName
	}
	if c.BaseRadius == 0 {
		c.BaseRadius = d.BaseRadius
	}
	if c.LevelSpacing == 0 {
		c.LevelSpacing = d.LevelSpacing
	}
	if c.Sectors == 0 {
		c.Sectors = d.Sectors
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.Repulsion == 0 {
		c.Repulsion = d.Repulsion
	}
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	if c.MinDistance == 0 {
		c.MinDistance = d.MinDistance
	}
}

// Radius returns the ring radius of depth d. The root ring has radius 0.
func (c Config) Radius(depth int) float64 {
	if depth <= 0 {
		return 0
	}
	return c.BaseRadius + c.LevelSpacing*float64(depth)
}

func (c Config) sectorWidth() float64 {
	return 2 * math.Pi / float64(c.Sectors)
}

// sectorOf buckets an angle in [-π, π] into one of c.Sectors sectors.
// An angle of exactly π wraps into sector 0.
func (c Config) sectorOf(angle float64) int {
	k := int(math.Floor((angle + math.Pi) / c.sectorWidth()))
	return ((k % c.Sectors) + c.Sectors) % c.Sectors
}

func (c Config) sectorStart(k int) float64 {
	return float64(k)*c.sectorWidth() - math.Pi
}
