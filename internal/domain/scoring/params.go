package scoring

import (
	"errors"
	"time"
)

// Parameter validation errors
var (
	ErrInvalidWindowLimit     = errors.New("window limit must be at least 1")
	ErrInvalidWindowAge       = errors.New("window age must be positive")
	ErrInvalidEnergyHalfLife  = errors.New("energy half-life must be positive")
	ErrInvalidSaturationCount = errors.New("saturation count must be positive")
	ErrInvalidRecencyHalfLife = errors.New("recency half-life must be positive")
)

// Params holds the tunable constants of the scoring engine. The original
// data model leaves the exact decay and saturation constants open, so they
// are surfaced here (and through configuration) rather than buried in the
// algorithm.
type Params struct {
	// WindowLimit caps the trailing window at the most recent N memories.
	WindowLimit int

	// WindowAge caps the trailing window by age; the effective window is the
	// smaller of the two cuts.
	WindowAge time.Duration

	// EnergyHalfLife controls how fast a memory's weight decays in the
	// energy average. A memory this old counts half as much as one made now.
	EnergyHalfLife time.Duration

	// SaturationCount is the k in 1-exp(-count/k): connection strength
	// reaches ~63% of its ceiling after k shared memories.
	SaturationCount float64

	// RecencyHalfLife controls how fast connection strength fades when no
	// shared memory has been recorded recently.
	RecencyHalfLife time.Duration
}

// NewDefaultParams returns the standard scoring parameters.
func NewDefaultParams() *Params {
	return &Params{
		WindowLimit:     20,
		WindowAge:       14 * 24 * time.Hour,
		EnergyHalfLife:  3 * 24 * time.Hour,
		SaturationCount: 10,
		RecencyHalfLife: 7 * 24 * time.Hour,
	}
}

// Validate checks that every parameter is usable.
func (p *Params) Validate() error {
	if p.WindowLimit < 1 {
		return ErrInvalidWindowLimit
	}
	if p.WindowAge <= 0 {
		return ErrInvalidWindowAge
	}
	if p.EnergyHalfLife <= 0 {
		return ErrInvalidEnergyHalfLife
	}
	if p.SaturationCount <= 0 {
		return ErrInvalidSaturationCount
	}
	if p.RecencyHalfLife <= 0 {
		return ErrInvalidRecencyHalfLife
	}
	return nil
}
