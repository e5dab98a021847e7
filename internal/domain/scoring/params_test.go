package scoring

import (
	"testing"
	"time"
)

func TestDefaultParamsValid(t *testing.T) {
	t.Parallel()

	if err := NewDefaultParams().Validate(); err != nil {
		t.Errorf("Expected default params to validate, got %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(p *Params)
		wantErr error
	}{
		{"zero window limit", func(p *Params) { p.WindowLimit = 0 }, ErrInvalidWindowLimit},
		{"negative window age", func(p *Params) { p.WindowAge = -time.Hour }, ErrInvalidWindowAge},
		{"zero energy half-life", func(p *Params) { p.EnergyHalfLife = 0 }, ErrInvalidEnergyHalfLife},
		{"zero saturation count", func(p *Params) { p.SaturationCount = 0 }, ErrInvalidSaturationCount},
		{"zero recency half-life", func(p *Params) { p.RecencyHalfLife = 0 }, ErrInvalidRecencyHalfLife},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params := NewDefaultParams()
			tc.mutate(params)

			if err := params.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel()

	if _, err := NewServiceWithParams(NewDefaultParams()); err != nil {
		t.Errorf("Expected valid params to be accepted, got %v", err)
	}

	bad := NewDefaultParams()
	bad.SaturationCount = -1
	if _, err := NewServiceWithParams(bad); err != ErrInvalidSaturationCount {
		t.Errorf("Expected %v, got %v", ErrInvalidSaturationCount, err)
	}
}
