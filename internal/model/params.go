package model

import (
	"errors"
	"fmt"
)

// Flare limit applied when curve smoothing is on: beyond ~45 degrees the
// flare cannot be drawn as a single smooth bulge.
const MaxCurvedVPercent = 70.0

var (
	ErrHPercentRange = errors.New("hpercent must be within [0, 100]")
	ErrVPercentRange = errors.New("vpercent must not be negative")
	ErrSegsRange     = errors.New("segs must be at least 2")
)

// Params holds the teardrop shape and placement options.
type Params struct {
	// Shape
	HPercent float64 `json:"hpercent"` // Teardrop length as a percentage of the anchor diameter
	VPercent float64 `json:"vpercent"` // Flare width as a percentage of the anchor diameter (asin-mapped)
	Segs     int     `json:"segs"`     // Samples per curved side; 2 means straight sides

	// Placement
	IncludeSMDPads bool `json:"include_smd_pads"` // Also consider surface-mount pads
	// DiscardInSameNetZone skips anchors already inside a same-net fill.
	// The check is O(zones) per candidate pair and dominates the run time
	// on boards with many fills; leave it off for large boards.
	DiscardInSameNetZone bool `json:"discard_in_same_net_zone"`
	FollowTracks         bool `json:"follow_tracks"` // Walk connected segments when the first one is too short
	NoBulge              bool `json:"no_bulge"`      // Keep the flare within 90 degrees of the track direction
}

// DefaultParams returns the parameters used when nothing else is configured.
func DefaultParams() Params {
	return Params{
		HPercent:             30,
		VPercent:             70,
		Segs:                 10,
		IncludeSMDPads:       false,
		DiscardInSameNetZone: false,
		FollowTracks:         false,
		NoBulge:              false,
	}
}

// Validate checks parameter ranges. A vpercent above 100 is not an error;
// EffectiveVPercent clamps it.
func (p Params) Validate() error {
	if p.HPercent < 0 || p.HPercent > 100 {
		return fmt.Errorf("%w: got %g", ErrHPercentRange, p.HPercent)
	}
	if p.VPercent < 0 {
		return fmt.Errorf("%w: got %g", ErrVPercentRange, p.VPercent)
	}
	if p.Segs < 2 {
		return fmt.Errorf("%w: got %d", ErrSegsRange, p.Segs)
	}
	return nil
}

// Curved reports whether the sides are smoothed with curves.
func (p Params) Curved() bool {
	return p.Segs > 2
}

// EffectiveVPercent returns vpercent clamped to 100, and to
// MaxCurvedVPercent when curve smoothing is enabled.
func (p Params) EffectiveVPercent() float64 {
	v := p.VPercent
	if v > 100 {
		v = 100
	}
	if p.Curved() && v > MaxCurvedVPercent {
		v = MaxCurvedVPercent
	}
	return v
}

// PadMounts returns the pad mount types considered as anchors.
func (p Params) PadMounts() []PadMount {
	mounts := []PadMount{MountThroughHole}
	if p.IncludeSMDPads {
		mounts = append(mounts, MountSMD)
	}
	return mounts
}
