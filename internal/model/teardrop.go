package model

import "github.com/google/uuid"

// TeardropPriority is the reserved zone priority that marks a zone as a
// generated teardrop. Hosts that serialize the priority field persist it
// on disk, so the value must stay stable and must not be used for
// user-authored zones.
const TeardropPriority = 0x4242

// Minimum fill thickness of a teardrop zone, in board units.
const TeardropMinThickness = 25400

// IsTeardrop reports whether the zone is owned by the teardrop generator.
func IsTeardrop(z Zone) bool {
	return z.Priority == TeardropPriority
}

// MarkTeardrop tags the zone as owned by the teardrop generator.
func MarkTeardrop(z *Zone) {
	z.Priority = TeardropPriority
}

// NewTeardropZone builds a tagged teardrop zone on the track's layer and
// net from an outline. The zone inherits the track's clearance.
func NewTeardropZone(outline []Point, t Track) Zone {
	z := Zone{
		ID:           uuid.New().String()[:8],
		Net:          t.Net,
		Layer:        t.Layer,
		Outline:      outline,
		MinThickness: TeardropMinThickness,
		Clearance:    t.Clearance,
	}
	MarkTeardrop(&z)
	return z
}
