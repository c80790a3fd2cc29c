package engine

import (
	"fmt"

	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// ClearanceViolation is a teardrop vertex that comes too close to copper
// of another net on the same layer.
type ClearanceViolation struct {
	ZoneID   string
	Net      string
	Layer    model.Layer
	Kind     string // "track", "via" or "pad"
	OtherID  string
	OtherNet string
	At       model.Point
	Gap      float64 // copper-to-copper distance, negative when overlapping
}

// CheckClearance reports teardrops whose outline vertices lie closer than
// clearance, or the zone's own clearance when larger, to foreign copper.
// Pads are treated as round with their smaller dimension as diameter. At
// most one violation is reported per (zone, object) pair.
func CheckClearance(tracks []model.Track, vias []model.Via, pads []model.Pad, shapes []model.Zone, clearance int64) []ClearanceViolation {
	var violations []ClearanceViolation

	for _, z := range shapes {
		limit := float64(max(clearance, z.Clearance))
		for _, t := range tracks {
			if t.Layer != z.Layer || t.Net == z.Net {
				continue
			}
			if at, gap, ok := closestVertex(z.Outline, func(p r2.Vec) float64 {
				return geometry.TrackDistance(t, p) - float64(t.Width)/2
			}); ok && gap < limit {
				violations = append(violations, violation(z, "track", t.ID, t.Net, at, gap))
			}
		}
		for _, v := range vias {
			if v.Net == z.Net {
				continue
			}
			c, r := geometry.ToVec(v.Position), float64(v.Diameter)/2
			if at, gap, ok := closestVertex(z.Outline, func(p r2.Vec) float64 {
				return r2.Norm(r2.Sub(p, c)) - r
			}); ok && gap < limit {
				violations = append(violations, violation(z, "via", v.ID, v.Net, at, gap))
			}
		}
		for _, pad := range pads {
			if pad.Net == z.Net || !pad.IsOnLayer(z.Layer) {
				continue
			}
			c, r := geometry.ToVec(pad.Position), float64(min(pad.Size.W, pad.Size.H))/2
			if at, gap, ok := closestVertex(z.Outline, func(p r2.Vec) float64 {
				return r2.Norm(r2.Sub(p, c)) - r
			}); ok && gap < limit {
				violations = append(violations, violation(z, "pad", pad.ID, pad.Net, at, gap))
			}
		}
	}

	return violations
}

func violation(z model.Zone, kind, id, net string, at model.Point, gap float64) ClearanceViolation {
	return ClearanceViolation{
		ZoneID:   z.ID,
		Net:      z.Net,
		Layer:    z.Layer,
		Kind:     kind,
		OtherID:  id,
		OtherNet: net,
		At:       at,
		Gap:      gap,
	}
}

// closestVertex returns the outline vertex with the smallest distance
// according to dist.
func closestVertex(outline []model.Point, dist func(r2.Vec) float64) (model.Point, float64, bool) {
	if len(outline) == 0 {
		return model.Point{}, 0, false
	}
	best, bestGap := outline[0], dist(geometry.ToVec(outline[0]))
	for _, p := range outline[1:] {
		if g := dist(geometry.ToVec(p)); g < bestGap {
			best, bestGap = p, g
		}
	}
	return best, bestGap, true
}

// FormatClearanceWarnings produces human-readable warnings.
func FormatClearanceWarnings(violations []ClearanceViolation) []string {
	var warnings []string
	for _, v := range violations {
		msg := fmt.Sprintf(
			"Teardrop %s (%s, %s) is %.0f from %s %s of net %q at (%d, %d)",
			v.ZoneID, v.Net, v.Layer, v.Gap, v.Kind, v.OtherID, v.OtherNet, v.At.X, v.At.Y,
		)
		warnings = append(warnings, msg)
	}
	return warnings
}
