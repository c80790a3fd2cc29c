package engine

import (
	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
)

// CollectExisting groups the teardrop zones among zones by net.
func CollectExisting(zones []model.Zone) map[string][]model.Zone {
	byNet := make(map[string][]model.Zone)
	for _, z := range zones {
		if model.IsTeardrop(z) {
			byNet[z.Net] = append(byNet[z.Net], z)
		}
	}
	return byNet
}

// BelongsTo reports whether zone is the teardrop of the given track and
// anchor: the zone covers the anchor position and the track covers the
// centre of the zone's bounding box. The test is a heuristic and can
// misattribute zones on densely packed boards.
func BelongsTo(zone model.Zone, track model.Track, anchor model.Anchor) bool {
	if zone.Layer != track.Layer {
		return false
	}
	if !geometry.Contains(zone.Outline, geometry.ToVec(anchor.Position)) {
		return false
	}
	return geometry.HitTest(track, geometry.ToVec(zone.BoundingBoxCenter()))
}

// CoversExit reports whether zone, on the track's layer and net, covers
// both the anchor position and the point where the track leaves the
// anchor. A teardrop made for the pair always covers both, whatever the
// shape of the track beyond.
func CoversExit(zone model.Zone, track model.Track, anchor model.Anchor) bool {
	if zone.Layer != track.Layer || zone.Net != track.Net {
		return false
	}
	exit, ok := geometry.ExitPoint(track, anchor)
	if !ok {
		return false
	}
	return geometry.Contains(zone.Outline, geometry.ToVec(anchor.Position)) &&
		geometry.Contains(zone.Outline, geometry.ToVec(exit))
}

// OverlapsSameNetZone reports whether the anchor already sits inside a
// user-authored zone on the track's layer and net. Cost is linear in the
// number of zones.
func OverlapsSameNetZone(zones []model.Zone, anchor model.Anchor, track model.Track) bool {
	pos := geometry.ToVec(anchor.Position)
	for _, z := range zones {
		if model.IsTeardrop(z) || z.Net != track.Net || z.Layer != track.Layer {
			continue
		}
		if geometry.Contains(z.Outline, pos) {
			return true
		}
	}
	return false
}
