package engine

import "github.com/piwi3910/teardrop/internal/model"

type trackKey struct {
	layer model.Layer
	net   string
}

// TrackIndex groups tracks by layer and net for chain following. It is
// built once per pass and read-only afterwards.
type TrackIndex struct {
	groups map[trackKey][]model.Track
}

// NewTrackIndex builds an index over tracks, keeping board order within
// each group.
func NewTrackIndex(tracks []model.Track) *TrackIndex {
	idx := &TrackIndex{groups: make(map[trackKey][]model.Track)}
	for _, t := range tracks {
		k := trackKey{t.Layer, t.Net}
		idx.groups[k] = append(idx.groups[k], t)
	}
	return idx
}

// Lookup returns the tracks on a layer and net.
func (idx *TrackIndex) Lookup(layer model.Layer, net string) []model.Track {
	return idx.groups[trackKey{layer, net}]
}

// Touching returns the tracks on a layer and net with an endpoint within
// tol of p.
func (idx *TrackIndex) Touching(layer model.Layer, net string, p model.Point, tol float64) []model.Track {
	var out []model.Track
	for _, t := range idx.Lookup(layer, net) {
		if t.IsPointOnEnds(p, tol) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of indexed tracks.
func (idx *TrackIndex) Len() int {
	n := 0
	for _, g := range idx.groups {
		n += len(g)
	}
	return n
}
