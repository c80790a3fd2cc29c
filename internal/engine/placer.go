package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/teardrop/internal/geometry"
	"github.com/piwi3910/teardrop/internal/model"
)

// Board is the host document the placer reads from and writes to. Errors
// returned by the enumeration methods abort the pass.
type Board interface {
	Tracks() ([]model.Track, error)
	Vias() ([]model.Via, error)
	Pads() ([]model.Pad, error)
	Zones() ([]model.Zone, error)
	AddZone(z model.Zone) error
	RemoveZone(id string) error
}

// Filler recomputes the copper fill of zones.
type Filler interface {
	Fill(zones []model.Zone) error
}

// Placer adds and removes teardrops on a board.
type Placer struct {
	board  Board
	filler Filler
	params model.Params
}

func New(board Board, filler Filler, params model.Params) *Placer {
	return &Placer{board: board, filler: filler, params: params}
}

// snapshot is the read-only view of the board for one pass.
type snapshot struct {
	tracks []model.Track
	vias   []model.Via
	pads   []model.Pad
	zones  []model.Zone
}

func (p *Placer) snapshot() (snapshot, error) {
	var s snapshot
	var err error
	if s.tracks, err = p.board.Tracks(); err != nil {
		return s, fmt.Errorf("failed to read tracks: %w", err)
	}
	if s.vias, err = p.board.Vias(); err != nil {
		return s, fmt.Errorf("failed to read vias: %w", err)
	}
	if s.pads, err = p.board.Pads(); err != nil {
		return s, fmt.Errorf("failed to read pads: %w", err)
	}
	if s.zones, err = p.board.Zones(); err != nil {
		return s, fmt.Errorf("failed to read zones: %w", err)
	}
	return s, nil
}

// Plan computes the teardrops a Place call would add without touching the
// board. The returned report lists them in Shapes.
func (p *Placer) Plan() (Report, error) {
	return p.plan(OpPlan)
}

func (p *Placer) plan(op Op) (Report, error) {
	report := newReport(op, p.params)
	if err := p.params.Validate(); err != nil {
		return report, fmt.Errorf("invalid parameters: %w", err)
	}
	snap, err := p.snapshot()
	if err != nil {
		return report, err
	}

	all, selected := CollectAnchors(snap.vias, snap.pads, p.params.PadMounts())
	anchors := all
	if len(selected) > 0 {
		anchors = selected
	}

	var lookup geometry.TrackLookup
	if p.params.FollowTracks {
		lookup = NewTrackIndex(snap.tracks)
	}
	existing := CollectExisting(snap.zones)
	flare := p.params.EffectiveVPercent()
	log := Logger()

	for _, t := range snap.tracks {
		for _, a := range anchors {
			if !t.IsPointOnEnds(a.Position, a.Radius()) {
				continue
			}
			reason, ok := p.qualify(t, a, flare, existing, report.Shapes, snap.zones)
			if !ok {
				log.Debug("teardrop skipped", "track", t.ID, "anchor", a.Position, "reason", reason)
				report.skip(reason)
				continue
			}

			out, err := geometry.ComputeOutlineAmong(t, a, all, p.params, lookup)
			if out.Ambiguous {
				report.Ambiguous++
			}
			if err != nil {
				reason := geometryReason(err)
				log.Debug("teardrop rejected", "track", t.ID, "anchor", a.Position, "reason", reason)
				report.skip(reason)
				continue
			}
			report.Shapes = append(report.Shapes, model.NewTeardropZone(out.Points, t))
		}
	}
	report.Added = len(report.Shapes)

	log.Info("teardrop plan complete",
		"run", report.RunID,
		"tracks", len(snap.tracks),
		"anchors", len(anchors),
		"planned", report.Added,
		"skipped", report.SkippedTotal())
	return report, nil
}

// qualify applies the cheap checks that precede any geometry.
func (p *Placer) qualify(t model.Track, a model.Anchor, flare float64, existing map[string][]model.Zone, queued, zones []model.Zone) (SkipReason, bool) {
	if float64(t.Width) >= float64(a.Diameter)*flare/100 {
		return SkipNarrow, false
	}
	if !a.Affinity.Allows(t.Layer) {
		return SkipAffinity, false
	}
	for _, z := range existing[t.Net] {
		if BelongsTo(z, t, a) || CoversExit(z, t, a) {
			return SkipDuplicate, false
		}
	}
	for _, z := range queued {
		if z.Net == t.Net && (BelongsTo(z, t, a) || CoversExit(z, t, a)) {
			return SkipDuplicate, false
		}
	}
	if p.params.DiscardInSameNetZone && OverlapsSameNetZone(zones, a, t) {
		return SkipSameNetZone, false
	}
	return "", true
}

func geometryReason(err error) SkipReason {
	switch {
	case errors.Is(err, geometry.ErrNotAttached):
		return SkipNotAttached
	case errors.Is(err, geometry.ErrBothEndsInside):
		return SkipBothEndsInside
	case errors.Is(err, geometry.ErrNoExit):
		return SkipNoExit
	case errors.Is(err, geometry.ErrZeroDirection):
		return SkipZeroDirection
	case errors.Is(err, geometry.ErrSharpEndInside):
		return SkipSharpEndInside
	}
	return SkipDegenerate
}

// Place adds every planned teardrop to the board and refills once. If the
// board rejects a zone or the fill fails, the zones added in this pass are
// removed again and the error is returned.
func (p *Placer) Place() (Report, error) {
	report, err := p.plan(OpPlace)
	if err != nil {
		return report, err
	}
	if len(report.Shapes) == 0 {
		return report, nil
	}

	for i, z := range report.Shapes {
		if err := p.board.AddZone(z); err != nil {
			p.rollback(report.Shapes[:i])
			report.Added = 0
			return report, fmt.Errorf("failed to add teardrop %s: %w", z.ID, err)
		}
	}

	if err := p.refill(); err != nil {
		p.rollback(report.Shapes)
		report.Added = 0
		return report, err
	}
	Logger().Info("teardrops inserted", "run", report.RunID, "count", report.Added)
	return report, nil
}

func (p *Placer) rollback(added []model.Zone) {
	for _, z := range added {
		if err := p.board.RemoveZone(z.ID); err != nil {
			Logger().Warn("rollback failed", "zone", z.ID, "error", err)
		}
	}
}

// RemoveAll deletes every teardrop zone from the board and refills once.
// User-authored zones are never touched. If a removal or the fill fails,
// the zones removed in this pass are put back and the error is returned.
func (p *Placer) RemoveAll() (Report, error) {
	report := newReport(OpRemove, p.params)
	zones, err := p.board.Zones()
	if err != nil {
		return report, fmt.Errorf("failed to read zones: %w", err)
	}

	var removed []model.Zone
	for _, z := range zones {
		if !model.IsTeardrop(z) {
			continue
		}
		if err := p.board.RemoveZone(z.ID); err != nil {
			p.restore(removed)
			return report, fmt.Errorf("failed to remove teardrop %s: %w", z.ID, err)
		}
		removed = append(removed, z)
	}
	if len(removed) == 0 {
		return report, nil
	}

	if err := p.refill(); err != nil {
		p.restore(removed)
		return report, err
	}
	report.Removed = len(removed)
	Logger().Info("teardrops removed", "run", report.RunID, "count", report.Removed)
	return report, nil
}

func (p *Placer) restore(removed []model.Zone) {
	for _, z := range removed {
		if err := p.board.AddZone(z); err != nil {
			Logger().Warn("restore failed", "zone", z.ID, "error", err)
		}
	}
}

func (p *Placer) refill() error {
	if p.filler == nil {
		return nil
	}
	zones, err := p.board.Zones()
	if err != nil {
		return fmt.Errorf("failed to read zones: %w", err)
	}
	if err := p.filler.Fill(zones); err != nil {
		return fmt.Errorf("failed to fill zones: %w", err)
	}
	return nil
}
