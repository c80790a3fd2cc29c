package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/piwi3910/teardrop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

// stubLookup is a linear TrackLookup over a fixed set of tracks.
type stubLookup []model.Track

func (s stubLookup) Touching(layer model.Layer, net string, p model.Point, tol float64) []model.Track {
	var out []model.Track
	for _, t := range s {
		if t.Layer == layer && t.Net == net && t.IsPointOnEnds(p, tol) {
			out = append(out, t)
		}
	}
	return out
}

func via(x, y, diameter int64) model.Anchor {
	return model.Anchor{
		Kind:     model.AnchorVia,
		Position: model.Pt(x, y),
		Diameter: diameter,
		Drill:    diameter / 2,
		Affinity: model.AffinityAll,
		Net:      "GND",
	}
}

func track(x1, y1, x2, y2, width int64) model.Track {
	return model.NewTrack(model.Pt(x1, y1), model.Pt(x2, y2), width, model.FrontCopper, "GND")
}

func assertPointNear(t *testing.T, want r2.Vec, got model.Point, tol float64) {
	t.Helper()
	d := r2.Norm(r2.Sub(want, ToVec(got)))
	assert.LessOrEqualf(t, d, tol, "want %v, got %v", want, got)
}

func TestScenarioStraightTrack(t *testing.T) {
	p := model.Params{HPercent: 50, VPercent: 90, Segs: 2}
	out, err := ComputeOutline(track(0, 0, 2000, 0, 200), via(0, 0, 800), p, nil)
	require.NoError(t, err)

	require.Len(t, out.Points, 5)
	assert.InDelta(t, 400, out.Backoff, 1e-3)
	assert.InDelta(t, 400, out.N, 1e-3)
	assert.Equal(t, 90.0, out.VPercent)

	a, b, c, d, e := out.Control[0], out.Control[1], out.Control[2], out.Control[3], out.Control[4]
	assert.Equal(t, model.Pt(800, 100), a)
	assert.Equal(t, model.Pt(800, -100), b)
	assert.Equal(t, model.Pt(-200, 0), d)

	alpha := math.Asin(0.9)
	assertPointNear(t, r2.Vec{X: 400 * math.Cos(alpha), Y: -400 * math.Sin(alpha)}, c, 1)
	assertPointNear(t, r2.Vec{X: 400 * math.Cos(alpha), Y: 400 * math.Sin(alpha)}, e, 1)
	assert.InDelta(t, 400, model.Pt(0, 0).Distance(c), 1)
	assert.InDelta(t, 400, model.Pt(0, 0).Distance(e), 1)

	assert.True(t, ContainsStrict(out.Points, r2.Vec{}))
	assert.False(t, SelfIntersects(out.Points))
}

func TestReversedTrackGivesSameOutline(t *testing.T) {
	p := model.Params{HPercent: 50, VPercent: 90, Segs: 2}
	fwd, err := ComputeOutline(track(0, 0, 2000, 0, 200), via(0, 0, 800), p, nil)
	require.NoError(t, err)
	rev, err := ComputeOutline(track(2000, 0, 0, 0, 200), via(0, 0, 800), p, nil)
	require.NoError(t, err)
	assert.Equal(t, fwd.Control, rev.Control)
}

func TestScenarioShortTrackShrinksFlare(t *testing.T) {
	p := model.Params{HPercent: 50, VPercent: 90, Segs: 2}
	out, err := ComputeOutline(track(300, 0, 600, 0, 200), via(0, 0, 800), p, nil)
	require.NoError(t, err)

	assert.InDelta(t, 100, out.Backoff, 1e-3)
	assert.InDelta(t, 200, out.N, 1e-3)
	assert.Less(t, out.VPercent, 90.0)
	// vmin = 25, shrunk halfway
	assert.InDelta(t, 57.5, out.VPercent, 1e-3)
	assert.Equal(t, model.Pt(600, 100), out.Control[0])
	assert.Equal(t, model.Pt(600, -100), out.Control[1])
}

func TestScenarioChainWalk(t *testing.T) {
	first := track(200, 0, 350, 0, 100)
	second := track(350, 0, 500, 0, 100)
	lookup := stubLookup{first, second}

	p := model.Params{HPercent: 50, VPercent: 60, Segs: 2, FollowTracks: true}
	out, err := ComputeOutline(first, via(0, 0, 500), p, lookup)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Segments)
	assert.False(t, out.Ambiguous)
	assert.InDelta(t, 50, out.Backoff, 1e-3)
	assert.InDelta(t, 250, out.N, 1e-3)
	assert.InDelta(t, 60.0, out.VPercent, 1e-9, "full length reached, no shrink")
	assert.Equal(t, model.Pt(500, 50), out.Control[0])
	assert.Equal(t, model.Pt(500, -50), out.Control[1])
}

func TestChainWalkFollowsReversedNeighbour(t *testing.T) {
	first := track(200, 0, 350, 0, 100)
	second := track(500, 0, 350, 0, 100)

	p := model.Params{HPercent: 50, VPercent: 60, Segs: 2, FollowTracks: true}
	out, err := ComputeOutline(first, via(0, 0, 500), p, stubLookup{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Segments)
	assert.Equal(t, model.Pt(500, 50), out.Control[0])
}

func TestChainWalkDisabled(t *testing.T) {
	first := track(200, 0, 350, 0, 100)
	second := track(350, 0, 500, 0, 100)

	p := model.Params{HPercent: 50, VPercent: 60, Segs: 2}
	out, err := ComputeOutline(first, via(0, 0, 500), p, stubLookup{first, second})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Segments)
	assert.InDelta(t, 100, out.N, 1e-3)
}

func TestScenarioJunctionStopsWalk(t *testing.T) {
	first := track(200, 0, 350, 0, 100)
	second := track(350, 0, 500, 0, 100)
	branch := track(350, 0, 450, 100, 100)

	p := model.Params{HPercent: 50, VPercent: 70, Segs: 2, FollowTracks: true}
	out, err := ComputeOutline(first, via(0, 0, 500), p, stubLookup{first, second, branch})
	require.NoError(t, err)

	assert.True(t, out.Ambiguous)
	assert.Equal(t, 1, out.Segments)
	assert.InDelta(t, 100, out.N, 1e-3)
	// vmin = 20, shrunk to 100/250 of the way
	assert.InDelta(t, 40, out.VPercent, 1e-3)
	assert.Equal(t, model.Pt(350, 50), out.Control[0])
}

func TestChainWalkHasNoBendLimit(t *testing.T) {
	first := track(200, 0, 350, 0, 100)
	// right angle turn
	second := track(350, 0, 350, 300, 100)

	p := model.Params{HPercent: 50, VPercent: 60, Segs: 2, FollowTracks: true}
	out, err := ComputeOutline(first, via(0, 0, 500), p, stubLookup{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Segments)
	assert.InDelta(t, 250, out.N, 1e-3)
	// sharp end sits 150 up the second track, which points +Y
	assert.Equal(t, model.Pt(300, 150), out.Control[0])
	assert.Equal(t, model.Pt(400, 150), out.Control[1])
}

func TestChainWalkStopsAtZeroLengthTrack(t *testing.T) {
	first := track(200, 0, 350, 0, 100)
	dot := track(350, 0, 350, 0, 100)

	p := model.Params{HPercent: 50, VPercent: 60, Segs: 2, FollowTracks: true}
	out, err := ComputeOutline(first, via(0, 0, 500), p, stubLookup{first, dot})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Segments)
}

func TestBothEndsInsideRejected(t *testing.T) {
	p := model.DefaultParams()
	_, err := ComputeOutline(track(-100, 0, 100, 0, 100), via(0, 0, 800), p, nil)
	assert.True(t, errors.Is(err, ErrBothEndsInside))
}

func TestTrackShorterThanBackoffRejected(t *testing.T) {
	// Both ends inside: shorter than the distance to the boundary
	p := model.Params{HPercent: 50, VPercent: 50, Segs: 2}
	out, err := ComputeOutline(track(0, 0, 300, 0, 100), via(0, 0, 800), p, nil)
	assert.Error(t, err)
	assert.Empty(t, out.Points)
}

func TestZeroLengthTrackRejected(t *testing.T) {
	_, err := ComputeOutline(track(400, 0, 400, 0, 100), via(0, 0, 800), model.DefaultParams(), nil)
	assert.True(t, errors.Is(err, ErrZeroDirection))
}

func TestDetachedTrackRejected(t *testing.T) {
	_, err := ComputeOutline(track(1000, 0, 2000, 0, 100), via(0, 0, 800), model.DefaultParams(), nil)
	assert.True(t, errors.Is(err, ErrNotAttached))
}

func TestSharpEndInsideRejected(t *testing.T) {
	// Short, steep approach grazing the anchor edge
	tr := model.NewTrack(model.Pt(399, 0), model.Pt(399, 30), 100, model.FrontCopper, "GND")
	_, err := ComputeOutline(tr, via(0, 0, 800), model.Params{HPercent: 1, VPercent: 50, Segs: 2}, nil)
	assert.True(t, errors.Is(err, ErrSharpEndInside))
}

func TestExitPoint(t *testing.T) {
	p, ok := ExitPoint(track(3000, 0, 0, 0, 100), via(0, 0, 800))
	require.True(t, ok)
	assert.Equal(t, model.Pt(400, 0), p)

	_, ok = ExitPoint(track(0, 0, 100, 0, 100), via(0, 0, 800))
	assert.False(t, ok)
}

func TestSharpEndStaysOutsideOtherAnchor(t *testing.T) {
	tr := track(0, 0, 1000, 0, 100)
	p := model.Params{HPercent: 100, VPercent: 70, Segs: 2}
	far := via(1000, 0, 800)

	free, err := ComputeOutline(tr, via(0, 0, 800), p, nil)
	require.NoError(t, err)
	assert.InDelta(t, 600, free.N, 1e-3)

	out, err := ComputeOutlineAmong(tr, via(0, 0, 800), []model.Anchor{via(0, 0, 800), far}, p, nil)
	require.NoError(t, err)
	// 1000 - 400 - 50 leaves 150 beyond the boundary
	assert.InDelta(t, 150, out.N, 1e-3)
	assert.Less(t, out.VPercent, 70.0)
	for _, c := range out.Control[:2] {
		assert.GreaterOrEqual(t, r2.Norm(r2.Sub(ToVec(c), ToVec(far.Position))), 399.0)
	}
	assert.False(t, Contains(out.Points, ToVec(far.Position)))

	// Anchors the track layer cannot reach are ignored
	far.Affinity = model.AffinityBack
	out, err = ComputeOutlineAmong(tr, via(0, 0, 800), []model.Anchor{far}, p, nil)
	require.NoError(t, err)
	assert.InDelta(t, 600, out.N, 1e-3)
}

func TestZeroLengthTeardrop(t *testing.T) {
	// With h=0 the sharp end sits on the boundary, corners outside it.
	p := model.Params{HPercent: 0, VPercent: 100, Segs: 2}
	out, err := ComputeOutline(track(390, 0, 3000, 0, 700), via(0, 0, 800), p, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.N)
	assert.True(t, ContainsStrict(out.Points, r2.Vec{}))
}

func TestCurveContinuity(t *testing.T) {
	p := model.Params{HPercent: 40, VPercent: 70, Segs: 10}
	out, err := ComputeOutline(track(0, 0, 3000, 1000, 200), via(0, 0, 800), p, nil)
	require.NoError(t, err)

	segs := p.Segs
	require.Len(t, out.Points, 2*(segs+1)+1)
	a, b, c, d, e := out.Control[0], out.Control[1], out.Control[2], out.Control[3], out.Control[4]
	assert.Equal(t, b, out.Points[0])
	assert.Equal(t, c, out.Points[segs])
	assert.Equal(t, d, out.Points[segs+1])
	assert.Equal(t, e, out.Points[segs+2])
	assert.Equal(t, a, out.Points[len(out.Points)-1])

	assert.True(t, ContainsStrict(out.Points, r2.Vec{}))
	assert.False(t, SelfIntersects(out.Points))
}

func TestCurvedFlareIsCapped(t *testing.T) {
	p := model.Params{HPercent: 40, VPercent: 95, Segs: 8}
	out, err := ComputeOutline(track(0, 0, 3000, 0, 200), via(0, 0, 800), p, nil)
	require.NoError(t, err)
	assert.Equal(t, model.MaxCurvedVPercent, out.VPercent)
}

func TestContainmentAcrossDirections(t *testing.T) {
	for deg := 0; deg < 360; deg += 15 {
		rad := float64(deg) * math.Pi / 180
		end := model.Pt(int64(math.Round(3000*math.Cos(rad))), int64(math.Round(3000*math.Sin(rad))))
		tr := model.NewTrack(model.Pt(100, -50), end, 250, model.FrontCopper, "GND")
		for _, segs := range []int{2, 6, 10} {
			p := model.Params{HPercent: 30, VPercent: 70, Segs: segs}
			out, err := ComputeOutline(tr, via(0, 0, 1000), p, nil)
			require.NoError(t, err, "deg=%d segs=%d", deg, segs)
			assert.True(t, ContainsStrict(out.Points, r2.Vec{}), "deg=%d segs=%d", deg, segs)
			assert.False(t, SelfIntersects(out.Points), "deg=%d segs=%d", deg, segs)
		}
	}
}

func TestWidthMonotonicity(t *testing.T) {
	p := model.Params{HPercent: 60, VPercent: 80, Segs: 2}
	anchor := via(0, 0, 1000)
	prev := math.Inf(1)
	for length := int64(1200); length >= 560; length -= 40 {
		out, err := ComputeOutline(track(0, 0, length, 0, 200), anchor, p, nil)
		require.NoError(t, err, "length=%d", length)
		assert.LessOrEqual(t, out.VPercent, prev, "length=%d", length)
		prev = out.VPercent
	}
}

func TestNoBulgeClipsFlare(t *testing.T) {
	// The track leaves the anchor obliquely, so the intersection direction
	// and the spine differ; with a wide flare one side passes 90 degrees.
	tr := model.NewTrack(model.Pt(0, 350), model.Pt(3000, 350), 100, model.FrontCopper, "GND")
	p := model.Params{HPercent: 50, VPercent: 100, Segs: 2}

	free, err := ComputeOutline(tr, via(0, 0, 800), p, nil)
	require.NoError(t, err)
	p.NoBulge = true
	clipped, err := ComputeOutline(tr, via(0, 0, 800), p, nil)
	require.NoError(t, err)

	// spine is +X; clipped flare points cannot lie behind the centre
	for _, pt := range []model.Point{clipped.Control[2], clipped.Control[4]} {
		assert.GreaterOrEqual(t, pt.X, int64(-1), "point %v bulges behind the anchor", pt)
	}
	assert.Less(t, free.Control[4].X, int64(0), "unclipped flare should pass perpendicular")
}

func TestArcTrackOutline(t *testing.T) {
	// Quarter arc of radius 2000 leaving a via at (2000, 0)
	arc := model.NewArcTrack(model.Pt(2000, 0), model.Pt(0, 0), 90, 200, model.FrontCopper, "GND")
	anchor := via(2000, 0, 800)
	p := model.Params{HPercent: 50, VPercent: 70, Segs: 6}

	out, err := ComputeOutline(arc, anchor, p, nil)
	require.NoError(t, err)
	assert.InDelta(t, 400, out.Backoff, 1)
	assert.True(t, ContainsStrict(out.Points, ToVec(anchor.Position)))
	assert.False(t, SelfIntersects(out.Points))

	// Sharp end lies on the arc centerline 800 along it
	mid := model.Pt((out.Control[0].X+out.Control[1].X)/2, (out.Control[0].Y+out.Control[1].Y)/2)
	assert.InDelta(t, 2000, mid.Distance(model.Pt(0, 0)), 2)
}

func TestSegmentReversedSampling(t *testing.T) {
	arc := model.NewArcTrack(model.Pt(1000, 0), model.Pt(0, 0), 90, 100, model.FrontCopper, "GND")
	seg := NewSegment(arc)
	rev := seg.Reversed()

	assert.InDelta(t, seg.Length(), rev.Length(), 1e-9)
	p1, t1 := seg.Sample(seg.Length() / 3)
	p2, t2 := rev.Sample(rev.Length() * 2 / 3)
	assert.InDelta(t, p1.X, p2.X, 1e-6)
	assert.InDelta(t, p1.Y, p2.Y, 1e-6)
	assert.InDelta(t, -t1.X, t2.X, 1e-9)
	assert.InDelta(t, -t1.Y, t2.Y, 1e-9)
}

func TestChainSampleCrossesSegments(t *testing.T) {
	c := NewChain(NewSegment(track(0, 0, 100, 0, 10)))
	c.Append(NewSegment(track(100, 0, 100, 100, 10)))

	assert.InDelta(t, 200, c.Length(), 1e-9)
	pos, tan := c.Sample(150)
	assert.InDelta(t, 100, pos.X, 1e-9)
	assert.InDelta(t, 50, pos.Y, 1e-9)
	assert.Equal(t, r2.Vec{X: 0, Y: 1}, tan)

	pos, _ = c.Sample(1000)
	assert.Equal(t, r2.Vec{X: 100, Y: 100}, pos)
}
