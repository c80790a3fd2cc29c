package geometry

import (
	"errors"
	"math"

	"github.com/piwi3910/teardrop/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// ChainTolerance is the distance, in board units, within which two track
// endpoints are considered connected while walking a chain.
const ChainTolerance = 10.0

// Backoff marching resolution as a fraction of the anchor radius.
const backoffSteps = 64

// Lengths closer than this are equal; absorbs the bisection residue.
const lengthEpsilon = 1e-6

var (
	ErrNotAttached    = errors.New("track does not end at the anchor")
	ErrBothEndsInside = errors.New("both track ends inside the anchor")
	ErrNoExit         = errors.New("track never leaves the anchor")
	ErrZeroDirection  = errors.New("zero-length direction")
	ErrSharpEndInside = errors.New("sharp end inside the anchor")
	ErrDegenerate     = errors.New("degenerate outline")
)

// TrackLookup finds tracks on a layer and net with an endpoint within tol
// of p. It is consulted only when following track chains.
type TrackLookup interface {
	Touching(layer model.Layer, net string, p model.Point, tol float64) []model.Track
}

// Outline is a computed teardrop.
type Outline struct {
	// Control holds the straight-sided polygon A, B, C, D, E.
	Control [5]model.Point
	// Points is the emitted outline: Control when straight, otherwise
	// curve(B..C), D, curve(E..A).
	Points []model.Point

	Backoff   float64 // distance from the raw track end to the anchor boundary
	Target    float64 // requested length beyond the boundary
	N         float64 // length actually used
	VPercent  float64 // flare after clamping and width shrink
	Segments  int     // tracks consumed by the chain walk, including the first
	Ambiguous bool    // the walk stopped at a junction
}

// ComputeOutline derives the teardrop joining track to anchor. lookup may
// be nil when chain following is off. A returned error means the pair
// yields no teardrop; it never describes a host failure.
func ComputeOutline(track model.Track, anchor model.Anchor, p model.Params, lookup TrackLookup) (Outline, error) {
	return ComputeOutlineAmong(track, anchor, nil, p, lookup)
}

// ComputeOutlineAmong is ComputeOutline with the sharp end kept outside
// every anchor in others that the track runs into. Anchors stacked on
// anchor itself are ignored.
func ComputeOutlineAmong(track model.Track, anchor model.Anchor, others []model.Anchor, p model.Params, lookup TrackLookup) (Outline, error) {
	var out Outline
	center := ToVec(anchor.Position)
	radius := anchor.Radius()
	if radius <= 0 {
		return out, ErrDegenerate
	}

	seg := NewSegment(track)
	if seg.Length() == 0 {
		return out, ErrZeroDirection
	}

	// Orient the track so it starts at the anchor.
	dStart := r2.Norm(r2.Sub(seg.Start(), center))
	dEnd := r2.Norm(r2.Sub(seg.End(), center))
	if dStart < radius && dEnd < radius {
		return out, ErrBothEndsInside
	}
	if dEnd < dStart {
		seg = seg.Reversed()
		dStart = dEnd
	}
	if dStart > radius+ChainTolerance {
		return out, ErrNotAttached
	}

	backoff, ok := exitDistance(seg, center, radius)
	if !ok {
		return out, ErrNoExit
	}
	out.Backoff = backoff

	v := p.EffectiveVPercent()
	target := float64(anchor.Diameter) * p.HPercent / 100
	out.Target = target

	chain := NewChain(seg)
	if p.FollowTracks && lookup != nil && seg.Length()-backoff < target {
		out.Ambiguous = walkChain(chain, track, lookup, backoff+target)
	}
	out.Segments = chain.Len()

	width := float64(track.Width)
	n := math.Min(target, chain.Length()-backoff)
	for _, o := range others {
		if !o.Affinity.Allows(track.Layer) {
			continue
		}
		oc := ToVec(o.Position)
		keep := o.Radius() + width/2
		dist := r2.Norm(r2.Sub(oc, center))
		if dist <= radius || dist > radius+ChainTolerance+backoff+n+keep {
			continue
		}
		if d, ok := entryDistance(chain, oc, keep, backoff, backoff+n); ok {
			n = d - backoff
		}
	}
	if n < 0 {
		n = 0
	}
	out.N = n

	vmin := 100 * width / float64(anchor.Diameter)
	if target-n > lengthEpsilon {
		v = shrinkVPercent(v, vmin, n/target)
	}
	out.VPercent = v

	// Sharp end
	sharp, tan := chain.Sample(backoff + n)
	if r2.Norm(tan) == 0 {
		return out, ErrZeroDirection
	}
	left := r2.Vec{X: -tan.Y, Y: tan.X}
	a := r2.Add(sharp, r2.Scale(width/2, left))
	b := r2.Sub(sharp, r2.Scale(width/2, left))
	if r2.Norm(r2.Sub(a, center)) < radius || r2.Norm(r2.Sub(b, center)) < radius {
		return out, ErrSharpEndInside
	}

	// Anchor side
	hit, hitTan := chain.Sample(backoff)
	rel := r2.Sub(hit, center)
	if r2.Norm(rel) == 0 {
		return out, ErrZeroDirection
	}
	u0 := r2.Unit(rel)

	spine := r2.Sub(sharp, hit)
	if r2.Norm(spine) == 0 {
		spine = hitTan
	}
	spine = r2.Unit(spine)

	alpha := math.Asin(clamp(v/100, -1, 1))
	dirC := r2.Rotate(u0, -alpha, r2.Vec{})
	dirE := r2.Rotate(u0, alpha, r2.Vec{})
	if p.NoBulge {
		dirC = clipToSpine(dirC, spine)
		dirE = clipToSpine(dirE, spine)
	}
	c := r2.Add(center, r2.Scale(radius, dirC))
	e := r2.Add(center, r2.Scale(radius, dirE))
	d := r2.Sub(center, r2.Scale(radius/2, u0))

	out.Control = [5]model.Point{ToPoint(a), ToPoint(b), ToPoint(c), ToPoint(d), ToPoint(e)}
	if p.Curved() {
		out.Points = smoothSides(out.Control, tan, dirC, dirE, spine, v, vmin, p.Segs)
	} else {
		out.Points = append([]model.Point(nil), out.Control[:]...)
	}

	check := dedupe(out.Points)
	if len(check) < 3 || SelfIntersects(check) || !ContainsStrict(check, center) {
		return out, ErrDegenerate
	}
	return out, nil
}

// exitDistance returns the arc length from the start of seg at which it
// first leaves the circle. A start already outside gives zero.
func exitDistance(seg Segment, center r2.Vec, radius float64) (float64, bool) {
	inside := func(d float64) bool {
		pos, _ := seg.Sample(d)
		return r2.Norm(r2.Sub(pos, center)) < radius
	}
	if !inside(0) {
		return 0, true
	}

	step := math.Max(radius/backoffSteps, 1)
	length := seg.Length()
	prev := 0.0
	for {
		d := math.Min(prev+step, length)
		if !inside(d) {
			lo, hi := prev, d
			for i := 0; i < 64 && hi-lo > 1e-6; i++ {
				mid := (lo + hi) / 2
				if inside(mid) {
					lo = mid
				} else {
					hi = mid
				}
			}
			return hi, true
		}
		if d >= length {
			return 0, false
		}
		prev = d
	}
}

// entryDistance returns the first arc length in [from, to] at which chain
// comes within radius of center.
func entryDistance(chain *Chain, center r2.Vec, radius, from, to float64) (float64, bool) {
	inside := func(d float64) bool {
		pos, _ := chain.Sample(d)
		return r2.Norm(r2.Sub(pos, center)) < radius
	}
	if to <= from {
		return 0, false
	}
	if inside(from) {
		return from, true
	}

	step := math.Max(radius/backoffSteps, 1)
	prev := from
	for prev < to {
		d := math.Min(prev+step, to)
		if inside(d) {
			lo, hi := prev, d
			for i := 0; i < 64 && hi-lo > 1e-6; i++ {
				mid := (lo + hi) / 2
				if inside(mid) {
					hi = mid
				} else {
					lo = mid
				}
			}
			return lo, true
		}
		prev = d
	}
	return 0, false
}

// ExitPoint returns where track leaves the anchor circle, walking from
// the track end nearest the anchor centre.
func ExitPoint(track model.Track, anchor model.Anchor) (model.Point, bool) {
	center := ToVec(anchor.Position)
	radius := anchor.Radius()
	seg := NewSegment(track)
	if radius <= 0 || seg.Length() == 0 {
		return model.Point{}, false
	}
	if r2.Norm(r2.Sub(seg.End(), center)) < r2.Norm(r2.Sub(seg.Start(), center)) {
		seg = seg.Reversed()
	}
	d, ok := exitDistance(seg, center, radius)
	if !ok {
		return model.Point{}, false
	}
	pos, _ := seg.Sample(d)
	return ToPoint(pos), true
}

// walkChain extends chain across connected tracks until it is at least
// need long. It reports whether the walk stopped at a junction.
func walkChain(chain *Chain, first model.Track, lookup TrackLookup, need float64) bool {
	visited := []model.Track{first}
	current := first
	for need-chain.Length() > lengthEpsilon {
		end := chain.End()
		var next []model.Track
		for _, t := range lookup.Touching(current.Layer, current.Net, ToPoint(end), ChainTolerance) {
			if !containsTrack(visited, t) {
				next = append(next, t)
			}
		}
		if len(next) == 0 {
			return false
		}
		if len(next) > 1 {
			return true
		}

		t := next[0]
		seg := NewSegment(t)
		if seg.Length() == 0 {
			return false
		}
		if r2.Norm(r2.Sub(seg.End(), end)) < r2.Norm(r2.Sub(seg.Start(), end)) {
			seg = seg.Reversed()
		}
		chain.Append(seg)
		visited = append(visited, t)
		current = t
	}
	return false
}

func containsTrack(list []model.Track, t model.Track) bool {
	for _, x := range list {
		if x.ID == t.ID && x.Start == t.Start && x.End == t.End && x.Layer == t.Layer {
			return true
		}
	}
	return false
}

// shrinkVPercent interpolates v toward vmin by ratio, where ratio is the
// fraction of the target length that is available.
func shrinkVPercent(v, vmin, ratio float64) float64 {
	if v <= vmin {
		return v
	}
	ratio = clamp(ratio, 0, 1)
	return vmin + (v-vmin)*ratio
}

// clipToSpine limits dir to within 90 degrees of spine.
func clipToSpine(dir, spine r2.Vec) r2.Vec {
	angle := math.Atan2(r2.Cross(spine, dir), r2.Dot(spine, dir))
	switch {
	case angle > math.Pi/2:
		return r2.Rotate(spine, math.Pi/2, r2.Vec{})
	case angle < -math.Pi/2:
		return r2.Rotate(spine, -math.Pi/2, r2.Vec{})
	}
	return dir
}

// smoothSides replaces the B-C and E-A legs with cubic curves that leave
// the sharp end along the track edge and meet the anchor along its
// circumference.
func smoothSides(ctrl [5]model.Point, tan, dirC, dirE, spine r2.Vec, v, vmin float64, segs int) []model.Point {
	a, b, c, d, e := ctrl[0], ctrl[1], ctrl[2], ctrl[3], ctrl[4]

	weaken := 0.0
	if vmin < 100 {
		weaken = clamp((v-vmin)/(100-vmin), 0, 1)
	}
	back := r2.Scale(-1, tan)

	chordBC := r2.Norm(r2.Sub(ToVec(c), ToVec(b)))
	hBC := chordBC * 0.5 * weaken
	sideBC := sampleCubic(b, c, r2.Scale(hBC, back), r2.Scale(hBC, circleTangent(dirC, spine)), segs)

	chordEA := r2.Norm(r2.Sub(ToVec(a), ToVec(e)))
	hEA := chordEA * 0.5 * weaken
	sideEA := sampleCubic(e, a, r2.Scale(hEA, circleTangent(dirE, spine)), r2.Scale(hEA, back), segs)

	pts := make([]model.Point, 0, 2*(segs+1)+1)
	pts = append(pts, sideBC...)
	pts = append(pts, d)
	return append(pts, sideEA...)
}

// circleTangent returns the tangent to the anchor circle at direction dir
// that points along the spine, away from the anchor.
func circleTangent(dir, spine r2.Vec) r2.Vec {
	t := r2.Vec{X: -dir.Y, Y: dir.X}
	if r2.Dot(t, spine) < 0 {
		t = r2.Scale(-1, t)
	}
	return t
}

// dedupe drops consecutive repeated points, including a closing repeat.
func dedupe(pts []model.Point) []model.Point {
	out := make([]model.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
