// Package geometry derives teardrop outlines from track and anchor
// snapshots. All trigonometry runs in float64 radians; outline points are
// rounded to integer board units only when they leave the package.
package geometry

import (
	"math"

	"github.com/piwi3910/teardrop/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// ToVec converts a board point to a float vector.
func ToVec(p model.Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}

// ToPoint rounds a float vector to the nearest board point.
func ToPoint(v r2.Vec) model.Point {
	return model.Point{X: int64(math.Round(v.X)), Y: int64(math.Round(v.Y))}
}

// Segment is an oriented view of a straight or arc track. The same track
// can be viewed in either direction through Reversed; the underlying
// model.Track is never modified.
type Segment struct {
	kind   model.TrackKind
	start  r2.Vec
	end    r2.Vec
	length float64

	// arcs only
	center     r2.Vec
	radius     float64
	startAngle float64 // radians, direction of start as seen from center
	sweep      float64 // signed radians, positive is counter-clockwise
}

// NewSegment builds the forward view of a track.
func NewSegment(t model.Track) Segment {
	if t.Kind == model.TrackArc {
		c := ToVec(t.Center)
		s := ToVec(t.Start)
		rel := r2.Sub(s, c)
		radius := r2.Norm(rel)
		a0 := math.Atan2(rel.Y, rel.X)
		sweep := t.Angle * math.Pi / 180
		return Segment{
			kind:       model.TrackArc,
			start:      s,
			end:        r2.Add(c, r2.Scale(radius, r2.Vec{X: math.Cos(a0 + sweep), Y: math.Sin(a0 + sweep)})),
			length:     radius * math.Abs(sweep),
			center:     c,
			radius:     radius,
			startAngle: a0,
			sweep:      sweep,
		}
	}
	s, e := ToVec(t.Start), ToVec(t.End)
	return Segment{
		kind:   model.TrackStraight,
		start:  s,
		end:    e,
		length: r2.Norm(r2.Sub(e, s)),
	}
}

// Kind reports whether the segment is straight or an arc.
func (s Segment) Kind() model.TrackKind { return s.kind }

// Start returns the first point of the oriented segment.
func (s Segment) Start() r2.Vec { return s.start }

// End returns the last point of the oriented segment.
func (s Segment) End() r2.Vec { return s.end }

// Length returns the centerline length.
func (s Segment) Length() float64 { return s.length }

// Reversed returns the same segment traversed end to start.
func (s Segment) Reversed() Segment {
	r := s
	r.start, r.end = s.end, s.start
	if s.kind == model.TrackArc {
		r.startAngle = s.startAngle + s.sweep
		r.sweep = -s.sweep
	}
	return r
}

// Sample returns the position and unit tangent at arc length d from the
// start. d is clamped to [0, Length]. The tangent of a zero-length
// segment is the zero vector.
func (s Segment) Sample(d float64) (pos, tangent r2.Vec) {
	if d < 0 {
		d = 0
	}
	if d > s.length {
		d = s.length
	}
	if s.length == 0 {
		return s.start, r2.Vec{}
	}
	if s.kind == model.TrackArc {
		dir := math.Copysign(1, s.sweep)
		a := s.startAngle + dir*d/s.radius
		sin, cos := math.Sincos(a)
		pos = r2.Add(s.center, r2.Vec{X: s.radius * cos, Y: s.radius * sin})
		tangent = r2.Vec{X: -dir * sin, Y: dir * cos}
		return pos, tangent
	}
	tangent = r2.Scale(1/s.length, r2.Sub(s.end, s.start))
	return r2.Add(s.start, r2.Scale(d, tangent)), tangent
}

// Chain is a sequence of oriented segments joined end to start, sampled
// by cumulative arc length.
type Chain struct {
	segs  []Segment
	total float64
}

// NewChain starts a chain with one segment.
func NewChain(first Segment) *Chain {
	return &Chain{segs: []Segment{first}, total: first.Length()}
}

// Append adds a segment at the far end of the chain.
func (c *Chain) Append(s Segment) {
	c.segs = append(c.segs, s)
	c.total += s.Length()
}

// Len returns the number of segments in the chain.
func (c *Chain) Len() int { return len(c.segs) }

// Length returns the total arc length of the chain.
func (c *Chain) Length() float64 { return c.total }

// End returns the far end of the last segment.
func (c *Chain) End() r2.Vec { return c.segs[len(c.segs)-1].End() }

// Sample returns position and tangent at cumulative arc length d.
func (c *Chain) Sample(d float64) (pos, tangent r2.Vec) {
	for i, s := range c.segs {
		if d <= s.Length() || i == len(c.segs)-1 {
			return s.Sample(d)
		}
		d -= s.Length()
	}
	return c.segs[0].Sample(0)
}
