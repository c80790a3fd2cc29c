package geometry

import (
	"math"

	"github.com/piwi3910/teardrop/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Area returns the absolute area enclosed by a closed outline using the
// shoelace formula.
func Area(poly []model.Point) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(poly[i].X)*float64(poly[j].Y) - float64(poly[j].X)*float64(poly[i].Y)
	}
	return math.Abs(sum) / 2
}

// Bounds returns the bounding box of an outline.
func Bounds(poly []model.Point) r2.Box {
	if len(poly) == 0 {
		return r2.Box{}
	}
	b := r2.Box{Min: ToVec(poly[0]), Max: ToVec(poly[0])}
	for _, p := range poly[1:] {
		v := ToVec(p)
		b = b.Union(r2.Box{Min: v, Max: v})
	}
	return b
}

// Contains reports whether p lies inside the outline or on its boundary.
func Contains(poly []model.Point, p r2.Vec) bool {
	if onBoundary(poly, p) {
		return true
	}
	return rayCast(poly, p)
}

// ContainsStrict reports whether p lies inside the outline and not on its
// boundary.
func ContainsStrict(poly []model.Point, p r2.Vec) bool {
	if onBoundary(poly, p) {
		return false
	}
	return rayCast(poly, p)
}

func rayCast(poly []model.Point, p r2.Vec) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := float64(poly[i].X), float64(poly[i].Y)
		xj, yj := float64(poly[j].X), float64(poly[j].Y)
		if (yi > p.Y) != (yj > p.Y) &&
			p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

func onBoundary(poly []model.Point, p r2.Vec) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := ToVec(poly[i]), ToVec(poly[(i+1)%n])
		if DistanceToSegment(p, a, b) < 1e-9 {
			return true
		}
	}
	return false
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

// SelfIntersects reports whether any two edges of the closed outline
// cross or overlap, other than adjacent edges meeting at their shared
// vertex. Cross products are computed in int64 so the test is exact for
// board coordinates.
func SelfIntersects(poly []model.Point) bool {
	n := len(poly)
	if n < 3 {
		return true
	}
	for i := 0; i < n; i++ {
		a1, a2 := poly[i], poly[(i+1)%n]
		for j := i + 1; j < n; j++ {
			b1, b2 := poly[j], poly[(j+1)%n]
			switch {
			case j == i+1:
				if foldsBack(a1, a2, b2) {
					return true
				}
			case i == 0 && j == n-1:
				if foldsBack(b1, a1, a2) {
					return true
				}
			default:
				if segmentsIntersect(a1, a2, b1, b2) {
					return true
				}
			}
		}
	}
	return false
}

// foldsBack reports whether the path a-b-c doubles back on itself along a
// line.
func foldsBack(a, b, c model.Point) bool {
	if orient(a, b, c) != 0 {
		return false
	}
	ba, bc := a.Sub(b), c.Sub(b)
	return ba.X*bc.X+ba.Y*bc.Y > 0
}

func orient(a, b, c model.Point) int {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func onSegment(a, b, p model.Point) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 model.Point) bool {
	o1, o2 := orient(p1, p2, q1), orient(p1, p2, q2)
	o3, o4 := orient(q1, q2, p1), orient(q1, q2, p2)
	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, p2, q2):
		return true
	case o3 == 0 && onSegment(q1, q2, p1):
		return true
	case o4 == 0 && onSegment(q1, q2, p2):
		return true
	}
	return false
}

// TrackDistance returns the distance from p to the centerline of a
// track.
func TrackDistance(t model.Track, p r2.Vec) float64 {
	seg := NewSegment(t)
	if seg.Kind() != model.TrackArc || seg.Length() == 0 {
		return DistanceToSegment(p, seg.Start(), seg.End())
	}
	rel := r2.Sub(p, seg.center)
	a := math.Atan2(rel.Y, rel.X)
	if withinSweep(a, seg.startAngle, seg.sweep) {
		return math.Abs(r2.Norm(rel) - seg.radius)
	}
	return math.Min(r2.Norm(r2.Sub(p, seg.Start())), r2.Norm(r2.Sub(p, seg.End())))
}

// HitTest reports whether p lies on the copper of a track.
func HitTest(t model.Track, p r2.Vec) bool {
	return TrackDistance(t, p) <= float64(t.Width)/2
}

// withinSweep reports whether angle a lies on the arc that starts at a0
// and turns by sweep radians.
func withinSweep(a, a0, sweep float64) bool {
	if math.Abs(sweep) >= 2*math.Pi {
		return true
	}
	d := a - a0
	if sweep < 0 {
		d = -d
	}
	d = math.Mod(d, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d <= math.Abs(sweep)+1e-12
}
