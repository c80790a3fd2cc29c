package geometry

import (
	"github.com/piwi3910/teardrop/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// cubic evaluates the cubic Bezier p0..p3 at t.
func cubic(p0, p1, p2, p3 r2.Vec, t float64) r2.Vec {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return r2.Vec{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// sampleCubic returns segs+1 points along the curve from 'from' to 'to'.
// The ends are pinned to the given board points so the curve meets the
// straight control points exactly.
func sampleCubic(from, to model.Point, h1, h2 r2.Vec, segs int) []model.Point {
	p0, p3 := ToVec(from), ToVec(to)
	p1, p2 := r2.Add(p0, h1), r2.Add(p3, h2)

	pts := make([]model.Point, 0, segs+1)
	pts = append(pts, from)
	for i := 1; i < segs; i++ {
		pts = append(pts, ToPoint(cubic(p0, p1, p2, p3, float64(i)/float64(segs))))
	}
	return append(pts, to)
}
