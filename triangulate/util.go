package triangulate

import (
	"math"

	"github.com/golang/geo/r2"
)

// Default tolerance for the floating point predicates. None of the predicates
// are exact; everything within Epsilon of a decision boundary is treated as
// lying on it.
const Epsilon = 1e-9

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives positive values
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}

// Orient is twice the signed area of the triangle a, b, c. It is positive when
// the triangle is counter-clockwise.
func Orient(a, b, c r2.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// IsCCW reports whether a, b, c turn left by more than eps.
func IsCCW(a, b, c r2.Point, eps float64) bool {
	return Orient(a, b, c) > eps
}

// IsLeftOf reports whether p lies strictly left of the directed line a->b.
func IsLeftOf(p, a, b r2.Point, eps float64) bool {
	return Orient(a, b, p) > eps
}

// IsRightOf reports whether p lies strictly right of the directed line a->b.
func IsRightOf(p, a, b r2.Point, eps float64) bool {
	return Orient(a, b, p) < -eps
}

// IsCollinear reports whether p lies on the line through a and b.
func IsCollinear(p, a, b r2.Point, eps float64) bool {
	return math.Abs(Orient(a, b, p)) <= eps
}

// Circumcenter of a, b, c. ok is false for degenerate triangles.
func Circumcenter(a, b, c r2.Point) (center r2.Point, ok bool) {
	d := 2 * Orient(a, b, c)
	if d == 0 {
		return r2.Point{}, false
	}
	ba := b.Sub(a)
	ca := c.Sub(a)
	bl := ba.Dot(ba)
	cl := ca.Dot(ca)
	return r2.Point{
		X: a.X + (ca.Y*bl-ba.Y*cl)/d,
		Y: a.Y + (ba.X*cl-ca.X*bl)/d,
	}, true
}

// IsInsideCircle reports whether p lies strictly inside the circumcircle of
// a, b, c, by at least eps.
func IsInsideCircle(a, b, c, p r2.Point, eps float64) bool {
	center, ok := Circumcenter(a, b, c)
	if !ok {
		return false
	}
	r := center.Sub(a).Norm()
	return center.Sub(p).Norm() < r-eps
}

// Power of p with respect to the circumcircle of a, b, c. Negative inside the
// circle. Degenerate circles have infinite power.
func Power(a, b, c, p r2.Point) float64 {
	center, ok := Circumcenter(a, b, c)
	if !ok {
		return math.Inf(1)
	}
	r := center.Sub(a)
	d := center.Sub(p)
	return d.Dot(d) - r.Dot(r)
}

// IsInsideTriangle reports whether p lies in the counter-clockwise triangle
// a, b, c, including its edges within eps.
func IsInsideTriangle(p, a, b, c r2.Point, eps float64) bool {
	return Orient(a, b, p) >= -eps && Orient(b, c, p) >= -eps && Orient(c, a, p) >= -eps
}

// DistanceToSegment is the distance from p to the segment a-b.
func DistanceToSegment(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	l := ab.Dot(ab)
	if l == 0 {
		return p.Sub(a).Norm()
	}
	t := p.Sub(a).Dot(ab) / l
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.Mul(t))).Norm()
}

// SegmentParameter returns where the segment p-q crosses the segment a-b, as
// the parameter t along p-q, or ok false if they don't intersect.
func SegmentParameter(p, q, a, b r2.Point, eps float64) (t float64, ok bool) {
	r := q.Sub(p)
	s := b.Sub(a)
	denom := r.Cross(s)
	if math.Abs(denom) <= eps {
		return 0, false
	}
	ap := a.Sub(p)
	t = ap.Cross(s) / denom
	u := ap.Cross(r) / denom
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return 0, false
	}
	return t, true
}

// SegmentsIntersect reports whether the segments p-q and a-b touch or cross.
func SegmentsIntersect(p, q, a, b r2.Point, eps float64) bool {
	_, ok := SegmentParameter(p, q, a, b, eps)
	return ok
}

// Winding rule point-in-polygon, for faces which are not triangles.
func ContainsPointByEvenOdd(points []r2.Point, p r2.Point) bool {
	return CrossingCount(points, p)%2 == 1
}

// Crossing count helper for even odd rule
func CrossingCount(points []r2.Point, p r2.Point) int {
	crossingCount := 0
	for i, vertex := range points {
		nextVertex := points[CircularIndex(i+1, len(points))]
		if (vertex.Y < p.Y) == (nextVertex.Y < p.Y) {
			continue
		}
		// X coordinate where the edge crosses the horizontal line through p
		x := vertex.X + (p.Y-vertex.Y)*(nextVertex.X-vertex.X)/(nextVertex.Y-vertex.Y)
		if x > p.X {
			crossingCount++
		}
	}
	return crossingCount
}

// ContainsPoint reports whether p lies in the counter-clockwise polygon,
// including its edges within eps.
func ContainsPoint(points []r2.Point, p r2.Point, eps float64) bool {
	if len(points) == 3 {
		return IsInsideTriangle(p, points[0], points[1], points[2], eps)
	}
	for i, vertex := range points {
		if DistanceToSegment(p, vertex, points[CircularIndex(i+1, len(points))]) <= eps {
			return true
		}
	}
	return ContainsPointByEvenOdd(points, p)
}
