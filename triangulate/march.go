package triangulate

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Point location by walking from face to face.

// Contains reports whether q lies in face f, edges included.
func (tc *TriConnectivity) Contains(f mesh.FaceIndex, q r2.Point) bool {
	m := tc.mesh
	if m.IsBorder(f) {
		return false
	}
	return ContainsPoint(m.Points(f), q, tc.eps)
}

// InteriorFaceAround returns some interior face incident to v, or NoFace.
func (tc *TriConnectivity) InteriorFaceAround(v mesh.VertexIndex) mesh.FaceIndex {
	m := tc.mesh
	for e := range m.EdgesOfVertex(v) {
		if f := m.Face(e); !m.IsBoundary(f) {
			return f
		}
	}
	return mesh.NoFace
}

// AnyFace returns the first live interior face, or NoFace.
func (tc *TriConnectivity) AnyFace() mesh.FaceIndex {
	for f := range tc.mesh.Faces() {
		return f
	}
	return mesh.NoFace
}

// StraightWalk2D walks from the centroid of start along the segment towards q
// and returns the face containing q. A hole is returned if q lies inside it.
func (tc *TriConnectivity) StraightWalk2D(start mesh.FaceIndex, q r2.Point) (mesh.FaceIndex, error) {
	return tc.straightWalk(start, q, nil)
}

// StraightGatherWalk2D is StraightWalk2D which also returns every face the
// walk passed through, in order, ending with the containing face.
func (tc *TriConnectivity) StraightGatherWalk2D(start mesh.FaceIndex, q r2.Point) ([]mesh.FaceIndex, error) {
	var visited []mesh.FaceIndex
	f, err := tc.straightWalk(start, q, func(f mesh.FaceIndex) {
		visited = append(visited, f)
	})
	if err != nil {
		return visited, err
	}
	if len(visited) == 0 || visited[len(visited)-1] != f {
		visited = append(visited, f)
	}
	return visited, nil
}

func (tc *TriConnectivity) walkLimit() int {
	return 4*tc.mesh.NumberOfFaces() + 16
}

func (tc *TriConnectivity) straightWalk(start mesh.FaceIndex, q r2.Point, visit func(mesh.FaceIndex)) (mesh.FaceIndex, error) {
	m := tc.mesh
	if m.IsDestroyedFace(start) || m.IsBoundary(start) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "walk must start in a live interior face, got %d", start)
	}
	p := m.Centroid(start)
	f := start
	var from mesh.EdgeIndex = mesh.NoEdge

	for step := 0; step < tc.walkLimit(); step++ {
		if visit != nil {
			visit(f)
		}
		if tc.Contains(f, q) {
			return f, nil
		}

		exit := tc.exitEdge(f, p, q, from)
		if exit == mesh.NoEdge {
			// The segment passes through a corner of f.
			v := tc.collinearVertex(f, p, q)
			if v == mesh.NoVertex {
				break
			}
			g := tc.sectorFace(v, q)
			if g == mesh.NoFace {
				break
			}
			p = m.Point(v)
			from = mesh.NoEdge
			if !m.IsBoundary(g) {
				f = g
				continue
			}
			next, hole, err := tc.reenter(g, p, q, 0)
			if err != nil || next == mesh.NoEdge {
				return hole, err
			}
			f, from = m.Face(next), next
			continue
		}

		g := m.TwinFace(exit)
		if !m.IsBoundary(g) {
			f, from = g, m.Twin(exit)
			continue
		}
		tExit, _ := SegmentParameter(p, q, m.EdgePoint(m.Twin(exit)), m.EdgePoint(exit), tc.eps)
		next, hole, err := tc.reenter(g, p, q, tExit)
		if err != nil || next == mesh.NoEdge {
			return hole, err
		}
		f, from = m.Face(next), next
	}

	tc.logger.Debug("straight walk gave up, falling back to a randomized walk",
		zap.Float64("x", q.X), zap.Float64("y", q.Y))
	if f, err := tc.MarchRandom2D(start, q); err == nil {
		return f, nil
	}
	return tc.LocateBruteForce(q)
}

// exitEdge finds the edge of f the segment p-q leaves through: q lies
// strictly right of it and the segment crosses it. from is the edge the walk
// entered through and is skipped.
func (tc *TriConnectivity) exitEdge(f mesh.FaceIndex, p, q r2.Point, from mesh.EdgeIndex) mesh.EdgeIndex {
	m := tc.mesh
	best := mesh.NoEdge
	bestT := math.Inf(-1)
	for e := range m.EdgesOfFace(f) {
		if e == from {
			continue
		}
		a, b := m.EdgePoint(m.Twin(e)), m.EdgePoint(e)
		if !IsRightOf(q, a, b, tc.eps) {
			continue
		}
		// Segments touching a corner are handled by the ring search.
		if IsCollinear(a, p, q, tc.eps) || IsCollinear(b, p, q, tc.eps) {
			continue
		}
		t, ok := SegmentParameter(p, q, a, b, tc.eps)
		if !ok {
			continue
		}
		if t > bestT {
			best, bestT = e, t
		}
	}
	return best
}

// collinearVertex returns the corner of f lying on the segment p-q closest
// to q.
func (tc *TriConnectivity) collinearVertex(f mesh.FaceIndex, p, q r2.Point) mesh.VertexIndex {
	m := tc.mesh
	best := mesh.NoVertex
	bestDistance := math.Inf(1)
	for v := range m.VerticesOfFace(f) {
		point := m.Point(v)
		if DistanceToSegment(point, p, q) > tc.eps || point == p {
			continue
		}
		if d := point.Sub(q).Norm(); d < bestDistance {
			best, bestDistance = v, d
		}
	}
	return best
}

// sectorFace searches the ring around v for the face whose corner at v
// contains the direction towards q.
func (tc *TriConnectivity) sectorFace(v mesh.VertexIndex, q r2.Point) mesh.FaceIndex {
	m := tc.mesh
	center := m.Point(v)
	fallback := mesh.NoFace
	for e := range m.EdgesOfVertex(v) {
		f := m.Face(e)
		u := m.EdgePoint(m.Twin(e))
		w := m.EdgePoint(m.Next(e))
		if m.IsBoundary(f) {
			if fallback == mesh.NoFace {
				fallback = f
			}
			continue
		}
		if Orient(center, w, q) >= -tc.eps && Orient(u, center, q) >= -tc.eps {
			return f
		}
	}
	return fallback
}

// reenter handles a walk leaving the mesh into boundary face g at parameter
// tExit. It casts the rest of the segment against the cycle of g and returns
// the twin of the boundary edge where the segment enters the mesh again. If
// it never does, q lies in g: a hole is returned as hole, the border is a
// location failure.
func (tc *TriConnectivity) reenter(g mesh.FaceIndex, p, q r2.Point, tExit float64) (next mesh.EdgeIndex, hole mesh.FaceIndex, err error) {
	m := tc.mesh
	best := mesh.NoEdge
	bestT := math.Inf(1)
	for e := range m.EdgesOfFace(g) {
		a, b := m.EdgePoint(m.Twin(e)), m.EdgePoint(e)
		// Entering the mesh means crossing from the left of a boundary edge to
		// its right.
		if !IsRightOf(q, a, b, tc.eps) {
			continue
		}
		t, ok := SegmentParameter(p, q, a, b, tc.eps)
		if !ok || t <= tExit+tc.eps {
			continue
		}
		if t < bestT {
			best, bestT = e, t
		}
	}
	if best != mesh.NoEdge {
		return m.Twin(best), mesh.NoFace, nil
	}
	if m.IsHole(g) {
		return mesh.NoEdge, g, nil
	}
	return mesh.NoEdge, mesh.NoFace, errors.Wrapf(ErrLocationFailure, "point (%g, %g) lies outside the mesh", q.X, q.Y)
}

// MarchRandom2D is a visibility walk which picks the exit edge starting at a
// random offset. It is only valid for triangulations without holes.
func (tc *TriConnectivity) MarchRandom2D(start mesh.FaceIndex, q r2.Point) (mesh.FaceIndex, error) {
	m := tc.mesh
	if m.IsDestroyedFace(start) || m.IsBoundary(start) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "walk must start in a live interior face, got %d", start)
	}
	f := start
	for step := 0; step < tc.walkLimit(); step++ {
		edges := edgesOf(m, f)
		offset := tc.random.Intn(len(edges))
		moved := false
		for i := range edges {
			e := edges[CircularIndex(i+offset, len(edges))]
			if !IsRightOf(q, m.EdgePoint(m.Twin(e)), m.EdgePoint(e), tc.eps) {
				continue
			}
			g := m.TwinFace(e)
			if m.IsBoundary(g) {
				return mesh.NoFace, errors.Wrapf(ErrLocationFailure, "point (%g, %g) lies outside the mesh", q.X, q.Y)
			}
			f = g
			moved = true
			break
		}
		if !moved {
			return f, nil
		}
	}
	return mesh.NoFace, errors.Wrapf(ErrLocationFailure, "randomized walk to (%g, %g) did not terminate", q.X, q.Y)
}

// LocateBruteForce tests every face.
func (tc *TriConnectivity) LocateBruteForce(q r2.Point) (mesh.FaceIndex, error) {
	m := tc.mesh
	for f := range m.Faces() {
		if tc.Contains(f, q) {
			return f, nil
		}
	}
	for f := range m.Holes() {
		if tc.Contains(f, q) {
			return f, nil
		}
	}
	return mesh.NoFace, errors.Wrapf(ErrLocationFailure, "no face contains (%g, %g)", q.X, q.Y)
}
