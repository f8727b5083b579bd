package triangulate

import (
	"math/rand"
	"runtime"
	"slices"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// IllegalPredicate is a constraint on top of the in-circle test. An edge is
// only flipped if the predicate also considers it illegal. The default
// accepts every edge, which gives a Delaunay triangulation.
type IllegalPredicate func(m *mesh.Mesh, e mesh.EdgeIndex) bool

func alwaysIllegal(*mesh.Mesh, mesh.EdgeIndex) bool { return true }

// TriConnectivity extends PolyConnectivity with operations which require
// interior faces to be triangles.
type TriConnectivity struct {
	*PolyConnectivity

	eps          float64
	tolerance    float64
	legalization Legalization
	illegal      IllegalPredicate
	events       TriEventListener
	random       *rand.Rand

	eventMu     sync.Mutex
	flipStripes [64]sync.Mutex
}

func NewTriConnectivity(m *mesh.Mesh, config Config, logger *zap.Logger) *TriConnectivity {
	return &TriConnectivity{
		PolyConnectivity: NewPolyConnectivity(m, logger),
		eps:              config.Epsilon,
		tolerance:        config.EdgeCoincidenceTolerance,
		legalization:     config.Legalization,
		illegal:          alwaysIllegal,
		events:           listeners(nil),
		random:           rand.New(rand.NewSource(config.Seed)),
	}
}

func (tc *TriConnectivity) SetIllegalPredicate(predicate IllegalPredicate) {
	if predicate == nil {
		predicate = alwaysIllegal
	}
	tc.illegal = predicate
}

// SetListener replaces the receiver of topology events.
func (tc *TriConnectivity) SetListener(l TriEventListener) {
	if l == nil {
		l = listeners(nil)
	}
	tc.events = l
}

// Legality

// IsIllegal reports whether e should be flipped: the far vertex of the
// triangle across e lies inside the circumcircle of e's own triangle, and the
// custom predicate agrees. Boundary edges are always legal.
func (tc *TriConnectivity) IsIllegal(e mesh.EdgeIndex) bool {
	m := tc.mesh
	if m.IsAtBoundary(e) {
		return false
	}
	t := m.Twin(e)
	if !m.IsTriangle(m.Face(e)) || !m.IsTriangle(m.Face(t)) {
		return false
	}
	a := m.EdgePoint(t)
	b := m.EdgePoint(e)
	c := m.EdgePoint(m.Next(e))
	d := m.EdgePoint(m.Next(t))
	return IsInsideCircle(a, b, c, d, tc.eps) && tc.illegal(m, e)
}

// IsFlippable reports whether the two triangles around e form a strictly
// convex quadrilateral, so that flipping keeps both faces counter-clockwise.
func (tc *TriConnectivity) IsFlippable(e mesh.EdgeIndex) bool {
	m := tc.mesh
	if m.IsAtBoundary(e) {
		return false
	}
	t := m.Twin(e)
	if !m.IsTriangle(m.Face(e)) || !m.IsTriangle(m.Face(t)) {
		return false
	}
	a := m.EdgePoint(t)
	b := m.EdgePoint(e)
	c := m.EdgePoint(m.Next(e))
	d := m.EdgePoint(m.Next(t))
	return IsCCW(a, d, c, tc.eps) && IsCCW(d, b, c, tc.eps)
}

// Flip

// Flip replaces e, the diagonal of the quadrilateral formed by its two
// triangles, with the other diagonal. e and its twin are reused for the new
// diagonal and both faces keep their indices. Legality is not checked.
func (tc *TriConnectivity) Flip(e mesh.EdgeIndex) {
	f, g := tc.flip(e)
	tc.events.PostFlipEdgeEvent(f, g)
}

func (tc *TriConnectivity) flip(e mesh.EdgeIndex) (mesh.FaceIndex, mesh.FaceIndex) {
	m := tc.mesh
	t := m.Twin(e)
	f, g := m.Face(e), m.Face(t)
	if m.IsBoundary(f) || m.IsBoundary(g) {
		fatalf("cannot flip boundary edge %d", e)
	}
	if !m.IsTriangle(f) || !m.IsTriangle(g) {
		fatalf("cannot flip edge %d between non-triangular faces %d and %d", e, f, g)
	}

	// e: a->b in f = (e, en, ep), t: b->a in g = (t, tn, tp)
	en, ep := m.Next(e), m.Prev(e)
	tn, tp := m.Next(t), m.Prev(t)
	a, b := m.Vertex(t), m.Vertex(e)
	c, d := m.Vertex(en), m.Vertex(tn)

	// Afterwards e: d->c in f = (tn, e, ep), t: c->d in g = (tp, en, t)
	m.SetVertex(e, c)
	m.SetVertex(t, d)
	m.SetNext(tn, e)
	m.SetNext(e, ep)
	m.SetNext(ep, tn)
	m.SetNext(tp, en)
	m.SetNext(en, t)
	m.SetNext(t, tp)
	m.SetFace(tn, f)
	m.SetFace(en, g)

	if m.VertexEdge(a) == t {
		m.SetVertexEdge(a, ep)
	}
	if m.VertexEdge(b) == e {
		m.SetVertexEdge(b, tp)
	}
	m.SetEdge(f, e)
	m.SetEdge(g, t)
	return f, g
}

// FlipSync is Flip for goroutines flipping edges concurrently. Flips of the
// same edge are serialized on a lock stripe. The ends of e are locked next,
// which freezes both triangles around e, so the two remaining corners can be
// read and locked. If any of them is busy, everything held is released and
// the whole set is retried.
func (tc *TriConnectivity) FlipSync(e mesh.EdgeIndex) {
	m := tc.mesh
	stripe := &tc.flipStripes[min(e, m.Twin(e))%mesh.EdgeIndex(len(tc.flipStripes))]
	stripe.Lock()
	defer stripe.Unlock()

	locked := tc.lockQuad(e)
	defer tc.unlockAll(locked)
	f, g := tc.flip(e)

	tc.eventMu.Lock()
	defer tc.eventMu.Unlock()
	tc.events.PostFlipEdgeEvent(f, g)
}

// lockQuad spins until it holds the locks of every corner of the two
// triangles around e.
func (tc *TriConnectivity) lockQuad(e mesh.EdgeIndex) []mesh.VertexIndex {
	m := tc.mesh
	t := m.Twin(e)
	for {
		ends := uniqueVertices(m.Vertex(e), m.Vertex(t))
		if tc.tryLockAll(ends) {
			var corners []mesh.VertexIndex
			for _, v := range uniqueVertices(m.Vertex(m.Next(e)), m.Vertex(m.Next(t))) {
				if !slices.Contains(ends, v) {
					corners = append(corners, v)
				}
			}
			if tc.tryLockAll(corners) {
				return append(ends, corners...)
			}
			tc.unlockAll(ends)
		}
		runtime.Gosched()
	}
}

// uniqueVertices sorts vertices and drops repeats, so a lock is never taken
// twice.
func uniqueVertices(vertices ...mesh.VertexIndex) []mesh.VertexIndex {
	slices.Sort(vertices)
	return slices.Compact(vertices)
}

func (tc *TriConnectivity) tryLockAll(vertices []mesh.VertexIndex) bool {
	m := tc.mesh
	for i, v := range vertices {
		if !m.TryLockVertex(v) {
			tc.unlockAll(vertices[:i])
			return false
		}
	}
	return true
}

func (tc *TriConnectivity) unlockAll(vertices []mesh.VertexIndex) {
	for _, v := range vertices {
		tc.mesh.UnlockVertex(v)
	}
}

// Legalization. The point opposite e is always the one that was just
// inserted, so after a flip only the two edges of the quadrilateral facing it
// need checking.

// Legalize flips e and then its neighbourhood until every edge reachable from
// the inserted point is legal, using the configured strategy.
func (tc *TriConnectivity) Legalize(e mesh.EdgeIndex) {
	if tc.legalization == Iterative {
		tc.LegalizeIterative(e)
		return
	}
	tc.LegalizeRecursive(e)
}

func (tc *TriConnectivity) LegalizeRecursive(e mesh.EdgeIndex) {
	if !tc.IsIllegal(e) || !tc.IsFlippable(e) {
		return
	}
	m := tc.mesh
	t := m.Twin(e)
	tn, tp := m.Next(t), m.Prev(t)
	tc.Flip(e)
	tc.LegalizeRecursive(tn)
	tc.LegalizeRecursive(tp)
}

func (tc *TriConnectivity) LegalizeIterative(e mesh.EdgeIndex) {
	m := tc.mesh
	stack := []mesh.EdgeIndex{e}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !tc.IsIllegal(e) || !tc.IsFlippable(e) {
			continue
		}
		t := m.Twin(e)
		tn, tp := m.Next(t), m.Prev(t)
		tc.Flip(e)
		stack = append(stack, tp, tn)
	}
}

// LegalizeAll runs Lawson's flip algorithm over the given edges, or every
// edge of the mesh if none are given. Unlike Legalize it makes no assumption
// about which side of an edge changed.
func (tc *TriConnectivity) LegalizeAll(edges ...mesh.EdgeIndex) int {
	m := tc.mesh
	stack := edges
	if len(stack) == 0 {
		for e := range m.Edges() {
			if e < m.Twin(e) && !m.IsAtBoundary(e) {
				stack = append(stack, e)
			}
		}
	}
	flips := 0
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.IsDestroyedEdge(e) || !tc.IsIllegal(e) || !tc.IsFlippable(e) {
			continue
		}
		t := m.Twin(e)
		en, ep := m.Next(e), m.Prev(e)
		tn, tp := m.Next(t), m.Prev(t)
		tc.Flip(e)
		flips++
		stack = append(stack, tn, ep, tp, en)
	}
	return flips
}

// Splitting

// SplitTriangle connects p to the three corners of f. f is reused for the
// triangle on its anchor edge.
func (tc *TriConnectivity) SplitTriangle(f mesh.FaceIndex, p r2.Point, legalize bool) mesh.VertexIndex {
	m := tc.mesh
	if !m.IsTriangle(f) {
		fatalf("face %d is not a triangle", f)
	}
	e0 := m.Edge(f)
	e1 := m.Next(e0)
	e2 := m.Next(e1)
	u := tc.Split(f, p)
	tc.events.PostSplitTriangleEvent(f, [3]mesh.FaceIndex{f, m.Face(e1), m.Face(e2)}, u)
	if legalize {
		tc.Legalize(e0)
		tc.Legalize(e1)
		tc.Legalize(e2)
	}
	return u
}

// SplitEdge inserts p on the full edge e, splitting each adjacent interior
// triangle in two. e keeps its start vertex and now ends at p.
func (tc *TriConnectivity) SplitEdge(p r2.Point, e mesh.EdgeIndex, legalize bool) mesh.VertexIndex {
	m := tc.mesh
	t := m.Twin(e)
	fl, fr := m.Face(e), m.Face(t)
	leftInterior, rightInterior := !m.IsBoundary(fl), !m.IsBoundary(fr)
	if !leftInterior && !rightInterior {
		fatalf("edge %d has boundaries on both sides", e)
	}
	if (leftInterior && !m.IsTriangle(fl)) || (rightInterior && !m.IsTriangle(fr)) {
		fatalf("edge %d borders a face which is not a triangle", e)
	}

	// e: a->b, fl = (e, e1: b->c, e2: c->a), t: b->a, fr = (t, t1: a->d, t2: d->b)
	b := m.Vertex(e)
	e1, e2 := m.Next(e), m.Prev(e)
	t1, t2 := m.Next(t), m.Prev(t)

	u := m.CreateVertex(p)
	// e becomes a->u and t u->a. h: u->b and ht: b->u are the new halves.
	m.SetVertex(e, u)
	h := m.CreateEdge(b, fl)
	ht := m.CreateEdge(u, fr)
	m.SetTwin(h, ht)
	m.SetVertexEdge(u, e)
	if m.VertexEdge(b) == e {
		m.SetVertexEdge(b, h)
	}

	var legalizeEdges []mesh.EdgeIndex
	if leftInterior {
		c := m.Vertex(e1)
		g := m.CreateFace(false)
		d1 := m.CreateEdge(c, fl)
		d1t := m.CreateEdge(u, g)
		m.SetTwin(d1, d1t)

		m.SetNext(e, d1)
		m.SetNext(d1, e2)
		m.SetNext(e2, e)

		m.SetFace(h, g)
		m.SetFace(e1, g)
		m.SetNext(h, e1)
		m.SetNext(e1, d1t)
		m.SetNext(d1t, h)

		m.SetEdge(fl, e)
		m.SetEdge(g, h)
		tc.events.PostSplitHalfEdgeEvent(fl, fl, g, u)
		legalizeEdges = append(legalizeEdges, e1, e2)
	} else {
		m.SetNext(h, e1)
		m.SetNext(e, h)
	}

	if rightInterior {
		d := m.Vertex(t1)
		k := m.CreateFace(false)
		d2 := m.CreateEdge(u, fr)
		d2t := m.CreateEdge(d, k)
		m.SetTwin(d2, d2t)

		m.SetNext(t, t1)
		m.SetNext(t1, d2)
		m.SetNext(d2, t)

		m.SetFace(ht, k)
		m.SetFace(t2, k)
		m.SetNext(ht, d2t)
		m.SetNext(d2t, t2)
		m.SetNext(t2, ht)

		m.SetEdge(fr, t)
		m.SetEdge(k, ht)
		tc.events.PostSplitHalfEdgeEvent(fr, fr, k, u)
		legalizeEdges = append(legalizeEdges, t1, t2)
	} else {
		m.SetNext(t2, ht)
		m.SetNext(ht, t)
	}

	if legalize {
		for _, edge := range legalizeEdges {
			tc.Legalize(edge)
		}
	}
	return u
}

// Insert adds p to the triangle f it was located in. A point within the
// coincidence tolerance of a corner of f is not inserted; the anchor edge of
// that corner is returned with inserted false. A point on an edge splits the
// edge.
func (tc *TriConnectivity) Insert(p r2.Point, f mesh.FaceIndex) (e mesh.EdgeIndex, inserted bool, err error) {
	m := tc.mesh
	if m.IsDestroyedFace(f) {
		return mesh.NoEdge, false, errors.Wrapf(ErrInvalidMeshState, "face %d is destroyed", f)
	}
	if m.IsBoundary(f) {
		return mesh.NoEdge, false, errors.Wrapf(ErrInvalidArgument, "point (%g, %g) lies in boundary face %d", p.X, p.Y, f)
	}
	if !m.IsTriangle(f) {
		return mesh.NoEdge, false, errors.Wrapf(ErrInvalidMeshState, "face %d is not a triangle", f)
	}
	for edge := range m.EdgesOfFace(f) {
		if m.EdgePoint(edge).Sub(p).Norm() <= tc.tolerance {
			return m.VertexEdge(m.Vertex(edge)), false, nil
		}
	}
	for edge := range m.EdgesOfFace(f) {
		if DistanceToSegment(p, m.EdgePoint(m.Twin(edge)), m.EdgePoint(edge)) <= tc.tolerance {
			u := tc.SplitEdge(p, edge, true)
			return m.VertexEdge(u), true, nil
		}
	}
	u := tc.SplitTriangle(f, p, true)
	return m.VertexEdge(u), true, nil
}

// TriangulateFace cuts an interior polygon into triangles by ear clipping
// and returns the resulting faces, f first.
func (tc *TriConnectivity) TriangulateFace(f mesh.FaceIndex) ([]mesh.FaceIndex, error) {
	m := tc.mesh
	if m.IsBoundary(f) {
		return nil, errors.Wrapf(ErrInvalidArgument, "face %d is a boundary", f)
	}
	faces := []mesh.FaceIndex{f}
	current := f
	for m.EdgeCount(current) > 3 {
		ear := tc.findEar(current)
		if ear == mesh.NoEdge {
			return faces, &IllegalMeshError{Face: current, Reason: "polygon has no ear"}
		}
		rest, err := tc.SplitFaceByDiagonal(m.Next(ear), m.Prev(ear))
		if err != nil {
			return faces, err
		}
		faces = append(faces, rest)
		current = rest
	}
	return faces, nil
}

// findEar returns an edge e such that the triangle formed by prev(e), e and
// next(e) is convex and contains no other corner of f.
func (tc *TriConnectivity) findEar(f mesh.FaceIndex) mesh.EdgeIndex {
	m := tc.mesh
	edges := edgesOf(m, f)
	for _, e := range edges {
		a := m.EdgePoint(m.Prev(e))
		b := m.EdgePoint(e)
		c := m.EdgePoint(m.Next(e))
		if !IsCCW(a, b, c, tc.eps) {
			continue
		}
		ear := true
		for _, other := range edges {
			v := m.Vertex(other)
			if v == m.Vertex(m.Prev(e)) || v == m.Vertex(e) || v == m.Vertex(m.Next(e)) {
				continue
			}
			if IsInsideTriangle(m.EdgePoint(other), a, b, c, tc.eps) {
				ear = false
				break
			}
		}
		if ear {
			return e
		}
	}
	return mesh.NoEdge
}
