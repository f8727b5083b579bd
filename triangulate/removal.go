package triangulate

import (
	"container/heap"

	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
)

// Vertex removal. The star of the vertex is shrunk by flipping spokes away,
// always taking the ear whose circumcircle has the smallest power with
// respect to the removed vertex. For the default predicate this keeps the
// triangulation Delaunay.

// ring is the neighbourhood of a vertex being removed, as a doubly linked
// list of neighbours in counter-clockwise order. spoke maps every neighbour to
// the half-edge from the center to it.
type ring struct {
	center   mesh.VertexIndex
	next     map[mesh.VertexIndex]mesh.VertexIndex
	prev     map[mesh.VertexIndex]mesh.VertexIndex
	spoke    map[mesh.VertexIndex]mesh.EdgeIndex
	version  map[mesh.VertexIndex]int
	size     int
	isClosed bool
}

type ear struct {
	vertex  mesh.VertexIndex
	power   float64
	version int
}

// earQueue is a min-heap of ears. Entries are invalidated lazily by bumping
// the version of their vertex.
type earQueue []ear

func (q earQueue) Len() int { return len(q) }
func (q earQueue) Less(i, j int) bool { return q[i].power < q[j].power }
func (q earQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *earQueue) Push(x interface{}) { *q = append(*q, x.(ear)) }
func (q *earQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// newRing collects the neighbours of v. For a boundary vertex the list
// starts at the neighbour its incoming boundary edge comes from and is not
// closed.
func (tc *TriConnectivity) newRing(v mesh.VertexIndex) (*ring, error) {
	m := tc.mesh
	var incoming []mesh.EdgeIndex
	for e := range m.EdgesOfVertex(v) {
		incoming = append(incoming, e)
	}
	if len(incoming) == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "vertex %d has no edges", v)
	}

	start := 0
	closed := true
	for i, e := range incoming {
		if m.IsBoundaryEdge(e) {
			start = i
			closed = false
			break
		}
	}
	// EdgesOfVertex rotates clockwise, so walk it backwards.
	n := len(incoming)
	neighbours := make([]mesh.VertexIndex, n)
	r := &ring{
		center:   v,
		next:     make(map[mesh.VertexIndex]mesh.VertexIndex, n),
		prev:     make(map[mesh.VertexIndex]mesh.VertexIndex, n),
		spoke:    make(map[mesh.VertexIndex]mesh.EdgeIndex, n),
		version:  make(map[mesh.VertexIndex]int, n),
		size:     n,
		isClosed: closed,
	}
	for i := range neighbours {
		e := incoming[CircularIndex(start-i, n)]
		neighbours[i] = m.Start(e)
		r.spoke[neighbours[i]] = m.Twin(e)
	}
	for i, u := range neighbours {
		if closed || i+1 < n {
			r.next[u] = neighbours[CircularIndex(i+1, n)]
		}
		if closed || i > 0 {
			r.prev[u] = neighbours[CircularIndex(i-1, n)]
		}
	}
	return r, nil
}

// ordered lists the neighbours counter-clockwise, starting at the first one of
// an open ring.
func (r *ring) ordered() []mesh.VertexIndex {
	var first mesh.VertexIndex = mesh.NoVertex
	for u := range r.spoke {
		if _, ok := r.prev[u]; !ok || first == mesh.NoVertex {
			first = u
			if !ok {
				break
			}
		}
	}
	order := make([]mesh.VertexIndex, 0, r.size)
	for u := first; len(order) < r.size; {
		order = append(order, u)
		next, ok := r.next[u]
		if !ok {
			break
		}
		u = next
	}
	return order
}

// earAt returns the ear at neighbour u, if flipping its spoke is valid.
func (tc *TriConnectivity) earAt(r *ring, u mesh.VertexIndex) (ear, bool) {
	m := tc.mesh
	prev, okPrev := r.prev[u]
	next, okNext := r.next[u]
	if !okPrev || !okNext || prev == next {
		return ear{}, false
	}
	a, b, c := m.Point(prev), m.Point(u), m.Point(next)
	center := m.Point(r.center)
	if !IsCCW(a, b, c, tc.eps) || !IsCCW(center, a, c, tc.eps) {
		return ear{}, false
	}
	return ear{vertex: u, power: Power(a, b, c, center), version: r.version[u]}, true
}

// shrinkStar flips spokes of r until no ear remains or the star has
// minimumDegree neighbours.
func (tc *TriConnectivity) shrinkStar(r *ring, minimumDegree int) {
	queue := &earQueue{}
	push := func(u mesh.VertexIndex) {
		r.version[u]++
		if e, ok := tc.earAt(r, u); ok {
			e.version = r.version[u]
			heap.Push(queue, e)
		}
	}
	for u := range r.spoke {
		push(u)
	}

	for r.size > minimumDegree && queue.Len() > 0 {
		e := heap.Pop(queue).(ear)
		if _, live := r.spoke[e.vertex]; !live || e.version != r.version[e.vertex] {
			continue
		}
		u := e.vertex
		prev, next := r.prev[u], r.next[u]
		tc.Flip(r.spoke[u])

		delete(r.spoke, u)
		delete(r.next, u)
		delete(r.prev, u)
		r.next[prev] = next
		r.prev[next] = prev
		r.size--
		push(prev)
		push(next)
	}
}

// RemoveVertex deletes v and retriangulates the hole it leaves. Boundary
// vertices are removed together with the fan of triangles that cannot be
// flipped away, so the boundary moves inwards.
func (tc *TriConnectivity) RemoveVertex(v mesh.VertexIndex) error {
	m := tc.mesh
	if m.IsDestroyedVertex(v) {
		return errors.Wrapf(ErrInvalidMeshState, "vertex %d is destroyed", v)
	}
	if m.IsAtBoundaryVertex(v) {
		return tc.RemoveBoundaryVertex(v)
	}
	return tc.RemoveNonBoundaryVertex(v)
}

func (tc *TriConnectivity) RemoveNonBoundaryVertex(v mesh.VertexIndex) error {
	m := tc.mesh
	r, err := tc.newRing(v)
	if err != nil {
		return err
	}
	if !r.isClosed {
		return errors.Wrapf(ErrInvalidArgument, "vertex %d lies on a boundary", v)
	}
	for u := range r.spoke {
		if !m.IsTriangle(m.Face(r.spoke[u])) {
			return errors.Wrapf(ErrInvalidMeshState, "star of vertex %d contains a face which is not a triangle", v)
		}
	}
	tc.shrinkStar(r, 3)
	if r.size != 3 {
		fatalf("could not shrink the star of vertex %d below degree %d", v, r.size)
	}

	// Merge the last three triangles into one. The face of spoke v -> u_i
	// holds the outer edge u_i -> u_(i+1).
	order := r.ordered()
	var spokes, outer [3]mesh.EdgeIndex
	var faces [3]mesh.FaceIndex
	for i, u := range order {
		spokes[i] = r.spoke[u]
		outer[i] = m.Next(spokes[i])
		faces[i] = m.Face(spokes[i])
	}
	f := faces[0]
	for i, o := range outer {
		m.SetFace(o, f)
		m.SetNext(o, outer[CircularIndex(i+1, 3)])
		m.SetVertexEdge(m.Vertex(o), o)
	}
	m.SetEdge(f, outer[0])
	for _, s := range spokes {
		m.DestroyEdge(s)
	}
	m.DestroyFace(faces[1])
	m.DestroyFace(faces[2])
	m.DestroyVertex(v)
	return nil
}

func (tc *TriConnectivity) RemoveBoundaryVertex(v mesh.VertexIndex) error {
	m := tc.mesh
	r, err := tc.newRing(v)
	if err != nil {
		return err
	}
	if r.isClosed {
		return errors.Wrapf(ErrInvalidArgument, "vertex %d is not on a boundary", v)
	}
	tc.shrinkStar(r, 2)

	// x: u_0 -> v and y: v -> u_k are the boundary edges around v. Between
	// them lies the fan of triangles (v, u_i, u_(i+1)).
	order := r.ordered()
	k := len(order) - 1
	x := m.Twin(r.spoke[order[0]])
	y := r.spoke[order[k]]
	boundary := m.Face(x)

	spokes := make([]mesh.EdgeIndex, k)
	outer := make([]mesh.EdgeIndex, k)
	faces := make([]mesh.FaceIndex, k)
	for i := 0; i < k; i++ {
		spokes[i] = r.spoke[order[i]]
		outer[i] = m.Next(spokes[i])
		faces[i] = m.Face(spokes[i])
	}

	before, after := m.Prev(x), m.Next(y)
	if k == 1 && before == after {
		return errors.Wrapf(ErrInvalidArgument, "removing vertex %d would leave a degenerate boundary", v)
	}
	m.SetNext(before, outer[0])
	for i, o := range outer {
		m.SetFace(o, boundary)
		if i+1 < k {
			m.SetNext(o, outer[i+1])
		}
		m.SetVertexEdge(m.Vertex(o), o)
	}
	m.SetNext(outer[k-1], after)
	if u0 := order[0]; m.VertexEdge(u0) == spokes[0] {
		m.SetVertexEdge(u0, before)
	}
	if anchor := m.Edge(boundary); anchor == x || anchor == y {
		m.SetEdge(boundary, outer[0])
	}

	m.DestroyEdge(x)
	m.DestroyEdge(y)
	for _, s := range spokes {
		m.DestroyEdge(s)
	}
	for _, f := range faces {
		m.DestroyFace(f)
	}
	m.DestroyVertex(v)
	return nil
}
