package mesh

import (
	"math"
	"sort"
	"sync"

	"github.com/golang/geo/r2"
)

// GarbageCollection drops every destroyed element and renumbers the remaining
// ones densely, keeping their relative order. All references are remapped in
// the same pass. Applying it twice in a row is a no-op.
func (m *Mesh) GarbageCollection() {
	if !m.HasTombstones() {
		return
	}
	vertexOrder := make([]VertexIndex, 0, m.numVertices)
	for v := range m.Vertices() {
		vertexOrder = append(vertexOrder, v)
	}
	edgeOrder := make([]EdgeIndex, 0, m.numEdges)
	for e := range m.Edges() {
		edgeOrder = append(edgeOrder, e)
	}
	faceOrder := make([]FaceIndex, 0, m.numFaces)
	for f := range m.AllFaces() {
		faceOrder = append(faceOrder, f)
	}
	m.permute(vertexOrder, edgeOrder, faceOrder)
}

// ArrangeMemory compacts the mesh and stores faces in the given order,
// followed by any live face order omits. Half-edges are laid out face by face
// and vertices in order of first use, so that elements touched together sit
// together in memory. Geometry and connectivity are unchanged.
func (m *Mesh) ArrangeMemory(order []FaceIndex) {
	seenFace := make([]bool, len(m.faces))
	faceOrder := make([]FaceIndex, 0, m.numFaces)
	for _, f := range order {
		if f == Border || m.IsDestroyedFace(f) || seenFace[f] {
			continue
		}
		seenFace[f] = true
		faceOrder = append(faceOrder, f)
	}
	for f := range m.AllFaces() {
		if !seenFace[f] {
			faceOrder = append(faceOrder, f)
		}
	}

	seenEdge := make([]bool, len(m.edges))
	edgeOrder := make([]EdgeIndex, 0, m.numEdges)
	seenVertex := make([]bool, len(m.vertices))
	vertexOrder := make([]VertexIndex, 0, m.numVertices)
	addEdge := func(e EdgeIndex) {
		if seenEdge[e] {
			return
		}
		seenEdge[e] = true
		edgeOrder = append(edgeOrder, e)
		if v := m.edges[e].end; !seenVertex[v] {
			seenVertex[v] = true
			vertexOrder = append(vertexOrder, v)
		}
	}
	for _, f := range faceOrder {
		for e := range m.EdgesOfFace(f) {
			addEdge(e)
		}
	}
	for e := range m.Edges() {
		addEdge(e)
	}
	for v := range m.Vertices() {
		if !seenVertex[v] {
			seenVertex[v] = true
			vertexOrder = append(vertexOrder, v)
		}
	}
	m.permute(vertexOrder, edgeOrder, faceOrder)
}

// SpatialSort arranges faces along a Hilbert curve through their centroids.
func (m *Mesh) SpatialSort() {
	bound := m.Bound()
	if bound.IsEmpty() {
		return
	}
	type keyed struct {
		face FaceIndex
		key  uint64
	}
	var faces []keyed
	for f := range m.AllFaces() {
		faces = append(faces, keyed{f, hilbertKey(bound, m.Centroid(f))})
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].key < faces[j].key })
	order := make([]FaceIndex, len(faces))
	for i, k := range faces {
		order[i] = k.face
	}
	m.ArrangeMemory(order)
}

const hilbertOrder = 16

// hilbertKey maps p, normalized to bound, onto a 2^16 x 2^16 Hilbert curve.
func hilbertKey(bound r2.Rect, p r2.Point) uint64 {
	n := uint64(1) << hilbertOrder
	scale := func(v, lo, length float64) uint64 {
		if length <= 0 {
			return 0
		}
		t := (v - lo) / length
		i := uint64(math.Floor(t * float64(n-1)))
		if i >= n {
			i = n - 1
		}
		return i
	}
	size := bound.Size()
	x := scale(p.X, bound.X.Lo, size.X)
	y := scale(p.Y, bound.Y.Lo, size.Y)

	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry uint64
		if x&s > 0 {
			rx = 1
		}
		if y&s > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}

// permute rebuilds storage so that slot i holds the element previously at
// order[i], dropping everything not listed, and remaps all references.
func (m *Mesh) permute(vertexOrder []VertexIndex, edgeOrder []EdgeIndex, faceOrder []FaceIndex) {
	vertexMap := make([]VertexIndex, len(m.vertices))
	for i := range vertexMap {
		vertexMap[i] = NoVertex
	}
	for i, v := range vertexOrder {
		vertexMap[v] = VertexIndex(i)
	}
	edgeMap := make([]EdgeIndex, len(m.edges))
	for i := range edgeMap {
		edgeMap[i] = NoEdge
	}
	for i, e := range edgeOrder {
		edgeMap[e] = EdgeIndex(i)
	}
	faceMap := make([]FaceIndex, len(m.faces))
	for i := range faceMap {
		faceMap[i] = NoFace
	}
	for i, f := range faceOrder {
		faceMap[f] = FaceIndex(i)
	}

	mapEdge := func(e EdgeIndex) EdgeIndex {
		if e == NoEdge {
			return NoEdge
		}
		return edgeMap[e]
	}
	mapVertex := func(v VertexIndex) VertexIndex {
		if v == NoVertex {
			return NoVertex
		}
		return vertexMap[v]
	}
	mapFace := func(f FaceIndex) FaceIndex {
		if f == Border || f == NoFace {
			return f
		}
		return faceMap[f]
	}

	vertices := make([]vertex, len(vertexOrder))
	for i, v := range vertexOrder {
		vertices[i] = m.vertices[v]
		vertices[i].edge = mapEdge(vertices[i].edge)
	}
	edges := make([]halfEdge, len(edgeOrder))
	for i, e := range edgeOrder {
		he := m.edges[e]
		he.end = mapVertex(he.end)
		he.next = mapEdge(he.next)
		he.prev = mapEdge(he.prev)
		he.twin = mapEdge(he.twin)
		he.face = mapFace(he.face)
		edges[i] = he
	}
	faces := make([]face, len(faceOrder))
	for i, f := range faceOrder {
		faces[i] = m.faces[f]
		faces[i].edge = mapEdge(faces[i].edge)
	}
	m.border.edge = mapEdge(m.border.edge)

	// The down link points into another mesh, so it is left untouched.
	m.vertices = vertices
	m.edges = edges
	m.faces = faces
}

// Clone returns an independent deep copy, with fresh vertex locks.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		vertices:    make([]vertex, len(m.vertices)),
		edges:       make([]halfEdge, len(m.edges)),
		faces:       make([]face, len(m.faces)),
		border:      m.border,
		numVertices: m.numVertices,
		numEdges:    m.numEdges,
		numFaces:    m.numFaces,
		numHoles:    m.numHoles,
	}
	copy(c.vertices, m.vertices)
	for i := range c.vertices {
		c.vertices[i].lock = &sync.Mutex{}
	}
	copy(c.edges, m.edges)
	copy(c.faces, m.faces)
	return c
}
