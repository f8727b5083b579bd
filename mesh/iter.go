package mesh

import (
	"iter"
	"sync"
)

// Streams yield live elements lazily, in storage order. Mutating the mesh
// while ranging over a stream is undefined.

// Faces yields every live interior (non-boundary) face.
func (m *Mesh) Faces() iter.Seq[FaceIndex] {
	return func(yield func(FaceIndex) bool) {
		for i := range m.faces {
			f := &m.faces[i]
			if f.destroyed || f.boundary {
				continue
			}
			if !yield(FaceIndex(i)) {
				return
			}
		}
	}
}

// AllFaces yields every live face including holes, but not the border.
func (m *Mesh) AllFaces() iter.Seq[FaceIndex] {
	return func(yield func(FaceIndex) bool) {
		for i := range m.faces {
			if m.faces[i].destroyed {
				continue
			}
			if !yield(FaceIndex(i)) {
				return
			}
		}
	}
}

// Holes yields every live hole.
func (m *Mesh) Holes() iter.Seq[FaceIndex] {
	return func(yield func(FaceIndex) bool) {
		for i := range m.faces {
			f := &m.faces[i]
			if f.destroyed || !f.boundary {
				continue
			}
			if !yield(FaceIndex(i)) {
				return
			}
		}
	}
}

// Edges yields every live half-edge.
func (m *Mesh) Edges() iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		for i := range m.edges {
			if m.edges[i].destroyed {
				continue
			}
			if !yield(EdgeIndex(i)) {
				return
			}
		}
	}
}

// Vertices yields every live vertex.
func (m *Mesh) Vertices() iter.Seq[VertexIndex] {
	return func(yield func(VertexIndex) bool) {
		for i := range m.vertices {
			if m.vertices[i].destroyed {
				continue
			}
			if !yield(VertexIndex(i)) {
				return
			}
		}
	}
}

// EdgesOfFace walks the cycle of f starting at its anchor edge.
func (m *Mesh) EdgesOfFace(f FaceIndex) iter.Seq[EdgeIndex] {
	return m.EdgeCycle(m.face(f).edge)
}

// EdgeCycle walks next links starting at e until it returns to e.
func (m *Mesh) EdgeCycle(e EdgeIndex) iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		if e == NoEdge {
			return
		}
		cur := e
		for {
			next := m.edges[cur].next
			if !yield(cur) {
				return
			}
			if next == e || next == NoEdge {
				return
			}
			cur = next
		}
	}
}

// EdgesOfVertex yields every half-edge ending at v, rotating clockwise around
// v starting at its anchor edge.
func (m *Mesh) EdgesOfVertex(v VertexIndex) iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		start := m.vertices[v].edge
		if start == NoEdge {
			return
		}
		cur := start
		for {
			next := m.edges[m.edges[cur].next].twin
			if !yield(cur) {
				return
			}
			if next == start {
				return
			}
			cur = next
		}
	}
}

// VerticesOfFace yields the corners of f in counter-clockwise order.
func (m *Mesh) VerticesOfFace(f FaceIndex) iter.Seq[VertexIndex] {
	return func(yield func(VertexIndex) bool) {
		for e := range m.EdgesOfFace(f) {
			if !yield(m.edges[e].end) {
				return
			}
		}
	}
}

// AdjacentVertices yields the vertices connected to v by an edge.
func (m *Mesh) AdjacentVertices(v VertexIndex) iter.Seq[VertexIndex] {
	return func(yield func(VertexIndex) bool) {
		for e := range m.EdgesOfVertex(v) {
			if !yield(m.Start(e)) {
				return
			}
		}
	}
}

// AdjacentFaces yields the faces incident to v, including boundary faces.
func (m *Mesh) AdjacentFaces(v VertexIndex) iter.Seq[FaceIndex] {
	return func(yield func(FaceIndex) bool) {
		for e := range m.EdgesOfVertex(v) {
			if !yield(m.edges[e].face) {
				return
			}
		}
	}
}

// NeighbouringFaces yields, for each edge of f, the face on the other side.
// A face sharing several edges with f is yielded several times.
func (m *Mesh) NeighbouringFaces(f FaceIndex) iter.Seq[FaceIndex] {
	return func(yield func(FaceIndex) bool) {
		for e := range m.EdgesOfFace(f) {
			if !yield(m.TwinFace(e)) {
				return
			}
		}
	}
}

// ForEachFaceParallel calls fn for every live interior face from workers
// goroutines. fn must not mutate the mesh.
func (m *Mesh) ForEachFaceParallel(workers int, fn func(FaceIndex)) {
	if workers < 1 {
		workers = 1
	}
	faces := make(chan FaceIndex, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for f := range faces {
				fn(f)
			}
		}()
	}
	for f := range m.Faces() {
		faces <- f
	}
	close(faces)
	wg.Wait()
}
