package mesh

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Buffers is the flat representation handed to vectorized backends. The
// layout of every slice is fixed:
//
//	Vertices      x0 y0 x1 y1 ...                 (2 per vertex)
//	HalfEdges     end next twin face ...          (4 per half-edge, face -1 = border)
//	Faces         anchor -1 ...                   (2 per face)
//	Triangles     v0 v1 v2 0 ...                  (4 per interior face, CCW)
//	VertexEdges   anchor ...                      (1 per vertex)
//	BoundaryFlags 0|1 ...                         (1 per vertex)
//
// Holes lists the face indices that are holes. It is not part of the backend
// layout but lets FromBuffers restore boundary flags.
type Buffers struct {
	Vertices      []float64
	HalfEdges     []int32
	Faces         []int32
	Triangles     []int32
	VertexEdges   []int32
	BoundaryFlags []int32
	Holes         []int32
}

// ToBuffers exports m. The mesh must be compacted first, since buffer indices
// are storage indices.
func (m *Mesh) ToBuffers() (*Buffers, error) {
	if m.HasTombstones() {
		return nil, errors.Wrap(ErrInvalidMeshState, "mesh must be garbage collected before export")
	}
	b := &Buffers{
		Vertices:      make([]float64, 0, 2*len(m.vertices)),
		HalfEdges:     make([]int32, 0, 4*len(m.edges)),
		Faces:         make([]int32, 0, 2*len(m.faces)),
		Triangles:     make([]int32, 0, 4*len(m.faces)),
		VertexEdges:   make([]int32, 0, len(m.vertices)),
		BoundaryFlags: make([]int32, 0, len(m.vertices)),
	}
	for v := range m.vertices {
		vx := &m.vertices[v]
		b.Vertices = append(b.Vertices, vx.point.X, vx.point.Y)
		b.VertexEdges = append(b.VertexEdges, int32(vx.edge))
		var flag int32
		if vx.edge != NoEdge && m.IsAtBoundaryVertex(VertexIndex(v)) {
			flag = 1
		}
		b.BoundaryFlags = append(b.BoundaryFlags, flag)
	}
	for e := range m.edges {
		he := &m.edges[e]
		b.HalfEdges = append(b.HalfEdges, int32(he.end), int32(he.next), int32(he.twin), int32(he.face))
	}
	for f := range m.faces {
		fc := &m.faces[f]
		b.Faces = append(b.Faces, int32(fc.edge), -1)
		if fc.boundary {
			b.Holes = append(b.Holes, int32(f))
			continue
		}
		for v := range m.VerticesOfFace(FaceIndex(f)) {
			b.Triangles = append(b.Triangles, int32(v))
		}
		b.Triangles = append(b.Triangles, 0)
	}
	return b, nil
}

// VertexBuffer32 is the single precision variant of Buffers.Vertices.
func (b *Buffers) VertexBuffer32() []float32 {
	out := make([]float32, len(b.Vertices))
	for i, v := range b.Vertices {
		out[i] = float32(v)
	}
	return out
}

// FromBuffers rebuilds a mesh with exactly the indices recorded in b.
func FromBuffers(b *Buffers) (*Mesh, error) {
	if len(b.Vertices)%2 != 0 || len(b.HalfEdges)%4 != 0 || len(b.Faces)%2 != 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "buffer lengths are not multiples of their stride")
	}
	numVertices := len(b.Vertices) / 2
	if len(b.VertexEdges) != numVertices {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d vertex anchors for %d vertices", len(b.VertexEdges), numVertices)
	}
	numEdges := len(b.HalfEdges) / 4
	numFaces := len(b.Faces) / 2

	holes := make(map[int32]bool, len(b.Holes))
	for _, h := range b.Holes {
		holes[h] = true
	}

	m := New()
	for v := 0; v < numVertices; v++ {
		if err := m.InsertVertex(VertexIndex(v), r2.Point{X: b.Vertices[2*v], Y: b.Vertices[2*v+1]}); err != nil {
			return nil, err
		}
	}
	for f := 0; f < numFaces; f++ {
		m.CreateFace(holes[int32(f)])
	}
	inRange := func(i int32, n int) bool { return i >= 0 && int(i) < n }
	for e := 0; e < numEdges; e++ {
		end, face := b.HalfEdges[4*e], b.HalfEdges[4*e+3]
		if !inRange(end, numVertices) || !(face == -1 || inRange(face, numFaces)) {
			return nil, errors.Wrapf(ErrInvalidArgument, "half-edge %d has out of range references", e)
		}
		if err := m.InsertEdge(EdgeIndex(e), VertexIndex(end), FaceIndex(face)); err != nil {
			return nil, err
		}
	}
	for e := 0; e < numEdges; e++ {
		next, twin := b.HalfEdges[4*e+1], b.HalfEdges[4*e+2]
		if !inRange(next, numEdges) || !inRange(twin, numEdges) {
			return nil, errors.Wrapf(ErrInvalidArgument, "half-edge %d has out of range links", e)
		}
		m.SetNext(EdgeIndex(e), EdgeIndex(next))
		m.edges[e].twin = EdgeIndex(twin)
		if FaceIndex(b.HalfEdges[4*e+3]) == Border && m.border.edge == NoEdge {
			m.border.edge = EdgeIndex(e)
		}
	}
	for f := 0; f < numFaces; f++ {
		m.faces[f].edge = EdgeIndex(b.Faces[2*f])
	}
	for v := 0; v < numVertices; v++ {
		m.vertices[v].edge = EdgeIndex(b.VertexEdges[v])
	}
	return m, nil
}

// ScatterVertices writes positions from a vertex buffer back into m, the
// inverse of the Vertices export.
func (m *Mesh) ScatterVertices(buf []float64) error {
	if len(buf) != 2*len(m.vertices) {
		return errors.Wrapf(ErrInvalidArgument, "vertex buffer has %d values for %d vertices", len(buf), len(m.vertices))
	}
	for v := range m.vertices {
		m.vertices[v].point = r2.Point{X: buf[2*v], Y: buf[2*v+1]}
	}
	return nil
}
