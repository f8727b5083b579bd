package mesh

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Mesh owns all vertices, half-edges and faces. Its zero value is not usable;
// create one with New.
//
// Mesh is not safe for concurrent mutation. Readers may run in parallel as
// long as no writer is active.
type Mesh struct {
	vertices []vertex
	edges    []halfEdge
	faces    []face
	border   face

	numVertices int
	numEdges    int
	numFaces    int
	numHoles    int
}

// New creates an empty mesh containing only the border face.
func New() *Mesh {
	return &Mesh{border: face{edge: NoEdge, boundary: true}}
}

// Clear removes every element, leaving an empty mesh.
func (m *Mesh) Clear() {
	*m = *New()
}

func (m *Mesh) face(f FaceIndex) *face {
	if f == Border {
		return &m.border
	}
	return &m.faces[f]
}

// Factory

// CreateVertex appends a new live vertex at p.
func (m *Mesh) CreateVertex(p r2.Point) VertexIndex {
	m.vertices = append(m.vertices, newVertex(p))
	m.numVertices++
	return VertexIndex(len(m.vertices) - 1)
}

// InsertVertex appends a vertex at p which the caller expects to receive index
// id. This is used when replaying or importing a mesh whose indices must be
// reproduced exactly.
func (m *Mesh) InsertVertex(id VertexIndex, p r2.Point) error {
	if int(id) != len(m.vertices) {
		return errors.Wrapf(ErrInvalidArgument, "vertex id %d does not match next index %d", id, len(m.vertices))
	}
	m.CreateVertex(p)
	return nil
}

// CreateEdge appends a half-edge ending at end and bordering f. Links are left
// unset.
func (m *Mesh) CreateEdge(end VertexIndex, f FaceIndex) EdgeIndex {
	m.edges = append(m.edges, halfEdge{end: end, next: NoEdge, prev: NoEdge, twin: NoEdge, face: f})
	m.numEdges++
	return EdgeIndex(len(m.edges) - 1)
}

// InsertEdge is CreateEdge with an expected index, see InsertVertex.
func (m *Mesh) InsertEdge(id EdgeIndex, end VertexIndex, f FaceIndex) error {
	if int(id) != len(m.edges) {
		return errors.Wrapf(ErrInvalidMeshState, "edge id %d does not match next index %d", id, len(m.edges))
	}
	m.CreateEdge(end, f)
	return nil
}

// CreateFace appends a face. Boundary faces are holes.
func (m *Mesh) CreateFace(boundary bool) FaceIndex {
	m.faces = append(m.faces, face{edge: NoEdge, boundary: boundary})
	m.numFaces++
	if boundary {
		m.numHoles++
	}
	return FaceIndex(len(m.faces) - 1)
}

// Navigation

func (m *Mesh) Next(e EdgeIndex) EdgeIndex { return m.edges[e].next }
func (m *Mesh) Prev(e EdgeIndex) EdgeIndex { return m.edges[e].prev }
func (m *Mesh) Twin(e EdgeIndex) EdgeIndex { return m.edges[e].twin }
func (m *Mesh) Face(e EdgeIndex) FaceIndex { return m.edges[e].face }
func (m *Mesh) Vertex(e EdgeIndex) VertexIndex { return m.edges[e].end }

// Start is the vertex e leaves from.
func (m *Mesh) Start(e EdgeIndex) VertexIndex { return m.edges[m.edges[e].twin].end }

// TwinFace is the face on the other side of e.
func (m *Mesh) TwinFace(e EdgeIndex) FaceIndex { return m.edges[m.edges[e].twin].face }

// LookupFace is Face with a liveness check.
func (m *Mesh) LookupFace(e EdgeIndex) (FaceIndex, error) {
	if m.edges[e].destroyed {
		return NoFace, errors.Wrapf(ErrInvalidMeshState, "half-edge %d is destroyed", e)
	}
	return m.edges[e].face, nil
}

// Edge returns the anchor half-edge of f.
func (m *Mesh) Edge(f FaceIndex) EdgeIndex { return m.face(f).edge }

// VertexEdge returns the anchor half-edge of v, which ends at v.
func (m *Mesh) VertexEdge(v VertexIndex) EdgeIndex { return m.vertices[v].edge }

func (m *Mesh) Point(v VertexIndex) r2.Point { return m.vertices[v].point }

// EdgePoint is the point of the vertex e ends at.
func (m *Mesh) EdgePoint(e EdgeIndex) r2.Point { return m.vertices[m.edges[e].end].point }

// Down returns the vertex one hierarchy level below v, or NoVertex.
func (m *Mesh) Down(v VertexIndex) VertexIndex { return m.vertices[v].down }

func (m *Mesh) EdgeData(e EdgeIndex) any { return m.edges[e].data }
func (m *Mesh) FaceData(f FaceIndex) any { return m.face(f).data }

// Mutation. SetNext and SetPrev keep both directions of the link consistent,
// SetTwin links both halves.

func (m *Mesh) SetNext(e, next EdgeIndex) {
	m.edges[e].next = next
	m.edges[next].prev = e
}

func (m *Mesh) SetPrev(e, prev EdgeIndex) {
	m.edges[e].prev = prev
	m.edges[prev].next = e
}

func (m *Mesh) SetTwin(e, twin EdgeIndex) {
	m.edges[e].twin = twin
	m.edges[twin].twin = e
}

func (m *Mesh) SetFace(e EdgeIndex, f FaceIndex) { m.edges[e].face = f }
func (m *Mesh) SetVertex(e EdgeIndex, v VertexIndex) { m.edges[e].end = v }
func (m *Mesh) SetEdge(f FaceIndex, e EdgeIndex) { m.face(f).edge = e }
func (m *Mesh) SetVertexEdge(v VertexIndex, e EdgeIndex) { m.vertices[v].edge = e }
func (m *Mesh) SetPoint(v VertexIndex, p r2.Point) { m.vertices[v].point = p }
func (m *Mesh) SetDown(v, down VertexIndex) { m.vertices[v].down = down }
func (m *Mesh) SetEdgeData(e EdgeIndex, data any) { m.edges[e].data = data }
func (m *Mesh) SetFaceData(f FaceIndex, data any) { m.face(f).data = data }

// ToHole turns an interior face into a hole.
func (m *Mesh) ToHole(f FaceIndex) {
	fc := m.face(f)
	if fc.boundary {
		return
	}
	fc.boundary = true
	m.numHoles++
}

// Predicates

func (m *Mesh) IsBoundary(f FaceIndex) bool { return m.face(f).boundary }
func (m *Mesh) IsBorder(f FaceIndex) bool { return f == Border }
func (m *Mesh) IsHole(f FaceIndex) bool { return f != Border && m.faces[f].boundary }

// IsBoundaryEdge reports whether e itself lies in a boundary face.
func (m *Mesh) IsBoundaryEdge(e EdgeIndex) bool { return m.face(m.edges[e].face).boundary }

// IsAtBoundary reports whether e or its twin lies in a boundary face.
func (m *Mesh) IsAtBoundary(e EdgeIndex) bool {
	return m.IsBoundaryEdge(e) || m.IsBoundaryEdge(m.edges[e].twin)
}

// IsAtBoundaryVertex reports whether some edge ending at v lies on a boundary.
func (m *Mesh) IsAtBoundaryVertex(v VertexIndex) bool {
	for e := range m.EdgesOfVertex(v) {
		if m.IsAtBoundary(e) {
			return true
		}
	}
	return false
}

func (m *Mesh) IsDestroyedFace(f FaceIndex) bool {
	if f == NoFace {
		return true
	}
	return m.face(f).destroyed
}
func (m *Mesh) IsDestroyedEdge(e EdgeIndex) bool { return e == NoEdge || m.edges[e].destroyed }
func (m *Mesh) IsDestroyedVertex(v VertexIndex) bool { return v == NoVertex || m.vertices[v].destroyed }

// Destruction only tombstones, so indices stay valid until compaction.

func (m *Mesh) DestroyFace(f FaceIndex) {
	if f == Border {
		return
	}
	fc := &m.faces[f]
	if fc.destroyed {
		return
	}
	fc.destroyed = true
	m.numFaces--
	if fc.boundary {
		m.numHoles--
	}
}

// DestroyEdge destroys e together with its twin.
func (m *Mesh) DestroyEdge(e EdgeIndex) {
	if m.edges[e].destroyed {
		return
	}
	m.edges[e].destroyed = true
	m.numEdges--
	if t := m.edges[e].twin; t != NoEdge && !m.edges[t].destroyed {
		m.edges[t].destroyed = true
		m.numEdges--
	}
}

func (m *Mesh) DestroyVertex(v VertexIndex) {
	if m.vertices[v].destroyed {
		return
	}
	m.vertices[v].destroyed = true
	m.numVertices--
}

// Counts of live elements. NumberOfFaces counts interior faces and holes, but
// never the border.

func (m *Mesh) NumberOfVertices() int { return m.numVertices }
func (m *Mesh) NumberOfEdges() int { return m.numEdges }
func (m *Mesh) NumberOfFaces() int { return m.numFaces }
func (m *Mesh) NumberOfHoles() int { return m.numHoles }

// Capacities are the slot counts including tombstones.

func (m *Mesh) VertexCapacity() int { return len(m.vertices) }
func (m *Mesh) EdgeCapacity() int { return len(m.edges) }
func (m *Mesh) FaceCapacity() int { return len(m.faces) }

// HasTombstones reports whether some slot is destroyed.
func (m *Mesh) HasTombstones() bool {
	return m.numVertices != len(m.vertices) || m.numEdges != len(m.edges) || m.numFaces != len(m.faces)
}

// Vertex locks, used for concurrent flips.

func (m *Mesh) TryLockVertex(v VertexIndex) bool { return m.vertices[v].lock.TryLock() }
func (m *Mesh) UnlockVertex(v VertexIndex) { m.vertices[v].lock.Unlock() }

// Convenience queries built on navigation.

// Degree is the number of edges ending at v.
func (m *Mesh) Degree(v VertexIndex) int {
	n := 0
	for range m.EdgesOfVertex(v) {
		n++
	}
	return n
}

// EdgeCount is the number of edges around f.
func (m *Mesh) EdgeCount(f FaceIndex) int {
	n := 0
	for range m.EdgesOfFace(f) {
		n++
	}
	return n
}

// IsTriangle reports whether f is bounded by exactly three half-edges.
func (m *Mesh) IsTriangle(f FaceIndex) bool {
	e := m.face(f).edge
	return e != NoEdge && m.edges[m.edges[m.edges[e].next].next].next == e
}

// Points returns the corner points of f in cycle order.
func (m *Mesh) Points(f FaceIndex) []r2.Point {
	var points []r2.Point
	for e := range m.EdgesOfFace(f) {
		points = append(points, m.EdgePoint(e))
	}
	return points
}

// Centroid is the average of the corner points of f.
func (m *Mesh) Centroid(f FaceIndex) r2.Point {
	var sum r2.Point
	n := 0
	for e := range m.EdgesOfFace(f) {
		sum = sum.Add(m.EdgePoint(e))
		n++
	}
	if n == 0 {
		return sum
	}
	return sum.Mul(1 / float64(n))
}

// FindEdge returns the half-edge from a to b, or NoEdge.
func (m *Mesh) FindEdge(a, b VertexIndex) EdgeIndex {
	for e := range m.EdgesOfVertex(b) {
		if m.Start(e) == a {
			return e
		}
	}
	return NoEdge
}

// Bound is the bounding rectangle of all live vertices.
func (m *Mesh) Bound() r2.Rect {
	rect := r2.EmptyRect()
	for v := range m.Vertices() {
		rect = rect.AddPoint(m.Point(v))
	}
	return rect
}
