package triangulate

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PolyConnectivity implements topology operations on arbitrary polygon faces.
// Nothing here assumes the faces are triangles.
type PolyConnectivity struct {
	mesh   *mesh.Mesh
	logger *zap.Logger
}

func NewPolyConnectivity(m *mesh.Mesh, logger *zap.Logger) *PolyConnectivity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolyConnectivity{mesh: m, logger: logger}
}

func (pc *PolyConnectivity) Mesh() *mesh.Mesh {
	return pc.mesh
}

// FaceCondition is a predicate over faces used by the merge operations.
type FaceCondition func(f mesh.FaceIndex) bool

func edgesOf(m *mesh.Mesh, f mesh.FaceIndex) []mesh.EdgeIndex {
	var edges []mesh.EdgeIndex
	for e := range m.EdgesOfFace(f) {
		edges = append(edges, e)
	}
	return edges
}

// Split inserts a new vertex at p inside f and connects it to every corner of
// f, turning an n-gon into n triangles. f is reused for the triangle on its
// anchor edge, the others are appended in cycle order.
func (pc *PolyConnectivity) Split(f mesh.FaceIndex, p r2.Point) mesh.VertexIndex {
	m := pc.mesh
	if m.IsBoundary(f) {
		fatalf("cannot split boundary face %d", f)
	}
	boundary := edgesOf(m, f)
	n := len(boundary)
	u := m.CreateVertex(p)

	faces := make([]mesh.FaceIndex, n)
	faces[0] = f
	for i := 1; i < n; i++ {
		faces[i] = m.CreateFace(false)
	}

	// in[i] runs from the end of boundary[i] to u, out[i] back again.
	in := make([]mesh.EdgeIndex, n)
	out := make([]mesh.EdgeIndex, n)
	for i, e := range boundary {
		in[i] = m.CreateEdge(u, faces[i])
		out[i] = m.CreateEdge(m.Vertex(e), faces[CircularIndex(i+1, n)])
		m.SetTwin(in[i], out[i])
	}
	for i, e := range boundary {
		prevOut := out[CircularIndex(i-1, n)]
		m.SetFace(e, faces[i])
		m.SetNext(e, in[i])
		m.SetNext(in[i], prevOut)
		m.SetNext(prevOut, e)
		m.SetEdge(faces[i], e)
	}
	m.SetVertexEdge(u, in[0])
	return u
}

// RemoveEdges deletes every edge shared by faces a and b, merging them into
// one face. A boundary face always survives the merge, the border taking
// precedence over holes. It returns mesh.NoFace if the faces share no edge.
// Vertices left without edges are destroyed if deleteIsolated is set.
func (pc *PolyConnectivity) RemoveEdges(a, b mesh.FaceIndex, deleteIsolated bool) (mesh.FaceIndex, error) {
	m := pc.mesh
	if a == b {
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "cannot merge face %d with itself", a)
	}
	if m.IsDestroyedFace(a) || m.IsDestroyedFace(b) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidMeshState, "cannot merge destroyed faces %d and %d", a, b)
	}
	survivor, victim := a, b
	if m.IsBorder(b) || (m.IsBoundary(b) && !m.IsBoundary(a)) {
		survivor, victim = b, a
	}

	victimEdges := edgesOf(m, victim)
	var shared []mesh.EdgeIndex
	chains := 0
	for _, e := range victimEdges {
		if m.TwinFace(e) != survivor {
			continue
		}
		shared = append(shared, e)
		if m.TwinFace(m.Prev(e)) != survivor {
			chains++
		}
	}
	if len(shared) == 0 {
		return mesh.NoFace, nil
	}
	if chains > 1 {
		return mesh.NoFace, &IllegalMeshError{Face: victim, Reason: "faces share more than one chain of edges"}
	}

	for _, e := range victimEdges {
		m.SetFace(e, survivor)
	}
	for _, e := range shared {
		pc.removeFullEdge(e, deleteIsolated)
	}
	m.DestroyFace(victim)
	return survivor, nil
}

// removeFullEdge unlinks e and its twin, which must border the same face.
func (pc *PolyConnectivity) removeFullEdge(e mesh.EdgeIndex, deleteIsolated bool) {
	m := pc.mesh
	t := m.Twin(e)
	f := m.Face(e)
	if m.Face(t) != f {
		fatalf("half-edges %d and %d border different faces", e, t)
	}
	a, b := m.Vertex(t), m.Vertex(e)
	ep, en, tp, tn := m.Prev(e), m.Next(e), m.Prev(t), m.Next(t)
	spikeA := tn == e
	spikeB := en == t

	switch {
	case spikeA && spikeB:
		pc.isolate(a, deleteIsolated)
		pc.isolate(b, deleteIsolated)
	case spikeB:
		m.SetNext(ep, tn)
		pc.isolate(b, deleteIsolated)
		if m.VertexEdge(a) == t {
			m.SetVertexEdge(a, ep)
		}
	case spikeA:
		m.SetNext(tp, en)
		pc.isolate(a, deleteIsolated)
		if m.VertexEdge(b) == e {
			m.SetVertexEdge(b, tp)
		}
	default:
		m.SetNext(ep, tn)
		m.SetNext(tp, en)
		if m.VertexEdge(a) == t {
			m.SetVertexEdge(a, ep)
		}
		if m.VertexEdge(b) == e {
			m.SetVertexEdge(b, tp)
		}
	}

	if anchor := m.Edge(f); anchor == e || anchor == t {
		switch {
		case ep != t:
			m.SetEdge(f, ep)
		case tp != e:
			m.SetEdge(f, tp)
		default:
			m.SetEdge(f, mesh.NoEdge)
		}
	}
	m.DestroyEdge(e)
}

func (pc *PolyConnectivity) isolate(v mesh.VertexIndex, destroy bool) {
	pc.mesh.SetVertexEdge(v, mesh.NoEdge)
	if destroy {
		pc.mesh.DestroyVertex(v)
	}
}

// RemoveSimpleLink removes the full edge e, merging the two distinct faces on
// either side of it.
func (pc *PolyConnectivity) RemoveSimpleLink(e mesh.EdgeIndex) (mesh.FaceIndex, error) {
	m := pc.mesh
	if m.IsDestroyedEdge(e) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidMeshState, "half-edge %d is destroyed", e)
	}
	a, b := m.Face(e), m.TwinFace(e)
	if a == b {
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "half-edge %d borders face %d on both sides", e, a)
	}
	survivor, victim := a, b
	if m.IsBorder(b) || (m.IsBoundary(b) && !m.IsBoundary(a)) {
		survivor, victim = b, a
	}
	for _, edge := range edgesOf(m, victim) {
		m.SetFace(edge, survivor)
	}
	pc.removeFullEdge(e, false)
	m.DestroyFace(victim)
	return survivor, nil
}

// MergeFaces grows seed breadth first, merging every neighbour for which
// mergeCondition holds, up to maxDepth hops away (negative for no limit). If
// errorCondition matches a candidate the merge stops with an
// IllegalMeshError. It returns the face that holds the merged region.
func (pc *PolyConnectivity) MergeFaces(
	seed mesh.FaceIndex,
	mergeCondition FaceCondition,
	errorCondition FaceCondition,
	deleteIsolated bool,
	maxDepth int,
) (mesh.FaceIndex, error) {
	m := pc.mesh
	if m.IsDestroyedFace(seed) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidMeshState, "seed face %d is destroyed", seed)
	}

	type candidate struct {
		face  mesh.FaceIndex
		depth int
	}
	visited := map[mesh.FaceIndex]bool{seed: true}
	var queue []candidate
	enqueue := func(f mesh.FaceIndex, depth int) {
		if maxDepth >= 0 && depth > maxDepth {
			return
		}
		for g := range m.NeighbouringFaces(f) {
			if visited[g] {
				continue
			}
			visited[g] = true
			queue = append(queue, candidate{g, depth})
		}
	}

	current := seed
	enqueue(seed, 1)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if m.IsDestroyedFace(c.face) || c.face == current {
			continue
		}
		if errorCondition != nil && errorCondition(c.face) {
			return current, &IllegalMeshError{Face: c.face, Reason: "merge reached a face matching the error condition"}
		}
		if !mergeCondition(c.face) {
			continue
		}
		// Collect before merging, the candidate may not survive.
		var neighbours []mesh.FaceIndex
		for g := range m.NeighbouringFaces(c.face) {
			neighbours = append(neighbours, g)
		}
		merged, err := pc.RemoveEdges(current, c.face, deleteIsolated)
		if err != nil {
			return current, err
		}
		if merged == mesh.NoFace {
			continue
		}
		current = merged
		if maxDepth >= 0 && c.depth+1 > maxDepth {
			continue
		}
		for _, g := range neighbours {
			if visited[g] {
				continue
			}
			visited[g] = true
			queue = append(queue, candidate{g, c.depth + 1})
		}
	}
	return current, nil
}

// CreateHole turns f into a hole and lets it consume the surrounding
// interior faces for which removable holds.
func (pc *PolyConnectivity) CreateHole(f mesh.FaceIndex, removable FaceCondition, deleteIsolated bool) (mesh.FaceIndex, error) {
	if pc.mesh.IsBoundary(f) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "face %d is already a boundary", f)
	}
	pc.mesh.ToHole(f)
	return pc.ShrinkBoundary(f, removable, deleteIsolated)
}

// ShrinkBoundary grows the boundary face inwards, consuming interior faces
// for which removable holds.
func (pc *PolyConnectivity) ShrinkBoundary(boundary mesh.FaceIndex, removable FaceCondition, deleteIsolated bool) (mesh.FaceIndex, error) {
	m := pc.mesh
	if !m.IsBoundary(boundary) {
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "face %d is not a boundary", boundary)
	}
	return pc.MergeFaces(boundary, func(f mesh.FaceIndex) bool {
		return !m.IsBoundary(f) && removable(f)
	}, nil, deleteIsolated, -1)
}

func (pc *PolyConnectivity) ShrinkBorder(removable FaceCondition, deleteIsolated bool) error {
	_, err := pc.ShrinkBoundary(mesh.Border, removable, deleteIsolated)
	return err
}

// RemoveFaceAtBoundary merges f into the adjacent boundary face. A face which
// shares no edge with boundary is left alone.
func (pc *PolyConnectivity) RemoveFaceAtBoundary(f, boundary mesh.FaceIndex, deleteIsolated bool) error {
	m := pc.mesh
	if m.IsBoundary(f) {
		return errors.Wrapf(ErrInvalidArgument, "face %d is a boundary", f)
	}
	if !m.IsBoundary(boundary) {
		return errors.Wrapf(ErrInvalidArgument, "face %d is not a boundary", boundary)
	}
	shared := 0
	for g := range m.NeighbouringFaces(f) {
		if g == boundary {
			shared++
		}
	}
	if shared == 0 {
		pc.logger.Warn("face is not adjacent to the boundary, nothing removed",
			zap.Int32("face", int32(f)), zap.Int32("boundary", int32(boundary)))
		return nil
	}
	_, err := pc.RemoveEdges(boundary, f, deleteIsolated)
	return err
}

// SplitFaceByDiagonal connects the end vertices of e1 and e2, which must lie
// on the same interior face and not be adjacent. The face keeps e1, the new
// face holding e2 is returned.
func (pc *PolyConnectivity) SplitFaceByDiagonal(e1, e2 mesh.EdgeIndex) (mesh.FaceIndex, error) {
	m := pc.mesh
	f := m.Face(e1)
	switch {
	case m.Face(e2) != f:
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "half-edges %d and %d border different faces", e1, e2)
	case m.IsBoundary(f):
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "face %d is a boundary", f)
	case e1 == e2 || m.Next(e1) == e2 || m.Next(e2) == e1:
		return mesh.NoFace, errors.Wrapf(ErrInvalidArgument, "half-edges %d and %d are adjacent", e1, e2)
	}

	u, w := m.Vertex(e1), m.Vertex(e2)
	n1, n2 := m.Next(e1), m.Next(e2)
	g := m.CreateFace(false)
	d := m.CreateEdge(w, f)
	dt := m.CreateEdge(u, g)
	m.SetTwin(d, dt)

	m.SetNext(e1, d)
	m.SetNext(d, n2)
	m.SetNext(e2, dt)
	m.SetNext(dt, n1)
	for e := range m.EdgeCycle(dt) {
		m.SetFace(e, g)
	}
	m.SetEdge(f, e1)
	m.SetEdge(g, e2)
	return g, nil
}
