package triangulate

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/dag"
	"github.com/osuushi/trimesh/mesh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// triangleSnapshot is the geometry a face had when its node was created.
// Face slots are reused by splits and flips, so a node is only trusted while
// the face still has the same corners.
type triangleSnapshot struct {
	face   mesh.FaceIndex
	points [3]r2.Point
}

// DelaunayTreeLocator keeps the history of every triangle as a DAG. Splits
// and flips hang the new triangles below the ones they replaced; a query
// descends through the triangles containing the point to a live leaf.
// Deletions are not tracked.
type DelaunayTreeLocator struct {
	tc     *TriConnectivity
	root   *dag.Node[triangleSnapshot]
	leaves map[mesh.FaceIndex]*dag.Node[triangleSnapshot]
	base   *BasePointLocator
}

// NewDelaunayTreeLocator needs a triangulation consisting of a single
// triangle, which becomes the root.
func NewDelaunayTreeLocator(tc *TriConnectivity) (*DelaunayTreeLocator, error) {
	m := tc.mesh
	if n := m.NumberOfFaces(); n != 1 {
		return nil, errors.Wrapf(ErrUnsupportedConfiguration, "delaunay tree needs a triangulation with a single face, got %d", n)
	}
	f := tc.AnyFace()
	if f == mesh.NoFace || !m.IsTriangle(f) {
		return nil, errors.Wrap(ErrUnsupportedConfiguration, "delaunay tree needs a triangular root face")
	}
	l := &DelaunayTreeLocator{
		tc:     tc,
		leaves: make(map[mesh.FaceIndex]*dag.Node[triangleSnapshot]),
		base:   NewBasePointLocator(tc),
	}
	l.root = dag.NewNode(l.snapshot(f))
	l.leaves[f] = l.root
	return l, nil
}

func (l *DelaunayTreeLocator) snapshot(f mesh.FaceIndex) triangleSnapshot {
	s := triangleSnapshot{face: f}
	i := 0
	for e := range l.tc.mesh.EdgesOfFace(f) {
		if i == 3 {
			fatalf("face %d is not a triangle", f)
		}
		s.points[i] = l.tc.mesh.EdgePoint(e)
		i++
	}
	return s
}

// isCurrent reports whether node is the live leaf of its face.
func (l *DelaunayTreeLocator) isCurrent(node *dag.Node[triangleSnapshot]) bool {
	m := l.tc.mesh
	s := node.Element
	if !node.IsLeaf() || l.leaves[s.face] != node || m.IsDestroyedFace(s.face) || !m.IsTriangle(s.face) {
		return false
	}
	for e := range m.EdgesOfFace(s.face) {
		p := m.EdgePoint(e)
		if p != s.points[0] && p != s.points[1] && p != s.points[2] {
			return false
		}
	}
	return true
}

func (l *DelaunayTreeLocator) LocatePoint(p r2.Point) (mesh.FaceIndex, error) {
	eps := l.tc.eps
	node, ok := l.root.Find(
		func(node *dag.Node[triangleSnapshot]) bool {
			pts := node.Element.points
			return IsInsideTriangle(p, pts[0], pts[1], pts[2], eps)
		},
		l.isCurrent,
	)
	if ok {
		return node.Element.face, nil
	}
	l.tc.logger.Debug("delaunay tree has no live leaf for point, walking instead",
		zap.Float64("x", p.X), zap.Float64("y", p.Y))
	return l.base.LocatePoint(p)
}

func (l *DelaunayTreeLocator) Locate(p r2.Point) (mesh.FaceIndex, bool) { return locate(l, p) }
func (l *DelaunayTreeLocator) Type() LocatorType { return DelaunayTree }

// Size is the number of triangles recorded in the history.
func (l *DelaunayTreeLocator) Size() int {
	return l.root.Size()
}

func (l *DelaunayTreeLocator) addChildren(parent *dag.Node[triangleSnapshot], faces ...mesh.FaceIndex) {
	if parent == nil {
		return
	}
	for _, f := range faces {
		child := dag.NewNode(l.snapshot(f))
		parent.AddChild(child)
		l.leaves[f] = child
	}
}

func (l *DelaunayTreeLocator) PostSplitTriangleEvent(original mesh.FaceIndex, faces [3]mesh.FaceIndex, _ mesh.VertexIndex) {
	l.addChildren(l.leaves[original], faces[:]...)
}

func (l *DelaunayTreeLocator) PostSplitHalfEdgeEvent(original, f1, f2 mesh.FaceIndex, _ mesh.VertexIndex) {
	l.addChildren(l.leaves[original], f1, f2)
}

// Both new triangles overlap both old ones, so each becomes a child of both.
func (l *DelaunayTreeLocator) PostFlipEdgeEvent(f1, f2 mesh.FaceIndex) {
	parents := []*dag.Node[triangleSnapshot]{l.leaves[f1], l.leaves[f2]}
	n1 := dag.NewNode(l.snapshot(f1))
	n2 := dag.NewNode(l.snapshot(f2))
	for _, parent := range parents {
		if parent == nil {
			continue
		}
		parent.AddChild(n1)
		parent.AddChild(n2)
	}
	l.leaves[f1] = n1
	l.leaves[f2] = n2
}

func (l *DelaunayTreeLocator) PostInsertEvent(mesh.VertexIndex) {}
