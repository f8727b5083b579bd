package triangulate

import "github.com/osuushi/trimesh/mesh"

// TriEventListener observes topology changes of a Triangulation. Every method
// is called synchronously after the mutation completed, first on the point
// locator and then on registered listeners in registration order.
type TriEventListener interface {
	// original was split into three faces by inserting v. original is reused
	// as faces[0].
	PostSplitTriangleEvent(original mesh.FaceIndex, faces [3]mesh.FaceIndex, v mesh.VertexIndex)

	// original was split in two by inserting v on one of its edges. original
	// is reused as f1.
	PostSplitHalfEdgeEvent(original, f1, f2 mesh.FaceIndex, v mesh.VertexIndex)

	// The shared edge of f1 and f2 was flipped. Both face indices are reused.
	PostFlipEdgeEvent(f1, f2 mesh.FaceIndex)

	PostInsertEvent(v mesh.VertexIndex)
}

// ListenerFuncs adapts optional functions to a TriEventListener.
type ListenerFuncs struct {
	SplitTriangle func(original mesh.FaceIndex, faces [3]mesh.FaceIndex, v mesh.VertexIndex)
	SplitHalfEdge func(original, f1, f2 mesh.FaceIndex, v mesh.VertexIndex)
	FlipEdge      func(f1, f2 mesh.FaceIndex)
	Insert        func(v mesh.VertexIndex)
}

func (l ListenerFuncs) PostSplitTriangleEvent(original mesh.FaceIndex, faces [3]mesh.FaceIndex, v mesh.VertexIndex) {
	if l.SplitTriangle != nil {
		l.SplitTriangle(original, faces, v)
	}
}

func (l ListenerFuncs) PostSplitHalfEdgeEvent(original, f1, f2 mesh.FaceIndex, v mesh.VertexIndex) {
	if l.SplitHalfEdge != nil {
		l.SplitHalfEdge(original, f1, f2, v)
	}
}

func (l ListenerFuncs) PostFlipEdgeEvent(f1, f2 mesh.FaceIndex) {
	if l.FlipEdge != nil {
		l.FlipEdge(f1, f2)
	}
}

func (l ListenerFuncs) PostInsertEvent(v mesh.VertexIndex) {
	if l.Insert != nil {
		l.Insert(v)
	}
}

// listeners fans events out in order.
type listeners []TriEventListener

func (ls listeners) PostSplitTriangleEvent(original mesh.FaceIndex, faces [3]mesh.FaceIndex, v mesh.VertexIndex) {
	for _, l := range ls {
		l.PostSplitTriangleEvent(original, faces, v)
	}
}

func (ls listeners) PostSplitHalfEdgeEvent(original, f1, f2 mesh.FaceIndex, v mesh.VertexIndex) {
	for _, l := range ls {
		l.PostSplitHalfEdgeEvent(original, f1, f2, v)
	}
}

func (ls listeners) PostFlipEdgeEvent(f1, f2 mesh.FaceIndex) {
	for _, l := range ls {
		l.PostFlipEdgeEvent(f1, f2)
	}
}

func (ls listeners) PostInsertEvent(v mesh.VertexIndex) {
	for _, l := range ls {
		l.PostInsertEvent(v)
	}
}
