// Package mesh implements a compact, array-indexed half-edge data structure
// for planar polygon meshes.
//
// Every element lives in a slice owned by the Mesh and is referred to by a
// typed index. Destroying an element only tombstones it; indices stay stable
// until GarbageCollection or ArrangeMemory compacts the storage, at which
// point every cross reference is remapped.
package mesh

import (
	"sync"

	"github.com/golang/geo/r2"
)

// VertexIndex refers to a vertex slot of a Mesh.
type VertexIndex int32

// EdgeIndex refers to a half-edge slot of a Mesh.
type EdgeIndex int32

// FaceIndex refers to a face slot of a Mesh.
type FaceIndex int32

const (
	NoVertex VertexIndex = -1
	NoEdge   EdgeIndex   = -1

	// Border is the single unbounded face surrounding the mesh. It is not
	// stored in the face slice, which is why it is -1 in exported buffers.
	Border FaceIndex = -1
	NoFace FaceIndex = -2
)

type vertex struct {
	point     r2.Point
	edge      EdgeIndex
	down      VertexIndex
	destroyed bool
	lock      *sync.Mutex
}

// A half-edge ends at vertex end. Its start is the end of its twin.
type halfEdge struct {
	end       VertexIndex
	next      EdgeIndex
	prev      EdgeIndex
	twin      EdgeIndex
	face      FaceIndex
	destroyed bool
	data      any
}

type face struct {
	edge      EdgeIndex
	boundary  bool
	destroyed bool
	data      any
}

func newVertex(p r2.Point) vertex {
	return vertex{point: p, edge: NoEdge, down: NoVertex, lock: &sync.Mutex{}}
}
