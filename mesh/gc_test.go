package mesh

import (
	"fmt"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faceShapes describes every face by its sorted corner points, independent of
// storage order.
func faceShapes(m *Mesh) []string {
	var shapes []string
	for f := range m.AllFaces() {
		var corners []string
		for _, p := range m.Points(f) {
			corners = append(corners, fmt.Sprintf("(%g,%g)", p.X, p.Y))
		}
		sort.Strings(corners)
		kind := "face"
		if m.IsHole(f) {
			kind = "hole"
		}
		shapes = append(shapes, fmt.Sprint(kind, corners))
	}
	sort.Strings(shapes)
	return shapes
}

func TestGarbageCollection(t *testing.T) {
	m := unitSquare(t)
	mergeDiagonal(t, m)
	shapes := faceShapes(m)

	m.GarbageCollection()
	require.NoError(t, m.Validate())
	assert.False(t, m.HasTombstones())
	assert.Equal(t, 4, m.VertexCapacity())
	assert.Equal(t, 8, m.EdgeCapacity())
	assert.Equal(t, 1, m.FaceCapacity())
	assert.Equal(t, 4, m.EdgeCount(0))
	assert.Equal(t, shapes, faceShapes(m))
	assert.Equal(t, 4, m.EdgeCount(Border))

	dump := m.String()
	m.GarbageCollection()
	assert.Equal(t, dump, m.String(), "a second collection changes nothing")
}

func TestGarbageCollectionDropsVertices(t *testing.T) {
	m := unitSquare(t)
	v := m.CreateVertex(m.Point(2).Mul(3))
	m.DestroyVertex(v)
	assert.Equal(t, 5, m.VertexCapacity())

	m.GarbageCollection()
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.VertexCapacity())
	for v := range m.Vertices() {
		e := m.VertexEdge(v)
		assert.Equal(t, v, m.Vertex(e))
	}
}

func TestSpatialSort(t *testing.T) {
	m := squareWithHole(t)
	shapes := faceShapes(m)

	m.SpatialSort()
	require.NoError(t, m.Validate())
	assert.Equal(t, shapes, faceShapes(m))
	assert.Equal(t, 9, m.NumberOfFaces())
	assert.Equal(t, 1, m.NumberOfHoles())
	assert.Equal(t, 8, m.NumberOfVertices())
	assert.Equal(t, 4, m.EdgeCount(Border))
}

func TestArrangeMemory(t *testing.T) {
	m := squareWithHole(t)
	first := m.Points(3)
	shapes := faceShapes(m)

	m.ArrangeMemory([]FaceIndex{3, Border, 3, 0})
	require.NoError(t, m.Validate())
	assert.Equal(t, shapes, faceShapes(m))
	assert.Equal(t, 9, m.FaceCapacity())
	assert.ElementsMatch(t, first, m.Points(0))
}

func TestHilbertKey(t *testing.T) {
	m := squareWithHole(t)
	bound := m.Bound()

	// Neighbouring quadrants are adjacent on the curve.
	lowerLeft := hilbertKey(bound, m.Point(0))
	upperLeft := hilbertKey(bound, m.Point(3))
	upperRight := hilbertKey(bound, m.Point(2))
	lowerRight := hilbertKey(bound, m.Point(1))
	assert.Less(t, lowerLeft, upperLeft)
	assert.Less(t, upperLeft, upperRight)
	assert.Less(t, upperRight, lowerRight)
}

func TestForEachFaceParallel(t *testing.T) {
	m := squareWithHole(t)
	for _, workers := range []int{0, 1, 4} {
		var count int64
		m.ForEachFaceParallel(workers, func(f FaceIndex) {
			atomic.AddInt64(&count, 1)
			assert.False(t, m.IsHole(f))
		})
		assert.EqualValues(t, 8, count, "workers=%d", workers)
	}
}
