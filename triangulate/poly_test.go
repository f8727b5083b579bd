package triangulate

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// squareWithCenter is a 2x2 square fanned around its center vertex 4.
func squareWithCenter(t *testing.T) *TriConnectivity {
	return newTestConnectivity(t,
		[]r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 1, Y: 1}},
		[][3]int{{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4}},
	)
}

func everyFace(mesh.FaceIndex) bool { return true }

func TestSplit(t *testing.T) {
	tc := unitSquare(t)
	m := tc.Mesh()
	// Merge the two triangles first so that we split a quad.
	f, err := tc.RemoveSimpleLink(m.FindEdge(2, 0))
	require.NoError(t, err)
	require.Equal(t, 4, m.EdgeCount(f))

	u := tc.Split(f, r2.Point{X: 0.5, Y: 0.5})
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.NumberOfFaces())
	assert.Equal(t, 4, m.Degree(u))
	assert.Equal(t, u, m.Vertex(m.VertexEdge(u)))
	for g := range m.Faces() {
		assert.True(t, m.IsTriangle(g))
	}
}

func TestRemoveEdges(t *testing.T) {
	t.Run("adjacent faces", func(t *testing.T) {
		tc := unitSquare(t)
		m := tc.Mesh()
		merged, err := tc.RemoveEdges(0, 1, false)
		require.NoError(t, err)
		assert.Equal(t, mesh.FaceIndex(0), merged)
		assert.Equal(t, 1, m.NumberOfFaces())
		assert.Equal(t, 4, m.EdgeCount(merged))
		assert.NoError(t, m.Validate())
	})

	t.Run("border survives", func(t *testing.T) {
		tc := unitSquare(t)
		m := tc.Mesh()
		merged, err := tc.RemoveEdges(0, mesh.Border, false)
		require.NoError(t, err)
		assert.Equal(t, mesh.Border, merged)
		assert.Equal(t, 1, m.NumberOfFaces())
		assert.NoError(t, m.Validate())
	})

	t.Run("no shared edge", func(t *testing.T) {
		tc := squareWithCenter(t)
		merged, err := tc.RemoveEdges(0, 2, false)
		require.NoError(t, err)
		assert.Equal(t, mesh.NoFace, merged)
		assert.Equal(t, 4, tc.Mesh().NumberOfFaces())
	})

	t.Run("same face", func(t *testing.T) {
		tc := unitSquare(t)
		_, err := tc.RemoveEdges(1, 1, false)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestCreateHole(t *testing.T) {
	t.Run("everything", func(t *testing.T) {
		tc := squareWithCenter(t)
		m := tc.Mesh()
		hole, err := tc.CreateHole(0, everyFace, true)
		require.NoError(t, err)
		assert.True(t, m.IsHole(hole))
		assert.Equal(t, 1, m.NumberOfFaces())
		assert.Equal(t, 1, m.NumberOfHoles())
		assert.Equal(t, 4, m.EdgeCount(hole))
		assert.Equal(t, 4, m.NumberOfVertices(), "the center vertex is deleted")
		assert.NoError(t, m.Validate())
	})

	t.Run("selected faces", func(t *testing.T) {
		tc := squareWithCenter(t)
		m := tc.Mesh()
		hole, err := tc.CreateHole(0, func(f mesh.FaceIndex) bool { return f == 1 }, false)
		require.NoError(t, err)
		assert.Equal(t, 4, m.EdgeCount(hole))
		assert.Equal(t, 3, m.NumberOfFaces())
		assert.Equal(t, 5, m.NumberOfVertices())
		assert.NoError(t, m.Validate())
	})

	t.Run("boundary face", func(t *testing.T) {
		tc := squareWithCenter(t)
		_, err := tc.CreateHole(mesh.Border, everyFace, false)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestShrinkBorder(t *testing.T) {
	tc := squareWithCenter(t)
	m := tc.Mesh()
	require.NoError(t, tc.ShrinkBorder(func(f mesh.FaceIndex) bool { return f != 2 }, false))
	assert.Equal(t, 1, m.NumberOfFaces())
	assert.False(t, m.IsDestroyedFace(2))
	assert.NoError(t, m.Validate())
}

func TestMergeFacesDepth(t *testing.T) {
	tc := squareWithCenter(t)
	m := tc.Mesh()

	interior := func(f mesh.FaceIndex) bool { return !m.IsBoundary(f) }

	merged, err := tc.MergeFaces(0, interior, nil, false, 1)
	require.NoError(t, err)
	// Faces 1 and 3 are one hop away, face 2 two hops.
	assert.Equal(t, 2, m.NumberOfFaces())
	assert.NoError(t, m.Validate())

	_, err = tc.MergeFaces(merged, interior, func(f mesh.FaceIndex) bool { return f == 2 }, false, -1)
	var illegal *IllegalMeshError
	assert.ErrorAs(t, err, &illegal)
	assert.ErrorIs(t, err, ErrInvalidMeshState)
}

func TestRemoveFaceAtBoundary(t *testing.T) {
	tc := squareWithCenter(t)
	m := tc.Mesh()

	require.NoError(t, tc.RemoveFaceAtBoundary(0, mesh.Border, false))
	assert.Equal(t, 3, m.NumberOfFaces())
	assert.NoError(t, m.Validate())
	assert.ErrorIs(t, tc.RemoveFaceAtBoundary(mesh.Border, mesh.Border, false), ErrInvalidArgument)

	t.Run("face away from the boundary", func(t *testing.T) {
		// A triangle with a smaller one inside, joined by a ring of six.
		m, err := mesh.NewFromTriangles(
			[]r2.Point{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 3, Y: 6}, {X: 2, Y: 1}, {X: 4, Y: 1}, {X: 3, Y: 3}},
			[][3]int{{0, 1, 4}, {0, 4, 3}, {1, 2, 5}, {1, 5, 4}, {2, 0, 3}, {2, 3, 5}, {3, 4, 5}},
		)
		require.NoError(t, err)
		core, logs := observer.New(zap.WarnLevel)
		tc := NewTriConnectivity(m, DefaultConfig(), zap.New(core))

		inner := mesh.FaceIndex(6)
		require.NoError(t, tc.RemoveFaceAtBoundary(inner, mesh.Border, false))
		assert.Equal(t, 7, m.NumberOfFaces())
		assert.False(t, m.IsDestroyedFace(inner))
		assert.NoError(t, m.Validate())

		warnings := logs.FilterMessage("face is not adjacent to the boundary, nothing removed").All()
		require.Len(t, warnings, 1)
		assert.Equal(t, zap.WarnLevel, warnings[0].Level)
		assert.EqualValues(t, inner, warnings[0].ContextMap()["face"])
	})
}

func TestSplitFaceByDiagonal(t *testing.T) {
	tc := unitSquare(t)
	m := tc.Mesh()
	f, err := tc.RemoveSimpleLink(m.FindEdge(0, 2))
	require.NoError(t, err)

	e1 := m.FindEdge(0, 1)
	e2 := m.FindEdge(2, 3)
	g, err := tc.SplitFaceByDiagonal(e1, e2)
	require.NoError(t, err)
	assert.Equal(t, f, m.Face(e1))
	assert.Equal(t, g, m.Face(e2))
	assert.True(t, m.IsTriangle(f))
	assert.True(t, m.IsTriangle(g))
	assert.NotEqual(t, mesh.NoEdge, m.FindEdge(1, 3))
	assert.NoError(t, m.Validate())

	_, err = tc.SplitFaceByDiagonal(m.FindEdge(0, 1), m.FindEdge(1, 3))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = tc.SplitFaceByDiagonal(e1, e2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTriangulateFace(t *testing.T) {
	tc := squareWithCenter(t)
	m := tc.Mesh()
	hole, err := tc.CreateHole(0, everyFace, true)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	_, err = tc.TriangulateFace(hole)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	tc = unitSquare(t)
	m = tc.Mesh()
	f, err := tc.RemoveSimpleLink(m.FindEdge(2, 0))
	require.NoError(t, err)
	faces, err := tc.TriangulateFace(f)
	require.NoError(t, err)
	assert.Len(t, faces, 2)
	assert.Equal(t, f, faces[0])
	for _, g := range faces {
		assert.True(t, m.IsTriangle(g))
	}
	assert.NoError(t, m.Validate())
}
