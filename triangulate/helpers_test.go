package triangulate

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestConnectivity builds a mesh from index triangles.
func newTestConnectivity(t *testing.T, points []r2.Point, triangles [][3]int) *TriConnectivity {
	t.Helper()
	m, err := mesh.NewFromTriangles(points, triangles)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	return NewTriConnectivity(m, DefaultConfig(), zaptest.NewLogger(t))
}

// unitSquare is split along the diagonal from (1, 1) to (0, 0).
func unitSquare(t *testing.T) *TriConnectivity {
	return newTestConnectivity(t,
		[]r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
	)
}

// assertDelaunay checks that no vertex lies strictly inside the circumcircle
// of a triangle it is opposite to.
func assertDelaunay(t *testing.T, m *mesh.Mesh, eps float64) {
	t.Helper()
	for e := range m.Edges() {
		if m.IsAtBoundary(e) {
			continue
		}
		f, g := m.Face(e), m.TwinFace(e)
		if !m.IsTriangle(f) || !m.IsTriangle(g) {
			continue
		}
		a, b := m.EdgePoint(m.Twin(e)), m.EdgePoint(e)
		c, d := m.EdgePoint(m.Next(e)), m.EdgePoint(m.Next(m.Twin(e)))
		assert.False(t, IsInsideCircle(a, b, c, d, eps), "edge %v-%v is not locally Delaunay", a, b)
	}
}

// assertValidTriangulation checks the structural invariants of a finished
// triangulation of n distinct points: a valid mesh of counter-clockwise
// triangles with the Delaunay property and an Euler count matching its hull.
func assertValidTriangulation(t *testing.T, m *mesh.Mesh, n int) {
	t.Helper()
	require.NoError(t, m.Validate())
	assert.Equal(t, n, m.NumberOfVertices())
	assert.Equal(t, 0, m.NumberOfHoles())

	for f := range m.Faces() {
		require.True(t, m.IsTriangle(f), "face %d is not a triangle", f)
		assert.Greater(t, m.SignedArea(f), 0.0)
	}
	assertDelaunay(t, m, 1e-7)

	hull := 0
	for range m.EdgesOfFace(mesh.Border) {
		hull++
	}
	assert.Equal(t, 2*n-2-hull, m.NumberOfFaces(), "euler count")
	assert.Equal(t, 2*(3*n-3-hull), m.NumberOfEdges(), "half-edge count")
}
