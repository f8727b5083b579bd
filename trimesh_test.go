package trimesh

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/triangulate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smoke test. The internals are already tested.
func TestTriangulate(t *testing.T) {
	points := []r2.Point{
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: -1, Y: -1},
	}

	triangles, err := Triangulate(points)
	assert.NoError(t, err)
	assert.Len(t, triangles, 2)
	for _, tri := range triangles {
		assert.True(t, triangulate.IsCCW(tri[0], tri[1], tri[2], triangulate.Epsilon))
	}
}

func TestTriangulateMesh(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}, {X: 2, Y: 2}}
	m, err := TriangulateMesh(points, triangulate.WithConfig(triangulate.DefaultConfig()))
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
	assert.False(t, m.HasTombstones())
	assert.Equal(t, 5, m.NumberOfVertices())
	assert.Equal(t, 4, m.NumberOfFaces())
}

func TestTriangulateErrors(t *testing.T) {
	_, err := Triangulate(nil)
	assert.True(t, errors.Is(err, triangulate.ErrInvalidArgument))

	config := triangulate.DefaultConfig()
	config.Epsilon = -1
	_, err = Triangulate([]r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, triangulate.WithConfig(config))
	assert.True(t, errors.Is(err, triangulate.ErrInvalidArgument))
}
