package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPoints(t *testing.T) {
	t.Run("mixed separators", func(t *testing.T) {
		points, err := readPoints(strings.NewReader("# square\n0 0\n1,0\n\n 1 ,1 \n0\t1\n"))
		require.NoError(t, err)
		assert.Equal(t, []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, points)
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := readPoints(strings.NewReader("0 0\n1 2 3\n"))
		assert.EqualError(t, err, "line 2: expected two coordinates, got 3")
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := readPoints(strings.NewReader("0 zero\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})
}

func TestRenderChart(t *testing.T) {
	points := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	var buf bytes.Buffer
	require.NoError(t, renderChart(&buf, points, [][3]r2.Point{{points[0], points[1], points[2]}}))
	assert.Contains(t, buf.String(), "Delaunay triangulation")
}
