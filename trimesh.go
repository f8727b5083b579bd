// Package trimesh computes two dimensional Delaunay triangulations.
//
// The heavy lifting lives in the mesh package, an index based half-edge
// structure, and the triangulate package, which inserts points incrementally
// with a choice of point locators. This package wraps both for the common case
// of turning a point set into triangles.
package trimesh

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/mesh"
	"github.com/osuushi/trimesh/triangulate"
)

type Triangle = [3]r2.Point

// Triangulate computes the Delaunay triangulation of points. Every triangle is
// returned counter-clockwise. Duplicate points are merged.
func Triangulate(points []r2.Point, opts ...triangulate.Option) (result []Triangle, err error) {
	defer func() {
		recoveredErr := triangulate.HandlePanicRecover(recover())
		if recoveredErr != nil {
			result = nil
			err = recoveredErr
		}
	}()
	m, err := TriangulateMesh(points, opts...)
	if err != nil {
		return nil, err
	}
	t := make([]Triangle, 0, m.NumberOfFaces())
	for f := range m.Faces() {
		var triangle Triangle
		for i, p := range m.Points(f) {
			triangle[i] = p
		}
		t = append(t, triangle)
	}
	return t, nil
}

// TriangulateMesh is like Triangulate but returns the mesh itself, compacted.
func TriangulateMesh(points []r2.Point, opts ...triangulate.Option) (*mesh.Mesh, error) {
	m := mesh.New()
	t, err := triangulate.NewFromPoints(m, points, opts...)
	if err != nil {
		return nil, err
	}
	if err := t.Compute(); err != nil {
		return nil, err
	}
	m.GarbageCollection()
	return m, nil
}
