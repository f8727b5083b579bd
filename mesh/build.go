package mesh

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// NewFromTriangles builds a triangulated mesh from points and index triples.
// Clockwise triples are reoriented. Edges used by only one triangle form the
// boundary: the cycle through the leftmost boundary vertex becomes the
// border, every other cycle becomes a hole. Vertex and face indices follow the
// input order.
func NewFromTriangles(points []r2.Point, triangles [][3]int) (*Mesh, error) {
	m := New()
	for _, p := range points {
		m.CreateVertex(p)
	}

	type key struct{ from, to VertexIndex }
	directed := make(map[key]EdgeIndex, 3*len(triangles))
	var keys []key

	for i, tri := range triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(points) {
				return nil, errors.Wrapf(ErrInvalidArgument, "triangle %d refers to vertex %d of %d", i, idx, len(points))
			}
		}
		a, b, c := points[tri[0]], points[tri[1]], points[tri[2]]
		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}

		f := m.CreateFace(false)
		var cycle [3]EdgeIndex
		for j := 0; j < 3; j++ {
			from := VertexIndex(tri[j])
			to := VertexIndex(tri[(j+1)%3])
			if from == to {
				return nil, errors.Wrapf(ErrInvalidArgument, "triangle %d is degenerate", i)
			}
			if _, ok := directed[key{from, to}]; ok {
				return nil, errors.Wrapf(ErrInvalidArgument, "edge %d->%d is used twice in the same direction", from, to)
			}
			e := m.CreateEdge(to, f)
			directed[key{from, to}] = e
			keys = append(keys, key{from, to})
			m.SetVertexEdge(to, e)
			cycle[j] = e
		}
		for j := 0; j < 3; j++ {
			m.SetNext(cycle[j], cycle[(j+1)%3])
		}
		m.SetEdge(f, cycle[0])
	}

	// Twins, creating boundary half-edges where a triangle edge is unmatched.
	boundaryFrom := make(map[VertexIndex]EdgeIndex)
	var boundary []EdgeIndex
	for i, k := range keys {
		e := EdgeIndex(i)
		if m.edges[e].twin != NoEdge {
			continue
		}
		if t, ok := directed[key{k.to, k.from}]; ok {
			m.SetTwin(e, t)
			continue
		}
		b := m.CreateEdge(k.from, Border)
		m.SetTwin(e, b)
		if _, ok := boundaryFrom[k.to]; ok {
			return nil, errors.Wrapf(ErrInvalidArgument, "vertex %d is a boundary pinch point", k.to)
		}
		boundaryFrom[k.to] = b
		boundary = append(boundary, b)
	}
	for _, b := range boundary {
		next, ok := boundaryFrom[m.edges[b].end]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidMeshState, "boundary is not closed at vertex %d", m.edges[b].end)
		}
		m.SetNext(b, next)
	}

	// Split boundary edges into cycles and pick the outer one.
	visited := make(map[EdgeIndex]bool, len(boundary))
	var cycles [][]EdgeIndex
	outer := -1
	var leftmost r2.Point
	for _, b := range boundary {
		if visited[b] {
			continue
		}
		var cycle []EdgeIndex
		for e := b; !visited[e]; e = m.edges[e].next {
			visited[e] = true
			cycle = append(cycle, e)
			p := m.EdgePoint(e)
			if outer < 0 || p.X < leftmost.X || (p.X == leftmost.X && p.Y < leftmost.Y) {
				leftmost = p
				outer = len(cycles)
			}
		}
		cycles = append(cycles, cycle)
	}
	for i, cycle := range cycles {
		f := Border
		if i != outer {
			f = m.CreateFace(true)
		}
		for _, e := range cycle {
			m.SetFace(e, f)
		}
		m.SetEdge(f, cycle[0])
	}
	return m, nil
}
