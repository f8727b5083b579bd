package mesh

import "github.com/pkg/errors"

// Validate walks every live element and checks the half-edge invariants:
// twin and next/prev symmetry, consistent face cycles, live anchors and the
// boundary flags. It returns the first violation found.
func (m *Mesh) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidMeshState, format, args...)
	}

	for e := range m.Edges() {
		he := &m.edges[e]
		if m.IsDestroyedEdge(he.twin) {
			return invalid("half-edge %d has a destroyed twin %d", e, he.twin)
		}
		if m.edges[he.twin].twin != e {
			return invalid("half-edge %d and its twin %d don't refer to each other", e, he.twin)
		}
		if he.twin == e {
			return invalid("half-edge %d is its own twin", e)
		}
		if m.IsDestroyedEdge(he.next) || m.IsDestroyedEdge(he.prev) {
			return invalid("half-edge %d links to a destroyed neighbour", e)
		}
		if m.edges[he.next].prev != e {
			return invalid("prev(next(%d)) != %d", e, e)
		}
		if m.edges[he.prev].next != e {
			return invalid("next(prev(%d)) != %d", e, e)
		}
		if m.IsDestroyedVertex(he.end) {
			return invalid("half-edge %d ends at destroyed vertex %d", e, he.end)
		}
		if he.face != Border && m.IsDestroyedFace(he.face) {
			return invalid("half-edge %d borders destroyed face %d", e, he.face)
		}
		if m.edges[he.next].face != he.face {
			return invalid("half-edge %d and its successor border different faces", e)
		}
		if m.edges[he.twin].end == he.end {
			return invalid("half-edge %d is degenerate", e)
		}
	}

	checkCycle := func(f FaceIndex) error {
		start := m.face(f).edge
		if m.IsDestroyedEdge(start) {
			return invalid("face %d has no live anchor edge", f)
		}
		if m.edges[start].face != f {
			return invalid("anchor edge %d of face %d borders face %d", start, f, m.edges[start].face)
		}
		steps := 0
		for e := m.edges[start].next; e != start; e = m.edges[e].next {
			if m.edges[e].face != f {
				return invalid("edge %d in the cycle of face %d borders face %d", e, f, m.edges[e].face)
			}
			steps++
			if steps > len(m.edges) {
				return invalid("the cycle of face %d does not close", f)
			}
		}
		if steps < 2 && !m.face(f).boundary {
			return invalid("face %d has fewer than three edges", f)
		}
		if !m.face(f).boundary && m.SignedArea(f) <= 0 {
			return invalid("face %d is not counter-clockwise", f)
		}
		return nil
	}

	for f := range m.AllFaces() {
		if err := checkCycle(f); err != nil {
			return err
		}
	}
	if m.border.edge != NoEdge {
		if err := checkCycle(Border); err != nil {
			return err
		}
	}

	for v := range m.Vertices() {
		e := m.vertices[v].edge
		if e == NoEdge {
			continue
		}
		if m.IsDestroyedEdge(e) {
			return invalid("vertex %d has destroyed anchor edge %d", v, e)
		}
		if m.edges[e].end != v {
			return invalid("anchor edge %d of vertex %d ends at %d", e, v, m.edges[e].end)
		}
	}
	return nil
}

// IsValid reports whether Validate finds no violation.
func (m *Mesh) IsValid() bool {
	return m.Validate() == nil
}

// SignedArea is the shoelace area of f, positive for counter-clockwise faces.
func (m *Mesh) SignedArea(f FaceIndex) float64 {
	var area float64
	for e := range m.EdgesOfFace(f) {
		a := m.EdgePoint(m.edges[e].prev)
		b := m.EdgePoint(e)
		area += a.Cross(b)
	}
	return area / 2
}
