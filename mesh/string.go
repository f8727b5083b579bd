package mesh

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
)

// String dumps every slot of the mesh for debugging. Destroyed slots are red,
// boundary faces cyan.
func (m *Mesh) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mesh: %d vertices, %d half-edges, %d faces (%d holes)\n",
		m.numVertices, m.numEdges, m.numFaces, m.numHoles)

	sb.WriteString("  Vertices:\n")
	for i, v := range m.vertices {
		line := fmt.Sprintf("    %d: (%g, %g) edge=%d", i, v.point.X, v.point.Y, v.edge)
		if v.destroyed {
			line = aurora.Red(line).String()
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("  Half-edges:\n")
	for i, e := range m.edges {
		line := fmt.Sprintf("    %d: end=%d next=%d prev=%d twin=%d face=%d", i, e.end, e.next, e.prev, e.twin, e.face)
		if e.destroyed {
			line = aurora.Red(line).String()
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("  Faces:\n")
	sb.WriteString(aurora.Cyan(fmt.Sprintf("    border: edge=%d", m.border.edge)).String() + "\n")
	for i, f := range m.faces {
		line := fmt.Sprintf("    %d: edge=%d", i, f.edge)
		switch {
		case f.destroyed:
			line = aurora.Red(line).String()
		case f.boundary:
			line = aurora.Cyan(line + " hole").String()
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
