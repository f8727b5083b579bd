package dbg

import (
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/osuushi/trimesh/mesh"
)

const drawPadding = 20

// RenderMesh draws the live faces of m, with holes filled dark red and
// vertices as dots. Coordinates are scaled by scale and the y axis points up.
func RenderMesh(m *mesh.Mesh, scale float64) *gg.Context {
	bound := m.Bound()
	minX, minY := bound.X.Lo, bound.Y.Lo
	spanX, spanY := bound.X.Length(), bound.Y.Length()
	if bound.IsEmpty() {
		minX, minY, spanX, spanY = 0, 0, 0, 0
	}

	// Set up the context
	width := int(scale*spanX) + drawPadding*2
	height := int(scale*spanY) + drawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	// Line widths are in user space, so undo the scale
	lineWidth := 1 / math.Max(scale, 1e-9)

	for f := range m.Holes() {
		tracePolygon(c, m.Points(f))
		c.SetRGB(0.3, 0, 0)
		c.Fill()
	}
	for f := range m.Faces() {
		tracePolygon(c, m.Points(f))
		c.SetRGB(0, 0.3, 0)
		c.FillPreserve()
		c.SetRGB(0, 1, 1)
		c.SetLineWidth(lineWidth)
		c.Stroke()
	}
	c.SetRGB(1, 1, 0)
	for v := range m.Vertices() {
		p := m.Point(v)
		c.DrawCircle(p.X, p.Y, 2*lineWidth)
		c.Fill()
	}
	return c
}

func tracePolygon(c *gg.Context, points []r2.Point) {
	if len(points) == 0 {
		return
	}
	c.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		c.LineTo(p.X, p.Y)
	}
	c.ClosePath()
}

// DrawMesh renders m to a PNG at path.
func DrawMesh(m *mesh.Mesh, scale float64, path string) error {
	return RenderMesh(m, scale).SavePNG(path)
}

// ShowMesh renders m to a temporary file and prints it inline, for terminals
// that support it. This is for debugging purposes only.
func ShowMesh(m *mesh.Mesh, scale float64) {
	const path = "/tmp/trimesh.png"
	if err := DrawMesh(m, scale, path); err != nil {
		return
	}
	imgcat.CatFile(path, os.Stdout)
}
