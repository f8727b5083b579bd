package triangulate

import (
	"embed"
	"log"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/golang/geo/r2"
)

// This file reads point sets from the svg fixtures in testdata/. It is not a
// real svg parser: every <circle> contributes its center and every <polygon>
// its corners, in document order. If anything goes wrong, it dies.
//
// Fixtures are available by name, sans extension.

//go:embed testdata/*.svg
var fixtures embed.FS

func LoadFixture(name string) []r2.Point {
	fixture, err := fixtures.Open("testdata/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}

	defer fixture.Close()
	rootEl, err := svgparser.Parse(fixture, true)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}

	var points []r2.Point
	for _, polygonEl := range rootEl.FindAll("polygon") {
		for _, pointString := range strings.Split(polygonEl.Attributes["points"], " ") {
			if pointString == "" {
				continue
			}
			coordinates := strings.Split(pointString, ",")
			if len(coordinates) != 2 {
				log.Fatalf("Invalid point string %q", pointString)
			}
			points = append(points, r2.Point{X: parseFloat(coordinates[0]), Y: parseFloat(coordinates[1])})
		}
	}
	for _, circleEl := range rootEl.FindAll("circle") {
		points = append(points, r2.Point{
			X: parseFloat(circleEl.Attributes["cx"]),
			Y: parseFloat(circleEl.Attributes["cy"]),
		})
	}
	if len(points) == 0 {
		log.Fatalf("No points found in fixture %q", name)
	}
	return points
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Fatalf("Invalid coordinate %q: %v", s, err)
	}
	return f
}
