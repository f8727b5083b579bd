// Command trimesh computes the Delaunay triangulation of a point set.
//
// Points are read one per line from a file or stdin. The triangulation
// statistics are printed to stdout, and the result can be written as an HTML
// chart or a PNG image.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/geo/r2"
	"github.com/osuushi/trimesh/dbg"
	"github.com/osuushi/trimesh/internal/logging"
	"github.com/osuushi/trimesh/mesh"
	"github.com/osuushi/trimesh/triangulate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("trimesh", "Delaunay triangulation of a point set.")

	configPath = app.Flag("config", "YAML configuration file.").Short('c').ExistingFile()
	locator    = app.Flag("locator", "Point locator to use.").Short('l').Enum(triangulate.LocatorNames()...)
	seed       = app.Flag("seed", "Random seed. Zero keeps the configured seed.").Int64()
	input      = app.Flag("input", "Point file, one \"x y\" pair per line. Reads stdin if omitted.").Short('i').ExistingFile()
	htmlPath   = app.Flag("html", "Write an HTML chart of the triangulation.").String()
	pngPath    = app.Flag("png", "Write a PNG image of the triangulation.").String()
	scale      = app.Flag("scale", "Pixels per unit for the PNG image.").Default("1").Float64()
	logLevel   = app.Flag("log-level", "Log level.").Default("info").Enum("debug", "info", "warn", "error")
)

func main() {
	app.Version("0.1.0")
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New(os.Stderr, *logLevel)
	app.FatalIfError(err, "")
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("triangulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func loadConfig() (triangulate.Config, error) {
	config := triangulate.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			return config, errors.Wrap(err, "opening config")
		}
		defer f.Close()
		if config, err = triangulate.LoadConfig(f); err != nil {
			return config, errors.Wrapf(err, "loading %s", *configPath)
		}
	}
	// Flags win over the file.
	if *locator != "" {
		if err := config.Locator.UnmarshalText([]byte(*locator)); err != nil {
			return config, err
		}
	}
	if *seed != 0 {
		config.Seed = *seed
	}
	return config, config.Validate()
}

func readInput() ([]r2.Point, error) {
	var r io.Reader = os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			return nil, errors.Wrap(err, "opening input")
		}
		defer f.Close()
		r = f
	}
	return readPoints(r)
}

func run(logger *zap.Logger) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	points, err := readInput()
	if err != nil {
		return err
	}
	if len(points) < 3 {
		return errors.Errorf("need at least 3 points, got %d", len(points))
	}
	logger.Info("read points", zap.Int("count", len(points)), zap.Stringer("locator", config.Locator))

	m := mesh.New()
	t, err := triangulate.NewFromPoints(m, points,
		triangulate.WithConfig(config),
		triangulate.WithLogger(logger))
	if err != nil {
		return err
	}
	start := time.Now()
	if err := t.Compute(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "triangulation produced an invalid mesh")
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		for f := range m.Faces() {
			logger.Debug("face", zap.String("name", dbg.Name(f)), zap.Any("points", m.Points(f)))
		}
	}

	fmt.Printf("vertices:  %d\n", m.NumberOfVertices())
	fmt.Printf("edges:     %d\n", m.NumberOfEdges()/2)
	fmt.Printf("triangles: %d\n", m.NumberOfFaces())
	fmt.Printf("locator:   %s\n", config.Locator)
	if h, ok := t.Locator().(*triangulate.DelaunayHierarchyLocator); ok {
		fmt.Printf("levels:    %d\n", h.Levels())
	}
	fmt.Printf("elapsed:   %s\n", elapsed)

	if *htmlPath != "" {
		f, err := os.Create(*htmlPath)
		if err != nil {
			return errors.Wrap(err, "creating chart")
		}
		defer f.Close()
		if err := renderChart(f, points, t.Triangles()); err != nil {
			return errors.Wrap(err, "rendering chart")
		}
		logger.Info("wrote chart", zap.String("path", *htmlPath))
	}
	if *pngPath != "" {
		if err := dbg.DrawMesh(m, *scale, *pngPath); err != nil {
			return errors.Wrap(err, "drawing mesh")
		}
		logger.Info("wrote image", zap.String("path", *pngPath))
	}
	return nil
}
