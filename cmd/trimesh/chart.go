package main

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/geo/r2"
)

// newChart plots the input points and the edges of every triangle.
func newChart(points []r2.Point, triangles [][3]r2.Point) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Height: "800px",
			Width:  "1000px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Delaunay triangulation",
			Subtitle: "trimesh",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			FilterMode: "none",
		}),
	)

	data := make([]opts.ScatterData, 0, len(points))
	for _, p := range points {
		data = append(data, opts.ScatterData{Value: []float64{p.X, p.Y}})
	}
	scatter.AddSeries("Points", data).
		SetSeriesOptions(
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: "darkorange",
			}),
		)

	for _, triangle := range triangles {
		line := charts.NewLine()
		outline := make([]opts.LineData, 0, 4)
		for _, p := range append(triangle[:], triangle[0]) {
			outline = append(outline, opts.LineData{Value: []float64{p.X, p.Y}})
		}
		line.AddSeries("Edges", outline).
			SetSeriesOptions(
				charts.WithLineStyleOpts(opts.LineStyle{
					Width: 1,
					Color: "steelblue",
				}),
			)
		scatter.Overlap(line)
	}
	return scatter
}

func renderChart(w io.Writer, points []r2.Point, triangles [][3]r2.Point) error {
	return newChart(points, triangles).Render(w)
}
