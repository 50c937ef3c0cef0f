package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"MarketForecaster/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotRenderer renders charts with gonum/plot. The image format follows the
// file extension (png, svg, pdf, jpg).
type PlotRenderer struct {
	Dir           string
	PathsFile     string
	HistogramFile string
	Width         vg.Length
	Height        vg.Length
}

// NewPlotRenderer writes paths.png and terminal_hist.png into dir at 10x6 inches.
func NewPlotRenderer(dir string) *PlotRenderer {
	return &PlotRenderer{
		Dir:           dir,
		PathsFile:     "paths.png",
		HistogramFile: "terminal_hist.png",
		Width:         10 * vg.Inch,
		Height:        6 * vg.Inch,
	}
}

// RenderPaths draws every series as a thin translucent line over steps 0..n.
func (r *PlotRenderer) RenderPaths(title string, series [][]float64) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("render paths: no series")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Days"
	p.Y.Label.Text = "Price"
	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 220}
	grid.Horizontal.Color = color.Gray{Y: 220}
	p.Add(grid)

	for i, s := range series {
		pts := make(plotter.XYs, len(s))
		for step, v := range s {
			pts[step].X = float64(step)
			pts[step].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", fmt.Errorf("render paths: series %d: %w", i, err)
		}
		line.Width = vg.Points(0.7)
		line.Color = translucent(plotutil.Color(i), 128)
		p.Add(line)
	}
	return r.save(p, r.PathsFile)
}

// RenderHistogram draws the pre-binned counts with a dashed marker at marker.
func (r *PlotRenderer) RenderHistogram(title string, bins []model.Bin, marker float64) (string, error) {
	if len(bins) == 0 {
		return "", fmt.Errorf("render histogram: no bins")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Price"
	p.Y.Label.Text = "Frequency"

	hb := make([]plotter.HistogramBin, len(bins))
	peak := 0.0
	for i, b := range bins {
		hb[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: b.Count}
		if b.Count > peak {
			peak = b.Count
		}
	}
	hist := &plotter.Histogram{
		Bins:      hb,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: plotutil.Color(0),
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(hist)

	mark, err := plotter.NewLine(plotter.XYs{{X: marker, Y: 0}, {X: marker, Y: peak}})
	if err != nil {
		return "", fmt.Errorf("render histogram: marker: %w", err)
	}
	mark.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	mark.Width = vg.Points(1.5)
	mark.Color = color.Black
	p.Add(mark)

	return r.save(p, r.HistogramFile)
}

func (r *PlotRenderer) save(p *plot.Plot, name string) (string, error) {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.Dir, name)
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func translucent(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
