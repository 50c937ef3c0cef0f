// Package render draws forecast charts to image files.
package render

import "MarketForecaster/internal/model"

// Renderer persists the fan chart and terminal-price histogram.
// Each method returns the path of the file it wrote.
type Renderer interface {
	RenderPaths(title string, series [][]float64) (string, error)
	RenderHistogram(title string, bins []model.Bin, marker float64) (string, error)
}

// NoopRenderer skips rendering entirely.
type NoopRenderer struct{}

func NewNoopRenderer() *NoopRenderer { return &NoopRenderer{} }

func (NoopRenderer) RenderPaths(string, [][]float64) (string, error) { return "", nil }

func (NoopRenderer) RenderHistogram(string, []model.Bin, float64) (string, error) { return "", nil }
