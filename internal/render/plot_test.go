package render

import (
	"os"
	"path/filepath"
	"testing"

	"MarketForecaster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotRenderer_Paths(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := NewPlotRenderer(dir)

	path, err := r.RenderPaths("TEST Monte Carlo Simulation (3 trading days)", [][]float64{
		{100, 101, 102, 101},
		{100, 99, 98, 99.5},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "paths.png"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotRenderer_Histogram(t *testing.T) {
	r := NewPlotRenderer(t.TempDir())
	r.HistogramFile = "hist.svg"

	bins := []model.Bin{
		{Min: 90, Max: 95, Count: 3},
		{Min: 95, Max: 100, Count: 10},
		{Min: 100, Max: 105, Count: 7},
	}
	path, err := r.RenderHistogram("Distribution of Terminal Prices after 3 days", bins, 100)
	require.NoError(t, err)
	assert.Equal(t, ".svg", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestPlotRenderer_Empty(t *testing.T) {
	r := NewPlotRenderer(t.TempDir())
	_, err := r.RenderPaths("x", nil)
	assert.Error(t, err)
	_, err = r.RenderHistogram("x", nil, 1)
	assert.Error(t, err)
}

func TestPlotRenderer_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	r := NewPlotRenderer(filepath.Join(file, "sub"))
	_, err := r.RenderPaths("x", [][]float64{{1, 2}})
	assert.Error(t, err)
}
