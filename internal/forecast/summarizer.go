package forecast

import (
	"fmt"
	"math"
	"slices"

	"MarketForecaster/internal/model"

	"gonum.org/v1/gonum/stat"
)

// DefaultHistogramBins is the bin count used when none is configured.
const DefaultHistogramBins = 50

// Summarize computes the terminal distribution of paths and the fraction of
// paths that finish strictly above startPrice. Ties do not count as above.
func Summarize(paths model.PathMatrix, startPrice float64) (model.SummaryResult, error) {
	if paths.NumSimulations() == 0 || paths.HorizonDays() == 0 {
		return model.SummaryResult{}, fmt.Errorf("%w: empty path matrix", ErrInvalidConfig)
	}

	terminal := paths.Terminal()
	above := 0
	for _, p := range terminal {
		if p > startPrice {
			above++
		}
	}

	return model.SummaryResult{
		StartPrice:            startPrice,
		ProbabilityAboveStart: float64(above) / float64(len(terminal)),
		HorizonDays:           paths.HorizonDays(),
		Terminal:              terminal,
		Stats:                 terminalStats(terminal),
	}, nil
}

func terminalStats(terminal []float64) model.TerminalStats {
	sorted := slices.Clone(terminal)
	slices.Sort(sorted)
	return model.TerminalStats{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P05:    stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// FanSeries returns the first n paths in generation order, each with
// startPrice prepended as step 0. n is clamped to [1, NumSimulations].
func FanSeries(paths model.PathMatrix, startPrice float64, n int) [][]float64 {
	total := paths.NumSimulations()
	if total == 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	if n > total {
		n = total
	}

	series := make([][]float64, n)
	for i := 0; i < n; i++ {
		line := make([]float64, 0, len(paths.Paths[i])+1)
		line = append(line, startPrice)
		line = append(line, paths.Paths[i]...)
		series[i] = line
	}
	return series
}

// HistogramBins splits values into equal-width bins spanning [min, max].
// The last bin includes max. A zero-width range is widened to [v-0.5, v+0.5].
// bins <= 0 uses DefaultHistogramBins.
func HistogramBins(values []float64, bins int) []model.Bin {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	dividers := make([]float64, bins+1)
	for i := range dividers {
		dividers[i] = lo + float64(i)*width
	}
	// stat.Histogram wants the top divider strictly above every value.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]model.Bin, bins)
	for i := range out {
		out[i] = model.Bin{Min: dividers[i], Max: dividers[i+1], Count: counts[i]}
	}
	out[bins-1].Max = hi
	return out
}
