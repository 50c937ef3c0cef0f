package forecast

import (
	"fmt"
	"math"
	"math/rand/v2"

	"MarketForecaster/internal/model"

	"gonum.org/v1/gonum/stat/distuv"
)

// NewSource returns a deterministic random source for the given seed.
// Seed 0 returns nil, which makes Simulate draw from the process-wide generator.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		return nil
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Simulate generates cfg.NumSimulations price paths of cfg.HorizonDays steps.
// Each step draws a daily return r ~ Normal(mean, stddev) from src and compounds
// it onto the previous price: price[t] = price[t-1] * (1 + r), price[0] = LastPrice.
//
// Draws are taken path by path, so the same src seed yields the same matrix.
// A draw of -1 or below is kept as is and yields a zero or negative price;
// this is a limitation of the normal-returns model, not clamped here.
func Simulate(stats model.ReturnStatistics, cfg model.SimulationConfig, src rand.Source) (model.PathMatrix, error) {
	if cfg.NumSimulations <= 0 {
		return model.PathMatrix{}, fmt.Errorf("%w: num_simulations must be positive, got %d", ErrInvalidConfig, cfg.NumSimulations)
	}
	if cfg.HorizonDays <= 0 {
		return model.PathMatrix{}, fmt.Errorf("%w: horizon_days must be positive, got %d", ErrInvalidConfig, cfg.HorizonDays)
	}
	if !(stats.DailyReturnStdDev >= 0) || math.IsInf(stats.DailyReturnStdDev, 0) || math.IsNaN(stats.MeanDailyReturn) {
		return model.PathMatrix{}, fmt.Errorf("%w: bad return statistics mean=%v stddev=%v", ErrInvalidConfig, stats.MeanDailyReturn, stats.DailyReturnStdDev)
	}

	dist := distuv.Normal{
		Mu:    stats.MeanDailyReturn,
		Sigma: stats.DailyReturnStdDev,
		Src:   src,
	}

	n, h := cfg.NumSimulations, cfg.HorizonDays
	buf := make([]float64, n*h)
	paths := make([][]float64, n)
	for i := range paths {
		row := buf[i*h : (i+1)*h : (i+1)*h]
		price := stats.LastPrice
		for t := range row {
			price *= 1 + dist.Rand()
			row[t] = price
		}
		paths[i] = row
	}
	return model.PathMatrix{Paths: paths}, nil
}
