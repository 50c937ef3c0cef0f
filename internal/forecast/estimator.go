package forecast

import (
	"fmt"
	"math"

	"MarketForecaster/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Estimate computes the mean and sample standard deviation (n-1 denominator)
// of simple daily returns, plus the most recent price.
// Points with a missing (NaN, Inf) price are dropped first. Zero and negative
// prices are dropped too: a return cannot be taken from them, so they are
// treated as missing rather than rejected.
func Estimate(series model.HistoricalSeries) (model.ReturnStatistics, error) {
	prices := usablePrices(series)
	if len(prices) < 2 {
		return model.ReturnStatistics{}, fmt.Errorf("%w: need at least 2 prices, got %d", ErrInsufficientData, len(prices))
	}

	returns := DailyReturns(prices)
	mean, variance := stat.MeanVariance(returns, nil)
	stdDev := 0.0
	if len(returns) > 1 {
		// Rounding can leave a tiny negative variance for near-constant returns.
		stdDev = math.Sqrt(math.Max(variance, 0))
	}

	return model.ReturnStatistics{
		MeanDailyReturn:   mean,
		DailyReturnStdDev: stdDev,
		LastPrice:         prices[len(prices)-1],
		Observations:      len(returns),
	}, nil
}

// DailyReturns returns price[t]/price[t-1] - 1 for every consecutive pair.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = prices[i]/prices[i-1] - 1
	}
	return returns
}

func usablePrices(series model.HistoricalSeries) []float64 {
	prices := make([]float64, 0, len(series))
	for _, p := range series {
		if math.IsNaN(p.AdjClose) || math.IsInf(p.AdjClose, 0) || p.AdjClose <= 0 {
			continue
		}
		prices = append(prices, p.AdjClose)
	}
	return prices
}
