package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"MarketForecaster/internal/model"

	log "github.com/sirupsen/logrus"
)

// ErrDataUnavailable is returned when the source yields no usable prices.
var ErrDataUnavailable = errors.New("collector: historical data unavailable")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, start time.Time) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	// a start date in the future yields no bars
	days := max(int(time.Since(start).Hours()/24), 0)
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		// small deterministic oscillation so the return series has spread
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.01*math.Sin(float64(i)))
		bars[i] = model.OHLCV{
			Time:     time.Now().AddDate(0, 0, -(count - i)),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   1000000,
		}
	}
	return bars
}

// Collector fetches and cleans the historical series for one symbol.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Start   time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, start time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Start: start}
}

// Collect fetches daily bars and returns the cleaned adjusted-close series.
// Points with missing or non-positive prices are dropped silently, as are
// points before Start; the rest are ordered by date with one point per day.
func (c *Collector) Collect(ctx context.Context) (model.HistoricalSeries, error) {
	bars, err := c.Fetcher.FetchHistory(ctx, c.Symbol, c.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %s via %s: %w", ErrDataUnavailable, c.Symbol, c.Fetcher.Name(), err)
	}

	series := Clean(model.SeriesFromBars(bars), c.Start)
	if dropped := len(bars) - len(series); dropped > 0 {
		log.WithField("symbol", c.Symbol).Debugf("dropped %d unusable bars", dropped)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s via %s returned no usable prices since %s",
			ErrDataUnavailable, c.Symbol, c.Fetcher.Name(), c.Start.Format("2006-01-02"))
	}

	log.WithFields(log.Fields{
		"symbol": c.Symbol,
		"source": c.Fetcher.Name(),
		"points": len(series),
		"first":  series[0].Time.Format("2006-01-02"),
		"last":   series.Last().Time.Format("2006-01-02"),
	}).Info("historical prices collected")
	return series, nil
}

// Clean drops missing and non-positive prices and points before start,
// sorts by time and keeps the latest point for each calendar day.
func Clean(series model.HistoricalSeries, start time.Time) model.HistoricalSeries {
	out := make(model.HistoricalSeries, 0, len(series))
	for _, p := range series {
		if math.IsNaN(p.AdjClose) || math.IsInf(p.AdjClose, 0) || p.AdjClose <= 0 {
			continue
		}
		if !start.IsZero() && p.Time.Before(start) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	deduped := out[:0]
	for _, p := range out {
		if n := len(deduped); n > 0 && sameDay(deduped[n-1].Time, p.Time) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
