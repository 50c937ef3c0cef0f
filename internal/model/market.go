package model

import "time"

// OHLCV represents a single candlestick bar.
// AdjClose is zero when the source does not report an adjusted close.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PricePoint is one adjusted-close observation.
type PricePoint struct {
	Time     time.Time
	AdjClose float64
}

// HistoricalSeries holds adjusted closes ordered by strictly increasing date.
type HistoricalSeries []PricePoint

// Prices returns the adjusted closes in series order.
func (s HistoricalSeries) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.AdjClose
	}
	return prices
}

// Last returns the most recent point. The series must not be empty.
func (s HistoricalSeries) Last() PricePoint {
	return s[len(s)-1]
}

// SeriesFromBars converts bars to a series, preferring AdjClose over Close.
func SeriesFromBars(bars []OHLCV) HistoricalSeries {
	series := make(HistoricalSeries, len(bars))
	for i, b := range bars {
		price := b.AdjClose
		if price == 0 {
			price = b.Close
		}
		series[i] = PricePoint{Time: b.Time, AdjClose: price}
	}
	return series
}
