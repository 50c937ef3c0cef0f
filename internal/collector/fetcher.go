package collector

import (
	"context"
	"time"

	"MarketForecaster/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchHistory returns daily bars for symbol from start up to now.
	FetchHistory(ctx context.Context, symbol string, start time.Time) ([]model.OHLCV, error)
	Name() string
}
