package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"MarketForecaster/internal/model"
)

// CSVFetcher reads daily prices from a local CSV file. The header must name a
// date column ("date") and a price column ("adj_close", "adj close" or
// "close", first match wins in that order). Yahoo's CSV export works as is.
// Unparseable prices such as "null" are kept as missing and dropped later.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a fetcher for the file at path.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

var csvDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

func (f *CSVFetcher) FetchHistory(_ context.Context, symbol string, start time.Time) ([]model.OHLCV, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	return parseCSV(file, start)
}

func parseCSV(r io.Reader, start time.Time) ([]model.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	dateCol, priceCol := -1, -1
	priority := map[string]int{"adj_close": 3, "adj close": 3, "adjclose": 3, "close": 1}
	best := 0
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "date" || key == "timestamp" {
			dateCol = i
		}
		if p := priority[key]; p > best {
			best, priceCol = p, i
		}
	}
	if dateCol < 0 || priceCol < 0 {
		return nil, errors.New("csv header needs a date column and an adj_close or close column")
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(rec) <= dateCol || len(rec) <= priceCol {
			continue
		}
		ts, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[priceCol]), 64)
		if err != nil {
			price = 0
		}
		bars = append(bars, model.OHLCV{Time: ts, Close: price, AdjClose: price})
	}
	return bars, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
