package forecast

import "errors"

var (
	// ErrInsufficientData is returned when fewer than two usable prices remain.
	ErrInsufficientData = errors.New("forecast: insufficient price data")

	// ErrInvalidConfig is returned for non-positive simulation sizes or unusable statistics.
	ErrInvalidConfig = errors.New("forecast: invalid configuration")
)
