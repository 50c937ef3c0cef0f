package model

// ReturnStatistics are the daily-return parameters estimated from history.
type ReturnStatistics struct {
	MeanDailyReturn   float64
	DailyReturnStdDev float64 // always >= 0
	LastPrice         float64
	Observations      int // number of daily returns used
}

// SimulationConfig sizes a single simulation run.
type SimulationConfig struct {
	NumSimulations int
	HorizonDays    int
}

// PathMatrix holds simulated prices. Paths[i][t-1] is path i at step t;
// step 0 is the start price and is not stored.
type PathMatrix struct {
	Paths [][]float64
}

// NumSimulations returns the number of rows.
func (m PathMatrix) NumSimulations() int { return len(m.Paths) }

// HorizonDays returns the number of steps per path.
func (m PathMatrix) HorizonDays() int {
	if len(m.Paths) == 0 {
		return 0
	}
	return len(m.Paths[0])
}

// Terminal returns the final-step price of every path.
func (m PathMatrix) Terminal() []float64 {
	terminal := make([]float64, len(m.Paths))
	for i, p := range m.Paths {
		terminal[i] = p[len(p)-1]
	}
	return terminal
}

// TerminalStats describes the terminal price distribution.
type TerminalStats struct {
	Mean   float64
	Median float64
	P05    float64
	P95    float64
	Min    float64
	Max    float64
}

// SummaryResult is the numeric outcome of a forecast.
type SummaryResult struct {
	StartPrice            float64
	ProbabilityAboveStart float64 // 0.0 ~ 1.0
	HorizonDays           int
	Terminal              []float64
	Stats                 TerminalStats
	Charts                []string // rendered artifact paths, empty if rendering was skipped or failed
}

// Bin is one histogram bucket covering [Min, Max).
// The last bucket of a histogram also includes its Max.
type Bin struct {
	Min   float64
	Max   float64
	Count float64
}
