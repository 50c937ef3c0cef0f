package notifier

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"MarketForecaster/internal/model"
)

// FormatConsoleSummary returns the console summary: start price, probability
// of finishing higher, and which chart files were written.
func FormatConsoleSummary(sum *model.SummaryResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Start price: %.2f\n", sum.StartPrice))
	b.WriteString(fmt.Sprintf("Probability price is higher after %d days: %.1f%%\n",
		sum.HorizonDays, sum.ProbabilityAboveStart*100))
	if len(sum.Charts) > 0 {
		names := make([]string, len(sum.Charts))
		for i, c := range sum.Charts {
			names[i] = filepath.Base(c)
		}
		b.WriteString(fmt.Sprintf("Saved plots: %s\n", strings.Join(names, ", ")))
	}
	return b.String()
}

// FormatReport formats a forecast into a Telegram HTML message.
func FormatReport(ticker string, stats *model.ReturnStatistics, cfg model.SimulationConfig, sum *model.SummaryResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎲 <b>%s Monte Carlo forecast</b> | %s\n\n", ticker, time.Now().Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Start price: %.2f\n", sum.StartPrice))
	b.WriteString(fmt.Sprintf("Daily return: mean %+.4f%%, std %.4f%% (%d obs)\n\n",
		stats.MeanDailyReturn*100, stats.DailyReturnStdDev*100, stats.Observations))

	b.WriteString(fmt.Sprintf("📈 <b>After %d days</b> (%d paths)\n", cfg.HorizonDays, cfg.NumSimulations))
	b.WriteString(fmt.Sprintf("  P(higher): %.1f%%\n", sum.ProbabilityAboveStart*100))
	b.WriteString(fmt.Sprintf("  Median: %.2f | Mean: %.2f\n", sum.Stats.Median, sum.Stats.Mean))
	b.WriteString(fmt.Sprintf("  5%%–95%%: %.2f – %.2f\n", sum.Stats.P05, sum.Stats.P95))
	b.WriteString(fmt.Sprintf("  Range: %.2f – %.2f\n", sum.Stats.Min, sum.Stats.Max))

	return b.String()
}
