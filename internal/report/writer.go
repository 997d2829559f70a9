package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/harshul/nsequant/internal/contracts"
	"github.com/harshul/nsequant/internal/engine"
	"github.com/harshul/nsequant/pkg/logger"
)

// Writer emits backtest results as plain-text reports.
// ⭐ SSOT: the results_<year>.txt format lives here only
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer rooted at dir. The directory is
// created on first write.
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{dir: dir, logger: log}
}

// yearReport is one calendar year's slice of a run.
type yearReport struct {
	year    int
	periods []contracts.PeriodResult
	series  []contracts.SeriesPoint
	summary contracts.Summary
}

// WriteYearly splits a result into calendar years by period start date and
// writes one results_<year>.txt per year. The yearly total return and
// drawdown are computed over that year's slice of the chained series, so
// compounding from earlier years never bleeds into a year's figures.
func (w *Writer) WriteYearly(result *engine.Result) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}

	for _, yr := range splitByYear(result) {
		path := filepath.Join(w.dir, fmt.Sprintf("results_%d.txt", yr.year))
		if err := os.WriteFile(path, []byte(formatYear(yr)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		w.logger.WithFields(map[string]interface{}{
			"file":             path,
			"periods":          len(yr.periods),
			"total_return_pct": fmt.Sprintf("%.2f", yr.summary.TotalReturnPct),
			"max_drawdown_pct": fmt.Sprintf("%.2f", yr.summary.MaxDrawdownPct),
		}).Info("Yearly results written")
	}

	return nil
}

func splitByYear(result *engine.Result) []yearReport {
	byYear := make(map[int]*yearReport)
	for _, p := range result.Periods {
		y := p.Start.Year()
		yr, ok := byYear[y]
		if !ok {
			yr = &yearReport{year: y}
			byYear[y] = yr
		}
		yr.periods = append(yr.periods, p)
	}

	for _, point := range result.Series {
		if yr, ok := byYear[yearOf(point.Date, byYear)]; ok {
			yr.series = append(yr.series, point)
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	reports := make([]yearReport, 0, len(years))
	for _, y := range years {
		yr := byYear[y]
		yr.summary = yearSummary(yr.series)
		reports = append(reports, *yr)
	}
	return reports
}

// yearOf attributes a series point to the year of the period that produced
// it: a January point from a December-anchored period belongs to December's
// year. Falls back to the calendar year when no earlier year claims it.
func yearOf(date time.Time, byYear map[int]*yearReport) int {
	y := date.Year()
	if _, ok := byYear[y]; ok {
		return y
	}
	if _, ok := byYear[y-1]; ok {
		return y - 1
	}
	return y
}

// yearSummary computes total return and drawdown over one year's series
// slice. Unlike engine.Summarize this tolerates a single point (flat year)
// because a year slice is a window, not a full run.
func yearSummary(series []contracts.SeriesPoint) contracts.Summary {
	var valid []float64
	for _, p := range series {
		if p.Valid {
			valid = append(valid, p.Value)
		}
	}
	if len(valid) < 2 {
		return contracts.Summary{}
	}

	summary := contracts.Summary{
		TotalReturnPct: (valid[len(valid)-1]/valid[0] - 1) * 100,
	}

	peak := valid[0]
	for _, v := range valid {
		if v > peak {
			peak = v
		}
		if dd := (v - peak) / peak * 100; dd < summary.MaxDrawdownPct {
			summary.MaxDrawdownPct = dd
		}
	}
	return summary
}

func formatYear(yr yearReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Year: %d\n\n", yr.year)

	b.WriteString("Monthly Portfolio:\n")
	for i, p := range yr.periods {
		fmt.Fprintf(&b, "Month %d: %s\n", i+1, strings.Join(p.Symbols, ", "))
	}

	b.WriteString("\nMonthly Returns:\n")
	for _, p := range yr.periods {
		fmt.Fprintf(&b, "%s: %.2f%%\n", p.Start.Format("2006-01-02"), p.ReturnPct)
	}

	fmt.Fprintf(&b, "\nTotal Return: %.2f%%\n", yr.summary.TotalReturnPct)
	fmt.Fprintf(&b, "Maximum Drawdown: %.2f%%\n", yr.summary.MaxDrawdownPct)

	return b.String()
}
