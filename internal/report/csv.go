package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harshul/nsequant/internal/contracts"
)

// WriteSeriesCSV writes a chained portfolio series as date,value rows.
// Invalid points are emitted with an empty value cell so downstream tools
// see the gap instead of a zero.
func WriteSeriesCSV(w io.Writer, series []contracts.SeriesPoint) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "value"}); err != nil {
		return err
	}
	for _, p := range series {
		value := ""
		if p.Valid {
			value = strconv.FormatFloat(p.Value, 'f', 6, 64)
		}
		if err := cw.Write([]string{p.Date.Format("2006-01-02"), value}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePeriodsCSV writes one row per holding period: start, end, return
// and the held symbols.
func WritePeriodsCSV(w io.Writer, periods []contracts.PeriodResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"start", "end", "return_pct", "symbols"}); err != nil {
		return err
	}
	for _, p := range periods {
		row := []string{
			p.Start.Format("2006-01-02"),
			p.End.Format("2006-01-02"),
			fmt.Sprintf("%.4f", p.ReturnPct),
			strings.Join(p.Symbols, " "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
