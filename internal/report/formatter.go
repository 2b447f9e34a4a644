package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hkstockanalyzer/internal/performance"
)

// Ranked is one instrument's record with its rank position, ordered by
// current percentage change, best first.
type Ranked struct {
	Code   string
	Record *performance.Record
}

// ChartSeries is the chart-ready export for one instrument: the return
// trajectory plus the entry marker at (entry date, 0.0).
type ChartSeries struct {
	Code         string
	EntryDate    time.Time
	AvgCost      float64
	CurrentPrice float64
	CurrentPct   float64
	Dates        []time.Time
	Returns      []float64
}

// Rank orders records by current percentage change, descending. Ties break
// by code so output is deterministic.
func Rank(records map[string]*performance.Record) []Ranked {
	ranked := make([]Ranked, 0, len(records))
	for code, record := range records {
		ranked = append(ranked, Ranked{Code: code, Record: record})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Record.CurrentPctChange != ranked[j].Record.CurrentPctChange {
			return ranked[i].Record.CurrentPctChange > ranked[j].Record.CurrentPctChange
		}
		return ranked[i].Code < ranked[j].Code
	})
	return ranked
}

// FormatPct renders a signed percentage with exactly one decimal place,
// e.g. "+12.3%" or "-4.5%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

// Summary builds the delivery caption: timestamped header, best and worst
// performer, then one line per instrument in rank order.
func Summary(ranked []Ranked, at time.Time) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("📊 Portfolio Update %s\n\nNo performance data available.", at.Format("2006-01-02 15:04"))
	}

	best := ranked[0]
	worst := ranked[len(ranked)-1]

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Portfolio Update %s\n", at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "🏆 Best: %s %s\n", best.Code, FormatPct(best.Record.CurrentPctChange))
	fmt.Fprintf(&b, "📉 Worst: %s %s\n\n", worst.Code, FormatPct(worst.Record.CurrentPctChange))
	b.WriteString("📈 All Stocks:\n")
	for _, r := range ranked {
		fmt.Fprintf(&b, "• %s: %s\n", r.Code, FormatPct(r.Record.CurrentPctChange))
	}

	return b.String()
}

// ChartData converts ranked records into renderer input. No numeric
// computation happens here; it only selects and reshapes.
func ChartData(ranked []Ranked) []ChartSeries {
	out := make([]ChartSeries, 0, len(ranked))
	for _, r := range ranked {
		series := ChartSeries{
			Code:         r.Code,
			EntryDate:    r.Record.EntryDate,
			AvgCost:      r.Record.WeightedAvgCost,
			CurrentPrice: r.Record.CurrentPrice,
			CurrentPct:   r.Record.CurrentPctChange,
			Dates:        make([]time.Time, 0, len(r.Record.Trajectory)),
			Returns:      make([]float64, 0, len(r.Record.Trajectory)),
		}
		for _, p := range r.Record.Trajectory {
			series.Dates = append(series.Dates, p.Date)
			series.Returns = append(series.Returns, p.Pct)
		}
		out = append(out, series)
	}
	return out
}
