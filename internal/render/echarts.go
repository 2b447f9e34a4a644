package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"hkstockanalyzer/internal/report"
	"hkstockanalyzer/internal/utils"
)

// EChartsHTML renders the performance chart as a self-contained dark-theme
// HTML document. Used directly, or as the page the screenshot backend
// captures.
type EChartsHTML struct {
	cfg    *utils.Config
	logger utils.Logger
}

func NewEChartsHTML(cfg *utils.Config, logger utils.Logger) *EChartsHTML {
	return &EChartsHTML{cfg: cfg, logger: logger}
}

func (r *EChartsHTML) Render(series []report.ChartSeries, at time.Time) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("no series to render")
	}
	if err := ensureOutputDir(r.cfg.Render.OutputDir); err != nil {
		return "", err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       chartTitle,
			Width:           fmt.Sprintf("%dpx", r.cfg.Render.Width),
			Height:          fmt.Sprintf("%dpx", r.cfg.Render.Height),
			BackgroundColor: "#000000",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         chartTitle,
			Subtitle:      "Analysis Date: " + at.Format("2006-01-02 15:04:05"),
			TitleStyle:    &opts.TextStyle{Color: "#ffffff", FontSize: 24},
			SubtitleStyle: &opts.TextStyle{Color: "#cccccc", FontSize: 12},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			TextStyle: &opts.TextStyle{Color: "#ffffff"},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Date",
			AxisLabel: &opts.AxisLabel{Color: "#ffffff"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Percentage Change from Entry (%)",
			AxisLabel: &opts.AxisLabel{Color: "#ffffff"},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: "#333333"}},
		}),
	)

	axis := dateAxis(series)
	line.SetXAxis(axis)

	for i, s := range series {
		color := palette[i%len(palette)]
		name := fmt.Sprintf("%s %s", s.Code, report.FormatPct(s.CurrentPct))

		data := alignToAxis(s, axis)
		line.AddSeries(name, data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 3}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}

	path := filepath.Join(r.cfg.Render.OutputDir, fmt.Sprintf("portfolio_%s.html", at.Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := line.Render(file); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	r.logger.Info("Rendered HTML chart: %s", path)
	return path, nil
}

// dateAxis builds the union of all series dates, ascending.
func dateAxis(series []report.ChartSeries) []string {
	seen := make(map[string]bool)
	var axis []string
	for _, s := range series {
		for _, d := range s.Dates {
			key := d.Format("2006-01-02")
			if !seen[key] {
				seen[key] = true
				axis = append(axis, key)
			}
		}
	}
	// Dates within a series are already ordered; the union may not be.
	sort.Strings(axis)
	return axis
}

// alignToAxis pads a series onto the shared axis, leaving gaps before its
// entry date. The entry point itself gets a visible marker at 0%.
func alignToAxis(s report.ChartSeries, axis []string) []opts.LineData {
	values := make(map[string]float64, len(s.Dates))
	for i, d := range s.Dates {
		values[d.Format("2006-01-02")] = s.Returns[i]
	}
	entry := s.EntryDate.Format("2006-01-02")

	data := make([]opts.LineData, 0, len(axis))
	for _, key := range axis {
		v, ok := values[key]
		if !ok {
			data = append(data, opts.LineData{Value: "-"})
			continue
		}
		point := opts.LineData{Value: v}
		if key == entry {
			point.Symbol = "circle"
			point.SymbolSize = 12
		}
		data = append(data, point)
	}
	return data
}
