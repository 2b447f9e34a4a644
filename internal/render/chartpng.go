package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hkstockanalyzer/internal/report"
	"hkstockanalyzer/internal/utils"
)

// ChartPNG renders the performance chart directly to a PNG with a raster
// chart engine. No browser, no external renderer; works on bare servers.
type ChartPNG struct {
	cfg    *utils.Config
	logger utils.Logger
}

func NewChartPNG(cfg *utils.Config, logger utils.Logger) *ChartPNG {
	return &ChartPNG{cfg: cfg, logger: logger}
}

func (r *ChartPNG) Render(series []report.ChartSeries, at time.Time) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("no series to render")
	}
	if err := ensureOutputDir(r.cfg.Render.OutputDir); err != nil {
		return "", err
	}

	black := drawing.ColorBlack
	white := drawing.ColorWhite
	grid := drawing.ColorFromHex("333333")

	var chartSeries []chart.Series
	for i, s := range series {
		color := drawing.ColorFromHex(strings.TrimPrefix(palette[i%len(palette)], "#"))

		chartSeries = append(chartSeries, chart.TimeSeries{
			Name:    fmt.Sprintf("%s %s", s.Code, report.FormatPct(s.CurrentPct)),
			XValues: s.Dates,
			YValues: s.Returns,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 3,
			},
		})

		// Entry marker at exactly 0%.
		chartSeries = append(chartSeries, chart.TimeSeries{
			XValues: []time.Time{s.EntryDate},
			YValues: []float64{0},
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    color,
				DotWidth:    6,
			},
		})
	}

	graph := chart.Chart{
		Title:      chartTitle,
		TitleStyle: chart.Style{FontColor: white, FontSize: 18},
		Width:      r.cfg.Render.Width,
		Height:     r.cfg.Render.Height,
		Background: chart.Style{FillColor: black},
		Canvas:     chart.Style{FillColor: black},
		XAxis: chart.XAxis{
			Style:          chart.Style{FontColor: white, StrokeColor: white},
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
			GridMajorStyle: chart.Style{StrokeColor: grid, StrokeWidth: 1},
		},
		YAxis: chart.YAxis{
			Name:           "Percentage Change from Entry (%)",
			NameStyle:      chart.Style{FontColor: white},
			Style:          chart.Style{FontColor: white, StrokeColor: white},
			GridMajorStyle: chart.Style{StrokeColor: grid, StrokeWidth: 1},
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	path := filepath.Join(r.cfg.Render.OutputDir, fmt.Sprintf("portfolio_%s.png", at.Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	r.logger.Info("Rendered PNG chart: %s", path)
	return path, nil
}
