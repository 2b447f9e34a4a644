package render

import (
	"fmt"
	"os"
	"time"

	"hkstockanalyzer/internal/report"
	"hkstockanalyzer/internal/utils"
)

// Renderer turns chart-ready series into an image or document artifact on
// disk and returns its path.
type Renderer interface {
	Render(series []report.ChartSeries, at time.Time) (string, error)
}

const chartTitle = "Hong Kong Stock Portfolio Performance Analysis"

// Per-instrument line colors, matching the original chart palette.
var palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A", "#19D3F3", "#FF6692",
}

// New selects a renderer backend by name.
func New(cfg *utils.Config, logger utils.Logger) (Renderer, error) {
	switch cfg.Render.Backend {
	case "png":
		return NewChartPNG(cfg, logger), nil
	case "html":
		return NewEChartsHTML(cfg, logger), nil
	case "screenshot":
		return NewScreenshot(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", cfg.Render.Backend)
	}
}

func ensureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
