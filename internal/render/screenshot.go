package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"hkstockanalyzer/internal/report"
	"hkstockanalyzer/internal/utils"
)

// Screenshot renders the HTML chart and captures it with a headless
// browser, producing a PNG suitable for message delivery.
type Screenshot struct {
	cfg    *utils.Config
	logger utils.Logger
	html   *EChartsHTML
}

func NewScreenshot(cfg *utils.Config, logger utils.Logger) *Screenshot {
	return &Screenshot{
		cfg:    cfg,
		logger: logger,
		html:   NewEChartsHTML(cfg, logger),
	}
}

func (r *Screenshot) Render(series []report.ChartSeries, at time.Time) (string, error) {
	htmlPath, err := r.html.Render(series, at)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve chart path: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("headless", true),
		chromedp.Flag("enable-logging", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", r.cfg.Render.Width, r.cfg.Render.Height)),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			// Cookie warnings from local file URLs are noise.
			if !strings.Contains(strings.ToLower(fmt.Sprintf(format, args...)), "cookie") {
				r.logger.Debug(format, args...)
			}
		}),
	)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
	defer cancelTimeout()

	var buf []byte
	err = chromedp.Run(ctx,
		emulation.SetDeviceMetricsOverride(int64(r.cfg.Render.Width), int64(r.cfg.Render.Height), 1, false),
		chromedp.Navigate("file://"+absPath),
		chromedp.Sleep(5*time.Second), // wait for the chart script to draw
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	pngPath := strings.TrimSuffix(absPath, ".html") + ".png"
	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	r.logger.Info("Captured chart screenshot: %s", pngPath)
	return pngPath, nil
}
