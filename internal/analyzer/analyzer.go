package analyzer

import (
	"context"
	"fmt"
	"time"

	"hkstockanalyzer/internal/ledger"
	"hkstockanalyzer/internal/performance"
	"hkstockanalyzer/internal/prices"
	"hkstockanalyzer/internal/render"
	"hkstockanalyzer/internal/report"
	"hkstockanalyzer/internal/utils"
)

// LedgerSource supplies the cleaned transaction ledger for a run.
type LedgerSource interface {
	Ledger() (map[string][]ledger.Transaction, error)
}

// FileLedger loads the ledger from the configured portfolio file.
type FileLedger struct {
	Path   string
	Filter ledger.Filter
}

func (f FileLedger) Ledger() (map[string][]ledger.Transaction, error) {
	return ledger.LoadFile(f.Path, f.Filter)
}

// Deliverer is the outward-facing delivery surface the analyzer needs.
type Deliverer interface {
	SendPhoto(path, caption string) error
	SendMessage(text string) error
}

// RunResult summarizes one analysis run.
type RunResult struct {
	StartedAt    time.Time                      `json:"started_at"`
	Records      map[string]*performance.Record `json:"records"`
	Skipped      []performance.Result           `json:"skipped"`
	ArtifactPath string                         `json:"artifact_path,omitempty"`
	Summary      string                         `json:"summary,omitempty"`
}

// Analyzer wires the pipeline: ledger -> reconstruction -> formatting ->
// rendering -> delivery. Per-instrument failures become skips; only
// rendering and delivery failures fail the run.
type Analyzer struct {
	logger   utils.Logger
	source   LedgerSource
	provider prices.Provider
	renderer render.Renderer
	notifier Deliverer
	tracker  *utils.StageTracker
}

func New(logger utils.Logger, source LedgerSource, provider prices.Provider, renderer render.Renderer, notifier Deliverer) *Analyzer {
	return &Analyzer{
		logger:   logger,
		source:   source,
		provider: provider,
		renderer: renderer,
		notifier: notifier,
		tracker:  utils.NewStageTracker(),
	}
}

// Reconstruct runs the core pipeline only: load the ledger and produce
// performance records plus skip markers. No rendering or delivery.
func (a *Analyzer) Reconstruct() (map[string]*performance.Record, []performance.Result, error) {
	var txs map[string][]ledger.Transaction
	err := a.tracker.Time("load_ledger", func() error {
		var err error
		txs, err = a.source.Ledger()
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	a.logger.Info("Loaded transactions for %d instruments", len(txs))

	var (
		records map[string]*performance.Record
		skips   []performance.Result
	)
	a.tracker.Time("reconstruct", func() error {
		records, skips = performance.ReconstructAll(txs, a.provider)
		return nil
	})

	for _, skip := range skips {
		instrumentsSkipped.WithLabelValues(string(skip.Reason)).Inc()
		a.logger.Info("Skipped %s: %s", skip.Code, skip.Reason)
	}
	for code, record := range records {
		a.logger.Info("📈 %s: %s (Avg: HK$%.2f, Current: HK$%.2f)",
			code, report.FormatPct(record.CurrentPctChange), record.WeightedAvgCost, record.CurrentPrice)
	}

	return records, skips, nil
}

// Run executes a full analysis: reconstruct, render the chart and deliver
// it with the summary caption. A failed run sends a truncated error text
// to the chat instead.
func (a *Analyzer) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	runsTotal.Inc()

	result, err := a.run(ctx, start)
	runDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		runFailures.Inc()
		a.reportFailure(err)
		return nil, err
	}

	a.logger.Debug("%s", a.tracker.Report())
	return result, nil
}

func (a *Analyzer) run(ctx context.Context, start time.Time) (*RunResult, error) {
	records, skips, err := a.Reconstruct()
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		StartedAt: start,
		Records:   records,
		Skipped:   skips,
	}

	if len(records) == 0 {
		a.logger.Info("No performance data calculated; nothing to deliver")
		return result, nil
	}

	ranked := report.Rank(records)
	result.Summary = report.Summary(ranked, start)

	err = a.tracker.Time("render", func() error {
		var err error
		result.ArtifactPath, err = a.renderer.Render(report.ChartData(ranked), start)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("chart rendering failed: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	err = a.tracker.Time("deliver", func() error {
		return a.notifier.SendPhoto(result.ArtifactPath, result.Summary)
	})
	if err != nil {
		return nil, fmt.Errorf("delivery failed: %w", err)
	}

	a.logger.Info("Analysis run complete: %d records, %d skipped", len(records), len(skips))
	return result, nil
}

func (a *Analyzer) reportFailure(runErr error) {
	a.logger.Error("Analysis run failed: %v", runErr)

	text := fmt.Sprintf("❌ Stock Analysis Error: %s", truncate(runErr.Error(), 200))
	if err := a.notifier.SendMessage(text); err != nil {
		a.logger.Error("Failed to send error notification: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
