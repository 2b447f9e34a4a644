package main

import (
	"context"
	"time"

	"hkstockanalyzer/internal/analyzer"
	"hkstockanalyzer/internal/ledger"
	"hkstockanalyzer/internal/notify"
	"hkstockanalyzer/internal/prices"
	"hkstockanalyzer/internal/render"
	"hkstockanalyzer/internal/utils"
)

// One-shot mode: run a single analysis and exit. The long-running server
// with the scheduler lives in cmd/server.
func main() {
	logger := utils.NewAppLogger()

	config, err := utils.LoadConfig("configs")
	if err != nil {
		logger.Fatal("Error loading config: %v", err)
	}
	logger.SetLevel(config.Server.LogLevel)

	provider := prices.NewSheetClient(
		config.Prices.SheetID,
		time.Duration(config.Prices.Timeout)*time.Second,
		logger,
	)

	renderer, err := render.New(config, logger)
	if err != nil {
		logger.Fatal("Error creating renderer: %v", err)
	}

	notifier, err := notify.NewTelegram(config.Telegram, logger)
	if err != nil {
		logger.Fatal("Error creating telegram notifier: %v", err)
	}

	source := analyzer.FileLedger{
		Path:   config.Portfolio.File,
		Filter: ledger.Filter{Category: config.Portfolio.Category},
	}

	a := analyzer.New(logger, source, provider, renderer, notifier)
	if _, err := a.Run(context.Background()); err != nil {
		logger.Fatal("Analysis failed: %v", err)
	}
}
