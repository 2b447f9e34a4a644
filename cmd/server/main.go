package main

import (
	"time"

	"hkstockanalyzer/internal/analyzer"
	"hkstockanalyzer/internal/api"
	"hkstockanalyzer/internal/ledger"
	"hkstockanalyzer/internal/notify"
	"hkstockanalyzer/internal/prices"
	"hkstockanalyzer/internal/render"
	"hkstockanalyzer/internal/utils"
)

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

	server := api.NewServer(logger, config, a)
	if err := server.StartScheduler(); err != nil {
		logger.Fatal("Error starting scheduler: %v", err)
	}
	if err := server.Start(); err != nil {
		logger.Fatal("Error starting server: %v", err)
	}
}
