package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"StructureSentinel/internal/collector"
	"StructureSentinel/internal/config"
	"StructureSentinel/internal/instrument"
	"StructureSentinel/internal/logging"
	"StructureSentinel/internal/recorder"
	"StructureSentinel/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("config", cfgPath).Msg("StructureSentinel starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	timeframes, _ := cfg.Timeframes()

	// Init fetcher
	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init fetcher")
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	col := collector.NewCollector(fetcher, cfg.DataSource.Window)

	// Init recorder
	rec, err := recorder.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Warn().Err(err).Msg("init recorder failed, using noop")
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, rec, instrument.NewTable(cfg.Instruments),
		cfg.Scan.Symbols, timeframes, cfg.Params())
	if err := sched.Register(cfg.Scan.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()

	// Optional: run immediately on start
	if cfg.Scan.RunOnStart || os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing scan now")
		go sched.RunNow()
	}

	log.Info().Strs("symbols", cfg.Scan.Symbols).Str("cron", cfg.Scan.Cron).
		Msg("StructureSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	log.Info().Msg("StructureSentinel stopped")
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	client := collector.NewHTTPClient(collector.HTTPOptions{
		RequestsPerSec: cfg.DataSource.RequestsPerSec,
		Proxy:          cfg.Proxy,
	})
	switch cfg.DataSource.Kind {
	case "yahoo":
		f := collector.NewYahooFetcher(client)
		if cfg.DataSource.BaseURL != "" {
			f.BaseURL = cfg.DataSource.BaseURL
		}
		return f, nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, client), nil
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVDir), nil
	case "mock":
		return &collector.MockFetcher{Price: 1.1}, nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Kind)
}
