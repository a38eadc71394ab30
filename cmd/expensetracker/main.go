package main

import (
	"context"
	"fmt"
	"os"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := cli.LoadEnvFile(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		return err
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	}, apphttp.Services{
		Users:      res.Users,
		Categories: res.Categories,
		Expenses:   res.Expenses,
		Reports:    res.Reports,
	}, res.Store)
	if err != nil {
		_ = res.Close()
		return err
	}

	logger.Info("Starting HTTP server",
		applog.FieldOperation, applog.OpStartup,
		"addr", cfg.Addr(),
		"backend", cfg.DataBackend,
		"events_enabled", res.EventsEnabled,
		"export_enabled", res.ExportEnabled)

	return cli.ServeUntilDone(ctx, logger, srv, cfg.ShutdownTimeout, res.Close)
}
