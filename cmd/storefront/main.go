package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logging"
)

// main starts the storefront service using file or directory config source.
// Params: CLI flags (--config-file or --config-dir).
// Returns: process exit code by startup/run result.
func main() {
	var (
		configFile = flag.String("config-file", "", "path to one TOML config file")
		configDir  = flag.String("config-dir", "", "path to directory with TOML config fragments")
	)
	flag.Parse()

	source, err := config.FromCLI(*configFile, *configDir)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	cfg, err := config.LoadSnapshot(source)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "config load failed:", err.Error())
		os.Exit(2)
	}

	logger, closeLogger, err := logging.New(cfg.Log)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "logger init failed:", err.Error())
		os.Exit(1)
	}
	defer closeLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, err := app.NewService(ctx, cfg, logger)
	if err != nil {
		logger.Error("service init failed", "error", err.Error())
		os.Exit(1)
	}

	if err := service.Run(ctx); err != nil {
		logger.Error("service run failed", "error", err.Error())
		os.Exit(1)
	}
}
