package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"mediacontacts/internal/app"
	"mediacontacts/internal/config"
	"mediacontacts/internal/logging"
)

func main() {
	serve := flag.Bool("serve", false, "run recurring imports on the configured interval")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *serve {
		err = application.Serve(ctx)
	} else {
		err = application.Run(ctx)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
