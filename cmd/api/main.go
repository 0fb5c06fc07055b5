package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/planwerk/cockpit-backend/config"
	"github.com/planwerk/cockpit-backend/internal/bootstrap"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("startup failed", "error", err)
	}

	if err := app.Run(ctx); err != nil {
		appLog.Error("server exited", "error", err)
		os.Exit(1)
	}
	appLog.Info("server stopped")
}
