package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planwerk/cockpit-backend/config"
	"github.com/planwerk/cockpit-backend/internal/bootstrap"
	"github.com/planwerk/cockpit-backend/internal/plans/audit"
	plansvc "github.com/planwerk/cockpit-backend/internal/plans/service"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

// RunAudit runs the orphan audit once and prints the report as JSON. The
// exit code is 2 when inconsistencies were found.
func RunAudit(args []string) int {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	timeout := fs.Duration("timeout", 10*time.Minute, "abort the audit after this long")
	_ = fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	appLog, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, &cfg.Database, appLog)
	if err != nil {
		appLog.Error("open stores failed", "error", err)
		return 1
	}
	defer stores.Close()

	blobs, closeBlobs, err := bootstrap.OpenBlobStore(ctx, &cfg.Blob, appLog)
	if err != nil {
		appLog.Error("open blob store failed", "error", err)
		return 1
	}
	defer closeBlobs()

	layout := plansvc.PathLayout{ProjectsRoot: cfg.Blob.ProjectsRoot, PlansSegment: cfg.Blob.PlansSegment}
	rep, err := audit.NewAuditor(blobs, stores.Paths, layout.Root(), appLog).Run(ctx)
	if err != nil {
		appLog.Error("orphan audit failed", "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		log.Printf("encode report: %v", err)
		return 1
	}
	if !rep.Clean() {
		return 2
	}
	return 0
}
