package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/planwerk/cockpit-backend/config"
	httpapi "github.com/planwerk/cockpit-backend/internal/api/http"
	"github.com/planwerk/cockpit-backend/internal/api/http/middleware"
	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/plans/audit"
	"github.com/planwerk/cockpit-backend/internal/plans/events"
	planhttp "github.com/planwerk/cockpit-backend/internal/plans/http"
	plansvc "github.com/planwerk/cockpit-backend/internal/plans/service"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	projhttp "github.com/planwerk/cockpit-backend/internal/projects/http"
	projsvc "github.com/planwerk/cockpit-backend/internal/projects/service"
)

const (
	ServiceName     = "cockpit-backend"
	shutdownTimeout = 15 * time.Second
	limiterIdle     = 10 * time.Minute
)

// App is the assembled API server.
type App struct {
	cfg       *config.Config
	log       *logger.Logger
	server    *http.Server
	scheduler *audit.Scheduler
	limiter   *middleware.IPRateLimiter
	closers   []func()
}

// Services wires the plan services against the given collaborators.
func Services(cfg *config.Config, stores *Stores, blobs blobstore.Store, rdb *redis.Client, log *logger.Logger) plansvc.Deps {
	d := plansvc.Deps{
		Projects:      stores.Projects,
		Plans:         stores.Plans,
		Versions:      stores.Versions,
		Blobs:         blobs,
		Layout:        plansvc.PathLayout{ProjectsRoot: cfg.Blob.ProjectsRoot, PlansSegment: cfg.Blob.PlansSegment},
		PublicBaseURL: cfg.Server.PublicBaseURL,
		Log:           log,
	}
	if rdb != nil {
		d.Events = events.NewRedisPublisher(rdb)
	}
	return d
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	SetGinMode(&cfg.App)
	a := &App{cfg: cfg, log: log}

	stores, err := OpenStores(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, stores.Close)

	blobs, closeBlobs, err := OpenBlobStore(ctx, &cfg.Blob, log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, closeBlobs)

	rdb, err := OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}

	var (
		sub       planhttp.Subscriber
		redisPing httpapi.Pinger
	)
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		sub = events.NewRedisSubscriber(rdb)
		redisPing = httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		log.Warn("REDIS_ADDR not set, version events disabled")
	}

	d := Services(cfg, stores, blobs, rdb, log)
	plans := planhttp.New(
		plansvc.NewRegistry(d), plansvc.NewLedger(d), plansvc.NewVerifier(d), plansvc.NewQRRenderer(d),
		planhttp.Options{Subscriber: sub, Log: log},
	)
	projects := projhttp.New(projsvc.NewProjectService(stores.Projects, log))

	a.limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := BuildRouter(RouterDeps{
		ServiceName:    ServiceName,
		Version:        cfg.App.Version,
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
		DBPing:         stores.Ping,
		RedisPing:      redisPing,
		Projects:       projects,
		Plans:          plans,
		RateLimiter:    a.limiter,
	})

	auditor := audit.NewAuditor(blobs, stores.Paths, d.Layout.Root(), log)
	a.scheduler = audit.NewScheduler(auditor, log)

	a.server = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.scheduler.Start(ctx, a.cfg.Audit.Schedule); err != nil {
		return err
	}
	defer a.scheduler.Stop()

	go a.sweepLimiter(ctx)

	// Requests inherit ctx so open event streams end on shutdown.
	a.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", a.server.Addr, "env", a.cfg.App.Environment)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Cleanup(limiterIdle); n > 0 {
				a.log.Debug("rate limiter buckets dropped", "count", n)
			}
		}
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
