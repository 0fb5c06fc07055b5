package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planwerk/cockpit-backend/config"
	httpapi "github.com/planwerk/cockpit-backend/internal/api/http"
	"github.com/planwerk/cockpit-backend/internal/plans/audit"
	planrepo "github.com/planwerk/cockpit-backend/internal/plans/repository"
	plansvc "github.com/planwerk/cockpit-backend/internal/plans/service"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	projrepo "github.com/planwerk/cockpit-backend/internal/projects/repository"
	projsvc "github.com/planwerk/cockpit-backend/internal/projects/service"
	"github.com/planwerk/cockpit-backend/internal/storage/memory"
	"github.com/planwerk/cockpit-backend/internal/storage/postgres"
)

type DBOptions struct {
	DSN       string
	ConnectTO time.Duration
	PingTO    time.Duration
	// MaxConns caps the pool; zero keeps the pgx default.
	MaxConns int32
}

func OpenDB(ctx context.Context, opt DBOptions) (*pgxpool.Pool, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	cfg, err := pgxpool.ParseConfig(opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opt.MaxConns > 0 {
		cfg.MaxConns = opt.MaxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTO)
	defer pcancel()

	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}

// Stores holds the repositories of the configured DB_DRIVER.
type Stores struct {
	Projects projsvc.Repository
	Plans    plansvc.PlanRepository
	Versions plansvc.VersionRepository
	Paths    audit.PathSource
	// Ping is nil for the in-memory driver.
	Ping httpapi.Pinger

	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects to Postgres and applies the schema, or builds an empty
// in-memory store.
func OpenStores(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return MemoryStores(memory.New()), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func MemoryStores(store *memory.Store) *Stores {
	return &Stores{
		Projects: store.Projects(),
		Plans:    store.Plans(),
		Versions: store.Versions(),
		Paths:    store,
	}
}

func openPostgres(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*Stores, error) {
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	pool, err := OpenDB(ctx, DBOptions{DSN: postgres.DSN(cfg), MaxConns: 4})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("connected to postgres", "host", cfg.Host, "database", cfg.Name)
	return postgresStores(db, pool), nil
}

func postgresStores(db *sql.DB, pool *pgxpool.Pool) *Stores {
	return &Stores{
		Projects: projrepo.NewProjectRepository(db),
		Plans:    planrepo.NewPlanRepository(db),
		Versions: planrepo.NewVersionRepository(db),
		Paths:    planrepo.NewPathIndex(pool),
		Ping:     pool,
		closers:  []func(){func() { _ = db.Close() }, pool.Close},
	}
}
