package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	projdomain "github.com/planwerk/cockpit-backend/internal/projects/domain"
	"github.com/planwerk/cockpit-backend/internal/storage/memory"
)

var pdf = []byte("%PDF-1.7\n%plan\n")

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.VersionPublished
	err    error
}

func (p *recordingPublisher) PublishVersion(_ context.Context, ev domain.VersionPublished) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []domain.VersionPublished {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.VersionPublished(nil), p.events...)
}

type fixture struct {
	store    *memory.Store
	blobs    *blobstore.MemoryStore
	events   *recordingPublisher
	clock    *clock
	logs     *observer.ObservedLogs
	deps     Deps
	registry *Registry
	ledger   *Ledger
	verifier *Verifier
	qr       *QRRenderer
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	f := &fixture{
		store:  memory.New(),
		blobs:  blobstore.NewMemory(),
		events: &recordingPublisher{},
		clock:  &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)},
		logs:   logs,
	}
	d := Deps{
		Projects:      f.store.Projects(),
		Plans:         f.store.Plans(),
		Versions:      f.store.Versions(),
		Blobs:         f.blobs,
		Events:        f.events,
		PublicBaseURL: "https://cockpit.example.at/",
		Log:           &logger.Logger{SugaredLogger: zap.New(core).Sugar()},
		Now:           f.clock.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	f.deps = d
	f.registry = NewRegistry(d)
	f.ledger = NewLedger(d)
	f.verifier = NewVerifier(d)
	f.qr = NewQRRenderer(d)
	return f
}

func (f *fixture) project(t *testing.T, number, name string) *projdomain.Project {
	t.Helper()
	now := f.clock.Now()
	p := &projdomain.Project{
		ID:            uuid.New(),
		ProjectNumber: number,
		Name:          name,
		Status:        projdomain.StatusInProgress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.store.Projects().Create(context.Background(), p))
	return p
}

func (f *fixture) plan(t *testing.T, projectID uuid.UUID, title string) *domain.TrackedPlan {
	t.Helper()
	plan, err := f.registry.CreatePlan(context.Background(), projectID.String(), title)
	require.NoError(t, err)
	return plan
}

func (f *fixture) upload(t *testing.T, planID uuid.UUID, n int, desc string) *domain.PlanVersion {
	t.Helper()
	f.clock.Advance(time.Minute)
	v, err := f.ledger.CreateVersion(context.Background(), CreateVersionInput{
		PlanID:        planID.String(),
		VersionNumber: n,
		Description:   desc,
		FileName:      "plan.pdf",
		File:          pdf,
	})
	require.NoError(t, err)
	return v
}

// failingBlobs wraps a store and fails the selected operations.
type failingBlobs struct {
	blobstore.Store
	failDirs  bool
	failWrite bool
	failRead  bool
}

var errBackend = errors.New("backend unavailable")

func (b *failingBlobs) EnsureDir(ctx context.Context, dir string) blobstore.DirResult {
	if b.failDirs {
		return blobstore.DirResult{Path: dir, Outcome: blobstore.DirFailed, Err: errBackend}
	}
	return b.Store.EnsureDir(ctx, dir)
}

func (b *failingBlobs) Write(ctx context.Context, p string, data []byte) error {
	if b.failWrite {
		return errBackend
	}
	return b.Store.Write(ctx, p, data)
}

func (b *failingBlobs) Read(ctx context.Context, p string) ([]byte, error) {
	if b.failRead {
		return nil, errBackend
	}
	return b.Store.Read(ctx, p)
}
