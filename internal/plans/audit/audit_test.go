package audit

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

type staticPaths []string

func (s staticPaths) FilePaths(context.Context) ([]string, error) { return s, nil }

type brokenPaths struct{}

func (brokenPaths) FilePaths(context.Context) ([]string, error) {
	return nil, errors.New("db down")
}

func observed() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func put(t *testing.T, s *blobstore.MemoryStore, p string) {
	t.Helper()
	ctx := context.Background()
	blobstore.EnsureTree(ctx, s, path.Dir(p))
	require.NoError(t, s.Write(ctx, p, []byte("%PDF")))
}

func TestAuditor_Run(t *testing.T) {
	blobs := blobstore.NewMemory()
	put(t, blobs, "/Projekte/24-007/Pläne/Grundriss EG/V1/x.pdf")
	put(t, blobs, "/Projekte/24-007/Pläne/Grundriss EG/V2/x.pdf")
	put(t, blobs, "/Archiv/old/x.pdf")

	recorded := staticPaths{
		"/Projekte/24-007/Pläne/Grundriss EG/V1/x.pdf",
		"/Projekte/24-007/Pläne/Schnitt/V1/x.pdf",
	}
	log, logs := observed()

	rep, err := NewAuditor(blobs, recorded, "Projekte", log).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Clean())
	assert.Equal(t, []string{"/Projekte/24-007/Pläne/Grundriss EG/V2/x.pdf"}, rep.OrphanFiles)
	assert.Equal(t, []string{"/Projekte/24-007/Pläne/Schnitt/V1/x.pdf"}, rep.MissingFiles)
	assert.Equal(t, 2, rep.ScannedFiles, "files outside the projects root are ignored")
	assert.Equal(t, 2, rep.RecordedVersions)

	warn := logs.FilterMessage("orphan audit found inconsistencies").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zapcore.WarnLevel, warn[0].Level)
}

func TestAuditor_RunClean(t *testing.T) {
	blobs := blobstore.NewMemory()
	put(t, blobs, "/Projekte/24-001/Pläne/Lageplan/V1/x.pdf")
	log, logs := observed()

	rep, err := NewAuditor(blobs, staticPaths{"/Projekte/24-001/Pläne/Lageplan/V1/x.pdf"}, "/Projekte", log).
		Run(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Clean())
	assert.NotNil(t, rep.OrphanFiles)
	assert.NotNil(t, rep.MissingFiles)
	assert.Len(t, logs.FilterMessage("orphan audit clean").All(), 1)
}

func TestAuditor_RunErrors(t *testing.T) {
	_, err := NewAuditor(blobstore.NewMemory(), brokenPaths{}, "Projekte", nil).Run(context.Background())
	assert.ErrorContains(t, err, "load recorded file paths")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewAuditor(blobstore.NewMemory(), staticPaths{}, "Projekte", nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(NewAuditor(blobstore.NewMemory(), staticPaths{}, "Projekte", nil), nil)
	err := s.Start(context.Background(), "every night")
	assert.Error(t, err)
}

func TestScheduler_RunsAudit(t *testing.T) {
	log, logs := observed()
	auditor := NewAuditor(blobstore.NewMemory(), staticPaths{}, "Projekte", log)
	s := NewScheduler(auditor, log)

	require.NoError(t, s.Start(context.Background(), "* * * * * *"))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("orphan audit clean").Len() > 0
	}, 3*time.Second, 50*time.Millisecond)
}
