// Package audit compares the files in the blob store with the paths the
// version ledger recorded. It only reads; cleanup is left to an operator.
package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

// PathSource lists the file paths stored with plan versions.
type PathSource interface {
	FilePaths(ctx context.Context) ([]string, error)
}

// Report is the outcome of one audit run.
type Report struct {
	// OrphanFiles are stored below the projects root but referenced by no
	// version row, typically left behind by a failed insert.
	OrphanFiles []string `json:"orphanFiles"`
	// MissingFiles are referenced by a version row but absent from the store.
	MissingFiles     []string      `json:"missingFiles"`
	ScannedFiles     int           `json:"scannedFiles"`
	RecordedVersions int           `json:"recordedVersions"`
	StartedAt        time.Time     `json:"startedAt"`
	Duration         time.Duration `json:"duration"`
}

func (r Report) Clean() bool {
	return len(r.OrphanFiles) == 0 && len(r.MissingFiles) == 0
}

type Auditor struct {
	blobs blobstore.Store
	paths PathSource
	root  string
	log   *logger.Logger
	now   func() time.Time
}

// NewAuditor audits everything below root, e.g. "/Projekte".
func NewAuditor(blobs blobstore.Store, paths PathSource, root string, log *logger.Logger) *Auditor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Auditor{
		blobs: blobs,
		paths: paths,
		root:  blobstore.Clean(root),
		log:   log.With("service", "orphan_audit"),
		now:   time.Now,
	}
}

func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	started := a.now()

	stored, err := a.blobs.List(ctx, a.root)
	if err != nil {
		return nil, fmt.Errorf("list blobs below %s: %w", a.root, err)
	}
	recorded, err := a.paths.FilePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recorded file paths: %w", err)
	}

	storedSet := make(map[string]struct{}, len(stored))
	for _, p := range stored {
		storedSet[blobstore.Clean(p)] = struct{}{}
	}
	recordedSet := make(map[string]struct{}, len(recorded))
	for _, p := range recorded {
		recordedSet[blobstore.Clean(p)] = struct{}{}
	}

	rep := &Report{
		OrphanFiles:      []string{},
		MissingFiles:     []string{},
		ScannedFiles:     len(storedSet),
		RecordedVersions: len(recorded),
		StartedAt:        started,
	}
	for p := range storedSet {
		if _, ok := recordedSet[p]; !ok {
			rep.OrphanFiles = append(rep.OrphanFiles, p)
		}
	}
	for p := range recordedSet {
		if _, ok := storedSet[p]; !ok {
			rep.MissingFiles = append(rep.MissingFiles, p)
		}
	}
	sort.Strings(rep.OrphanFiles)
	sort.Strings(rep.MissingFiles)
	rep.Duration = a.now().Sub(started)

	if rep.Clean() {
		a.log.Info("orphan audit clean", "scanned_files", rep.ScannedFiles, "recorded_versions", rep.RecordedVersions)
	} else {
		a.log.Warn("orphan audit found inconsistencies",
			"orphan_files", rep.OrphanFiles,
			"missing_files", rep.MissingFiles,
			"scanned_files", rep.ScannedFiles,
			"recorded_versions", rep.RecordedVersions)
	}
	return rep, nil
}
