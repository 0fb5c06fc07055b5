package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/apperr"
	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

// CreateVersionInput is an upload that already passed request binding.
type CreateVersionInput struct {
	PlanID        string
	VersionNumber int
	Description   string
	FileName      string
	File          []byte
}

func (in CreateVersionInput) validate() error {
	switch {
	case in.VersionNumber <= 0:
		return apperr.Validation("versionNumber must be a positive integer")
	case in.VersionNumber > math.MaxInt32:
		return apperr.Validation("versionNumber must not exceed %d", math.MaxInt32)
	case len(in.File) == 0:
		return apperr.Validation("file is required")
	case !strings.HasSuffix(strings.ToLower(strings.TrimSpace(in.FileName)), ".pdf"):
		return apperr.Validation("file must be a PDF")
	}
	return nil
}

// Ledger accepts plan version uploads and answers which version is current.
type Ledger struct {
	d Deps
}

func NewLedger(d Deps) *Ledger {
	d = d.withDefaults()
	d.Log = d.Log.With("service", "version_ledger")
	return &Ledger{d: d}
}

// CreateVersion stores the file under a path unique to the new version id and
// then records the version row. If the row insert fails after the write the file
// stays behind as an orphan; the audit job reports those.
func (l *Ledger) CreateVersion(ctx context.Context, in CreateVersionInput) (*domain.PlanVersion, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	planID, err := parseID(in.PlanID, domain.ErrPlanNotFound)
	if err != nil {
		return nil, err
	}
	plan, err := l.d.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	project, err := l.d.Projects.GetByID(ctx, plan.ProjectID)
	if err != nil {
		return nil, err
	}

	exists, err := l.d.Versions.Exists(ctx, plan.ID, in.VersionNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateVersion
	}

	id := uuid.New()
	now := l.d.Now().UTC()
	dir := l.d.Layout.VersionDir(project.ProjectNumber, plan.Title, in.VersionNumber)
	filePath := l.d.Layout.VersionFile(project.ProjectNumber, plan.Title, in.VersionNumber, now, id)

	l.logDirResults(blobstore.EnsureTree(ctx, l.d.Blobs, dir))

	if err := l.d.Blobs.Write(ctx, filePath, in.File); err != nil {
		l.d.Log.Error("plan file upload failed", "path", filePath, "error", err)
		return nil, apperr.Storage(err, "write %s", filePath)
	}

	v := &domain.PlanVersion{
		ID:            id,
		TrackedPlanID: plan.ID,
		VersionNumber: in.VersionNumber,
		FilePath:      filePath,
		CreatedAt:     now,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		v.Description = &desc
	}

	if err := l.d.Versions.Insert(ctx, v); err != nil {
		l.d.Log.Warn("version row not recorded, file left orphaned",
			"path", filePath, "plan_id", plan.ID, "version_number", in.VersionNumber, "error", err)
		return nil, err
	}

	ev := domain.VersionPublished{
		Type:          domain.EventVersionPublished,
		VersionID:     v.ID,
		PlanID:        plan.ID,
		ProjectID:     project.ID,
		ProjectNumber: project.ProjectNumber,
		PlanTitle:     plan.Title,
		VersionNumber: v.VersionNumber,
		CreatedAt:     v.CreatedAt,
	}
	if err := l.d.Events.PublishVersion(ctx, ev); err != nil {
		l.d.Log.Warn("version event not published", "version_id", v.ID, "error", err)
	}

	l.d.Log.Info("plan version created",
		"version_id", v.ID, "plan_id", plan.ID, "version_number", v.VersionNumber, "path", filePath)
	return v, nil
}

func (l *Ledger) logDirResults(results []blobstore.DirResult) {
	for _, r := range results {
		switch r.Outcome {
		case blobstore.DirFailed:
			l.d.Log.Warn("directory creation failed, continuing", "path", r.Path, "error", r.Err)
		default:
			l.d.Log.Debug("directory ensured", "path", r.Path, "outcome", r.Outcome.String())
		}
	}
}

// GetCurrentVersion returns the version with the highest number, or nil
// when the plan has none yet.
func (l *Ledger) GetCurrentVersion(ctx context.Context, planID string) (*domain.PlanVersion, error) {
	id, err := parseID(planID, domain.ErrPlanNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := l.d.Plans.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return l.d.Versions.Current(ctx, id)
}

func (l *Ledger) GetVersion(ctx context.Context, versionID string) (*domain.PlanVersion, error) {
	id, err := parseID(versionID, domain.ErrVersionNotFound)
	if err != nil {
		return nil, err
	}
	return l.d.Versions.GetByID(ctx, id)
}

// GetFileBytes reads the stored PDF. A row whose file is gone is a storage
// error, not a missing version.
func (l *Ledger) GetFileBytes(ctx context.Context, versionID string) ([]byte, error) {
	v, err := l.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	return l.readFile(ctx, v)
}

func (l *Ledger) readFile(ctx context.Context, v *domain.PlanVersion) ([]byte, error) {
	data, err := l.d.Blobs.Read(ctx, v.FilePath)
	if err != nil {
		l.d.Log.Error("plan file read failed", "version_id", v.ID, "path", v.FilePath, "error", err)
		return nil, apperr.Storage(err, "read %s", v.FilePath)
	}
	return data, nil
}

// LatestByHumanKeys finds the current version of a plan by project number
// and title, as the CAD export needs to print the QR code.
func (l *Ledger) LatestByHumanKeys(ctx context.Context, projectNumber, planTitle string) (*domain.LatestVersionRef, error) {
	projectNumber = strings.TrimSpace(projectNumber)
	planTitle = strings.TrimSpace(planTitle)
	if projectNumber == "" || planTitle == "" {
		return nil, apperr.Validation("projectNumber and planTitle are required")
	}

	project, err := l.d.Projects.GetByNumber(ctx, projectNumber)
	if err != nil {
		return nil, err
	}
	plan, err := l.d.Plans.GetByTitle(ctx, project.ID, planTitle)
	if err != nil {
		return nil, err
	}
	head, err := l.d.Versions.Current(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return nil, domain.ErrNoCurrentVersion
	}
	return &domain.LatestVersionRef{VersionID: head.ID, VersionNumber: head.VersionNumber}, nil
}

// Download returns the file together with the name browsers should save it
// under.
func (l *Ledger) Download(ctx context.Context, versionID string) (*domain.Download, error) {
	v, err := l.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	plan, err := l.d.Plans.GetByID(ctx, v.TrackedPlanID)
	if err != nil {
		return nil, err
	}
	project, err := l.d.Projects.GetByID(ctx, plan.ProjectID)
	if err != nil {
		return nil, err
	}
	data, err := l.readFile(ctx, v)
	if err != nil {
		return nil, err
	}
	return &domain.Download{
		FileName: DownloadName(project.ProjectNumber, plan.Title, v.VersionNumber),
		Data:     data,
	}, nil
}
