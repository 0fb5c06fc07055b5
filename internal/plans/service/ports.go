package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
	"github.com/planwerk/cockpit-backend/internal/plans/events"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	projdomain "github.com/planwerk/cockpit-backend/internal/projects/domain"
)

// ProjectLookup is the read side of the project registry.
type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projdomain.Project, error)
	GetByNumber(ctx context.Context, number string) (*projdomain.Project, error)
}

type PlanRepository interface {
	// Create fails with domain.ErrDuplicateTitle when the project already
	// has a plan with that title.
	Create(ctx context.Context, plan *domain.TrackedPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TrackedPlan, error)
	GetByTitle(ctx context.Context, projectID uuid.UUID, title string) (*domain.TrackedPlan, error)
	// ListByProject returns plans in creation order.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TrackedPlan, error)
}

type VersionRepository interface {
	// Insert is the atomic uniqueness guarantee: a second row with the same
	// (plan, number) fails with domain.ErrDuplicateVersion.
	Insert(ctx context.Context, v *domain.PlanVersion) error
	Exists(ctx context.Context, planID uuid.UUID, number int) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanVersion, error)
	// Current returns nil without error when the plan has no versions.
	Current(ctx context.Context, planID uuid.UUID) (*domain.PlanVersion, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanVersion, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PlanVersion, error)
}

type EventPublisher interface {
	PublishVersion(ctx context.Context, ev domain.VersionPublished) error
}

// Deps wires the plan services. Events, Log and Now are optional.
type Deps struct {
	Projects      ProjectLookup
	Plans         PlanRepository
	Versions      VersionRepository
	Blobs         blobstore.Store
	Events        EventPublisher
	Layout        PathLayout
	PublicBaseURL string
	Log           *logger.Logger
	Now           func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Layout.ProjectsRoot == "" {
		d.Layout.ProjectsRoot = DefaultProjectsRoot
	}
	if d.Layout.PlansSegment == "" {
		d.Layout.PlansSegment = DefaultPlansSegment
	}
	return d
}

// parseID treats a malformed id like an unknown one.
func parseID(s string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
