package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/apperr"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

const maxTitleLength = 255

// Registry manages tracked plans within projects.
type Registry struct {
	d Deps
}

func NewRegistry(d Deps) *Registry {
	d = d.withDefaults()
	d.Log = d.Log.With("service", "plan_registry")
	return &Registry{d: d}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", apperr.Validation("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

// CreatePlan registers a new plan lineage. Titles are unique per project.
func (r *Registry) CreatePlan(ctx context.Context, projectID, title string) (*domain.TrackedPlan, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(projectID, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	project, err := r.d.Projects.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	if _, err := r.d.Plans.GetByTitle(ctx, project.ID, title); err == nil {
		return nil, domain.ErrDuplicateTitle
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	plan := &domain.TrackedPlan{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Title:     title,
		CreatedAt: r.d.Now().UTC(),
	}
	if err := r.d.Plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	plan.Versions = []domain.PlanVersion{}

	r.d.Log.Info("tracked plan created",
		"plan_id", plan.ID, "project_number", project.ProjectNumber, "title", plan.Title)
	return plan, nil
}

// ListPlans returns the project's plans oldest first, each with its
// versions highest first.
func (r *Registry) ListPlans(ctx context.Context, projectID string) ([]domain.TrackedPlan, error) {
	pid, err := parseID(projectID, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := r.d.Projects.GetByID(ctx, pid); err != nil {
		return nil, err
	}

	plans, err := r.d.Plans.ListByProject(ctx, pid)
	if err != nil {
		return nil, err
	}
	versions, err := r.d.Versions.ListByProject(ctx, pid)
	if err != nil {
		return nil, err
	}

	byPlan := make(map[uuid.UUID][]domain.PlanVersion, len(plans))
	for _, v := range versions {
		byPlan[v.TrackedPlanID] = append(byPlan[v.TrackedPlanID], v)
	}
	for i := range plans {
		plans[i].Versions = byPlan[plans[i].ID]
		if plans[i].Versions == nil {
			plans[i].Versions = []domain.PlanVersion{}
		}
	}
	return plans, nil
}

// FindPlanByTitle resolves a plan from the human keys printed on a sheet.
func (r *Registry) FindPlanByTitle(ctx context.Context, projectNumber, title string) (*domain.TrackedPlan, error) {
	projectNumber = strings.TrimSpace(projectNumber)
	title = strings.TrimSpace(title)
	if projectNumber == "" || title == "" {
		return nil, apperr.Validation("projectNumber and planTitle are required")
	}
	project, err := r.d.Projects.GetByNumber(ctx, projectNumber)
	if err != nil {
		return nil, err
	}
	return r.d.Plans.GetByTitle(ctx, project.ID, title)
}

// GetPlan returns one plan with its versions.
func (r *Registry) GetPlan(ctx context.Context, planID string) (*domain.TrackedPlan, error) {
	id, err := parseID(planID, domain.ErrPlanNotFound)
	if err != nil {
		return nil, err
	}
	plan, err := r.d.Plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Versions, err = r.d.Versions.ListByPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Versions == nil {
		plan.Versions = []domain.PlanVersion{}
	}
	return plan, nil
}
