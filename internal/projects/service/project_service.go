package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/apperr"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	"github.com/planwerk/cockpit-backend/internal/projects/domain"
)

const maxNumberAttempts = 5

// Repository is the persistence port for projects. It is implemented by the
// postgres repository and the in-memory store.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	GetByNumber(ctx context.Context, number string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateInput is an already-validated request to open a project.
type CreateInput struct {
	Name               string
	Status             domain.Status
	Description        *string
	ProjectType        *string
	ProjectSector      *string
	Budget             *float64
	PlotAddress        *string
	PlotArea           *float64
	ParcelNumber       *string
	CadastralCommunity *string
	Zoning             *string
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository, log *logger.Logger) *ProjectService {
	return &ProjectService{
		repo: repo,
		log:  log.With("service", "projects"),
		now:  time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin the year.
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	s.now = now
	return s
}

// Create assigns the next YY-NNN number and stores the project. When a
// concurrent creation takes the same number the insert is retried with a
// freshly computed one.
func (s *ProjectService) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	now := s.now().UTC()
	p := &domain.Project{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(in.Name),
		Status:             in.Status,
		Description:        in.Description,
		ProjectType:        in.ProjectType,
		ProjectSector:      in.ProjectSector,
		Budget:             in.Budget,
		PlotAddress:        in.PlotAddress,
		PlotArea:           in.PlotArea,
		ParcelNumber:       in.ParcelNumber,
		CadastralCommunity: in.CadastralCommunity,
		Zoning:             in.Zoning,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.Status == "" {
		p.Status = domain.StatusAcquisition
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	prefix := domain.YearPrefix(now)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		existing, err := s.repo.NumbersWithPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
		p.ProjectNumber = domain.NextNumber(prefix, existing)

		err = s.repo.Create(ctx, p)
		if err == nil {
			s.log.Info("project created", "project_id", p.ID, "project_number", p.ProjectNumber)
			return p, nil
		}
		if !errors.Is(err, domain.ErrNumberTaken) {
			return nil, err
		}
		s.log.Warn("project number taken, retrying", "project_number", p.ProjectNumber, "attempt", attempt)
	}
	return nil, apperr.Conflict("could not assign a unique project number after %d attempts", maxNumberAttempts)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, pid)
}

func (s *ProjectService) GetByNumber(ctx context.Context, number string) (*domain.Project, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperr.Validation("project number is required")
	}
	return s.repo.GetByNumber(ctx, number)
}

// List returns all projects, newest first
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.repo.List(ctx)
}

// Update applies the supplied fields only. The project number cannot change.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	patch.Apply(p)
	if err := validate(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project together with its tracked plans and versions.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotFound
	}
	ok, err := s.repo.Delete(ctx, pid)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	s.log.Info("project deleted", "project_id", pid)
	return nil
}

func validate(p *domain.Project) error {
	switch {
	case p.Name == "":
		return apperr.Validation("name is required")
	case len([]rune(p.Name)) > 255:
		return apperr.Validation("name must be at most 255 characters")
	case !p.Status.Valid():
		return apperr.Validation("unknown status %q", p.Status)
	case p.Budget != nil && *p.Budget <= 0:
		return apperr.Validation("budget must be positive")
	case p.PlotArea != nil && *p.PlotArea <= 0:
		return apperr.Validation("plotArea must be positive")
	}
	return nil
}
