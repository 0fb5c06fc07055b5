package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PlanRepository stores tracked plans in Postgres.
type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func pqCode(err error) string {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return string(pgErr.Code)
	}
	return ""
}

func scanPlan(row scanner) (*domain.TrackedPlan, error) {
	var p domain.TrackedPlan
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, plan *domain.TrackedPlan) error {
	const q = `
INSERT INTO tracked_plans (id, project_id, title, created_at)
VALUES ($1, $2, $3, $4);
`
	_, err := r.db.ExecContext(ctx, q, plan.ID, plan.ProjectID, plan.Title, plan.CreatedAt)
	switch pqCode(err) {
	case "":
		return err
	case uniqueViolation:
		return domain.ErrDuplicateTitle
	case foreignKeyViolation:
		return domain.ErrProjectNotFound
	default:
		return err
	}
}

func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrackedPlan, error) {
	const q = `SELECT id, project_id, title, created_at FROM tracked_plans WHERE id = $1;`
	p, err := scanPlan(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	return p, err
}

func (r *PlanRepository) GetByTitle(ctx context.Context, projectID uuid.UUID, title string) (*domain.TrackedPlan, error) {
	const q = `SELECT id, project_id, title, created_at FROM tracked_plans WHERE project_id = $1 AND title = $2;`
	p, err := scanPlan(r.db.QueryRowContext(ctx, q, projectID, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlanNotFound
	}
	return p, err
}

// ListByProject returns the project's plans in creation order.
func (r *PlanRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TrackedPlan, error) {
	const q = `
SELECT id, project_id, title, created_at
FROM tracked_plans
WHERE project_id = $1
ORDER BY created_at ASC, title ASC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.TrackedPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
