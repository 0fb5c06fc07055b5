package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

const versionColumns = `id, tracked_plan_id, version_number, file_path, description, created_at`

// VersionRepository stores plan versions. Rows are never updated.
type VersionRepository struct {
	db *sql.DB
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func scanVersion(row scanner) (*domain.PlanVersion, error) {
	var v domain.PlanVersion
	if err := row.Scan(&v.ID, &v.TrackedPlanID, &v.VersionNumber, &v.FilePath, &v.Description, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert relies on the (tracked_plan_id, version_number) unique constraint;
// of two concurrent uploads with the same number exactly one succeeds.
func (r *VersionRepository) Insert(ctx context.Context, v *domain.PlanVersion) error {
	const q = `
INSERT INTO plan_versions (id, tracked_plan_id, version_number, file_path, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.db.ExecContext(ctx, q, v.ID, v.TrackedPlanID, v.VersionNumber, v.FilePath, v.Description, v.CreatedAt)
	switch pqCode(err) {
	case "":
		return err
	case uniqueViolation:
		return domain.ErrDuplicateVersion
	case foreignKeyViolation:
		return domain.ErrPlanNotFound
	default:
		return err
	}
}

func (r *VersionRepository) Exists(ctx context.Context, planID uuid.UUID, number int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM plan_versions WHERE tracked_plan_id = $1 AND version_number = $2);`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, planID, number).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *VersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanVersion, error) {
	q := `SELECT ` + versionColumns + ` FROM plan_versions WHERE id = $1;`
	v, err := scanVersion(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVersionNotFound
	}
	return v, err
}

// Current returns the highest numbered version, or nil when there is none.
func (r *VersionRepository) Current(ctx context.Context, planID uuid.UUID) (*domain.PlanVersion, error) {
	q := `SELECT ` + versionColumns + ` FROM plan_versions WHERE tracked_plan_id = $1
ORDER BY version_number DESC LIMIT 1;`
	v, err := scanVersion(r.db.QueryRowContext(ctx, q, planID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *VersionRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanVersion, error) {
	q := `SELECT ` + versionColumns + ` FROM plan_versions WHERE tracked_plan_id = $1
ORDER BY version_number DESC;`
	return r.list(ctx, q, planID)
}

// ListByProject returns the versions of every plan of the project, highest
// number first within each plan.
func (r *VersionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PlanVersion, error) {
	const q = `
SELECT v.id, v.tracked_plan_id, v.version_number, v.file_path, v.description, v.created_at
FROM plan_versions v
JOIN tracked_plans p ON p.id = v.tracked_plan_id
WHERE p.project_id = $1
ORDER BY v.tracked_plan_id, v.version_number DESC;
`
	return r.list(ctx, q, projectID)
}

func (r *VersionRepository) list(ctx context.Context, q string, args ...any) ([]domain.PlanVersion, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PlanVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
