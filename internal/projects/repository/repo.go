package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/planwerk/cockpit-backend/internal/projects/domain"
)

const uniqueViolation = "23505"

const projectColumns = `id, project_number, name, status, description, project_type, project_sector,
	budget, plot_address, plot_area, parcel_number, cadastral_community, zoning, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.ProjectNumber, &p.Name, &p.Status, &p.Description, &p.ProjectType, &p.ProjectSector,
		&p.Budget, &p.PlotAddress, &p.PlotArea, &p.ParcelNumber, &p.CadastralCommunity, &p.Zoning,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p. A clash on project_number yields domain.ErrNumberTaken so
// the caller can pick the next number and retry.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const q = `
INSERT INTO projects (id, project_number, name, status, description, project_type, project_sector,
	budget, plot_address, plot_area, parcel_number, cadastral_community, zoning, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.ProjectNumber, p.Name, p.Status, p.Description, p.ProjectType, p.ProjectSector,
		p.Budget, p.PlotAddress, p.PlotArea, p.ParcelNumber, p.CadastralCommunity, p.Zoning,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrNumberTaken
		}
		return err
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *ProjectRepository) GetByNumber(ctx context.Context, number string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE project_number = $1;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// List returns all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, project_number DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NumbersWithPrefix returns every project number starting with prefix.
func (r *ProjectRepository) NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT project_number FROM projects WHERE project_number LIKE $1 || '%';`
	rows, err := r.db.QueryContext(ctx, q, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update writes every mutable column of p. The project number is never touched.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const q = `
UPDATE projects
SET name = $2, status = $3, description = $4, project_type = $5, project_sector = $6,
	budget = $7, plot_address = $8, plot_area = $9, parcel_number = $10,
	cadastral_community = $11, zoning = $12, updated_at = $13
WHERE id = $1;
`
	result, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Status, p.Description, p.ProjectType, p.ProjectSector,
		p.Budget, p.PlotAddress, p.PlotArea, p.ParcelNumber, p.CadastralCommunity, p.Zoning,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the project; tracked plans and versions go with it through
// ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
