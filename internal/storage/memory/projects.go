package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	projdomain "github.com/planwerk/cockpit-backend/internal/projects/domain"
)

type ProjectRepo struct {
	s *Store
}

func (r *ProjectRepo) Create(ctx context.Context, p *projdomain.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.projects {
		if row.project.ProjectNumber == p.ProjectNumber {
			return projdomain.ErrNumberTaken
		}
	}
	r.s.projects[p.ID] = &projectRow{project: *p, seq: r.s.next()}
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*projdomain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.projects[id]
	if !ok {
		return nil, projdomain.ErrNotFound
	}
	p := row.project
	return &p, nil
}

func (r *ProjectRepo) GetByNumber(ctx context.Context, number string) (*projdomain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.projects {
		if row.project.ProjectNumber == number {
			p := row.project
			return &p, nil
		}
	}
	return nil, projdomain.ErrNotFound
}

func (r *ProjectRepo) List(ctx context.Context) ([]projdomain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*projectRow, 0, len(r.s.projects))
	for _, row := range r.s.projects {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.project.CreatedAt.Equal(b.project.CreatedAt) {
			return a.project.CreatedAt.After(b.project.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]projdomain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.project)
	}
	return out, nil
}

func (r *ProjectRepo) NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []string
	for _, row := range r.s.projects {
		if strings.HasPrefix(row.project.ProjectNumber, prefix) {
			out = append(out, row.project.ProjectNumber)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *projdomain.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.projects[p.ID]
	if !ok {
		return projdomain.ErrNotFound
	}
	updated := *p
	updated.ProjectNumber = row.project.ProjectNumber
	updated.CreatedAt = row.project.CreatedAt
	row.project = updated
	return nil
}

// Delete cascades to the project's plans and their versions.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return false, nil
	}
	delete(r.s.projects, id)

	for planID, row := range r.s.plans {
		if row.plan.ProjectID != id {
			continue
		}
		for versionID, v := range r.s.versions {
			if v.TrackedPlanID == planID {
				delete(r.s.versions, versionID)
			}
		}
		delete(r.s.plans, planID)
	}
	return true, nil
}
