package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	plandomain "github.com/planwerk/cockpit-backend/internal/plans/domain"
)

type PlanRepo struct {
	s *Store
}

func (r *PlanRepo) Create(ctx context.Context, plan *plandomain.TrackedPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[plan.ProjectID]; !ok {
		return plandomain.ErrProjectNotFound
	}
	for _, row := range r.s.plans {
		if row.plan.ProjectID == plan.ProjectID && row.plan.Title == plan.Title {
			return plandomain.ErrDuplicateTitle
		}
	}
	stored := *plan
	stored.Versions = nil
	r.s.plans[plan.ID] = &planRow{plan: stored, seq: r.s.next()}
	return nil
}

func (r *PlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*plandomain.TrackedPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.plans[id]
	if !ok {
		return nil, plandomain.ErrPlanNotFound
	}
	p := row.plan
	return &p, nil
}

func (r *PlanRepo) GetByTitle(ctx context.Context, projectID uuid.UUID, title string) (*plandomain.TrackedPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.plans {
		if row.plan.ProjectID == projectID && row.plan.Title == title {
			p := row.plan
			return &p, nil
		}
	}
	return nil, plandomain.ErrPlanNotFound
}

// ListByProject returns the project's plans in creation order.
func (r *PlanRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]plandomain.TrackedPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []*planRow
	for _, row := range r.s.plans {
		if row.plan.ProjectID == projectID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.plan.CreatedAt.Equal(b.plan.CreatedAt) {
			return a.plan.CreatedAt.Before(b.plan.CreatedAt)
		}
		return a.seq < b.seq
	})

	out := make([]plandomain.TrackedPlan, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.plan)
	}
	return out, nil
}
