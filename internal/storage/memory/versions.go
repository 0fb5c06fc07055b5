package memory

import (
	"context"

	"github.com/google/uuid"

	plandomain "github.com/planwerk/cockpit-backend/internal/plans/domain"
)

type VersionRepo struct {
	s *Store
}

// Insert checks plan existence and number uniqueness and stores v in one
// critical section, so two uploads of the same number cannot both win.
func (r *VersionRepo) Insert(ctx context.Context, v *plandomain.PlanVersion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.plans[v.TrackedPlanID]; !ok {
		return plandomain.ErrPlanNotFound
	}
	for _, existing := range r.s.versions {
		if existing.TrackedPlanID == v.TrackedPlanID && existing.VersionNumber == v.VersionNumber {
			return plandomain.ErrDuplicateVersion
		}
	}
	r.s.versions[v.ID] = cloneVersion(*v)
	return nil
}

func (r *VersionRepo) Exists(ctx context.Context, planID uuid.UUID, number int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, v := range r.s.versions {
		if v.TrackedPlanID == planID && v.VersionNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *VersionRepo) GetByID(ctx context.Context, id uuid.UUID) (*plandomain.PlanVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.versions[id]
	if !ok {
		return nil, plandomain.ErrVersionNotFound
	}
	v = cloneVersion(v)
	return &v, nil
}

// Current returns the version with the highest number, or nil when the plan
// has none.
func (r *VersionRepo) Current(ctx context.Context, planID uuid.UUID) (*plandomain.PlanVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var head *plandomain.PlanVersion
	for _, v := range r.s.versions {
		if v.TrackedPlanID != planID {
			continue
		}
		if head == nil || v.VersionNumber > head.VersionNumber {
			c := cloneVersion(v)
			head = &c
		}
	}
	return head, nil
}

func (r *VersionRepo) ListByPlan(ctx context.Context, planID uuid.UUID) ([]plandomain.PlanVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []plandomain.PlanVersion{}
	for _, v := range r.s.versions {
		if v.TrackedPlanID == planID {
			out = append(out, cloneVersion(v))
		}
	}
	sortVersionsDesc(out)
	return out, nil
}

// ListByProject returns the versions of every plan of the project, highest
// version number first.
func (r *VersionRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]plandomain.PlanVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []plandomain.PlanVersion{}
	for _, v := range r.s.versions {
		row, ok := r.s.plans[v.TrackedPlanID]
		if ok && row.plan.ProjectID == projectID {
			out = append(out, cloneVersion(v))
		}
	}
	sortVersionsDesc(out)
	return out, nil
}
