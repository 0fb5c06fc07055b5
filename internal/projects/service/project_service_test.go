package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwerk/cockpit-backend/internal/apperr"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	"github.com/planwerk/cockpit-backend/internal/projects/domain"
	"github.com/planwerk/cockpit-backend/internal/storage/memory"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func setupService(t *testing.T, now time.Time) (*ProjectService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewProjectService(store.Projects(), logger.NewNop()).WithClock(fixedClock(now))
	return svc, store
}

func TestProjectService_CreateAssignsSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))

	first, err := svc.Create(ctx, CreateInput{Name: "Haus Berger"})
	require.NoError(t, err)
	assert.Equal(t, "24-001", first.ProjectNumber)
	assert.Equal(t, domain.StatusAcquisition, first.Status)

	second, err := svc.Create(ctx, CreateInput{Name: "  Neubau Lager  ", Status: domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "24-002", second.ProjectNumber)
	assert.Equal(t, "Neubau Lager", second.Name)
}

func TestProjectService_NumbersRestartEachYear(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))

	_, err := svc.Create(ctx, CreateInput{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "B"})
	require.NoError(t, err)

	svc.WithClock(fixedClock(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)))
	p, err := svc.Create(ctx, CreateInput{Name: "C"})
	require.NoError(t, err)
	assert.Equal(t, "25-001", p.ProjectNumber)
}

// racingRepo lets another writer claim the computed number right before the
// first few inserts.
type racingRepo struct {
	*memory.ProjectRepo
	steals int
}

func (r *racingRepo) Create(ctx context.Context, p *domain.Project) error {
	if r.steals > 0 {
		r.steals--
		thief := &domain.Project{ID: uuid.New(), ProjectNumber: p.ProjectNumber, Name: "concurrent", Status: domain.StatusAcquisition}
		if err := r.ProjectRepo.Create(ctx, thief); err != nil {
			return err
		}
	}
	return r.ProjectRepo.Create(ctx, p)
}

func TestProjectService_CreateRetriesOnNumberRace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := &racingRepo{ProjectRepo: store.Projects(), steals: 2}
	svc := NewProjectService(repo, logger.NewNop()).WithClock(fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

	p, err := svc.Create(ctx, CreateInput{Name: "Haus Berger"})
	require.NoError(t, err)
	assert.Equal(t, "24-003", p.ProjectNumber)
}

func TestProjectService_CreateGivesUpAfterBoundedRetries(t *testing.T) {
	store := memory.New()
	repo := &racingRepo{ProjectRepo: store.Projects(), steals: maxNumberAttempts}
	svc := NewProjectService(repo, logger.NewNop())

	_, err := svc.Create(context.Background(), CreateInput{Name: "Haus Berger"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestProjectService_CreateValidation(t *testing.T) {
	svc, store := setupService(t, time.Now())
	zero := 0.0
	long := make([]rune, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "   "}},
		{"name too long", CreateInput{Name: string(long)}},
		{"unknown status", CreateInput{Name: "X", Status: "DONE"}},
		{"zero budget", CreateInput{Name: "X", Budget: &zero}},
		{"zero plot area", CreateInput{Name: "X", PlotArea: &zero}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	items, err := store.Projects().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProjectService_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))

	desc := "Umbau Dachgeschoss"
	p, err := svc.Create(ctx, CreateInput{Name: "Haus Berger", Description: &desc})
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.ProjectNumber, got.ProjectNumber)

	byNumber, err := svc.GetByNumber(ctx, " 24-001 ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byNumber.ID)

	status := domain.StatusPaused
	updated, err := svc.Update(ctx, p.ID.String(), domain.Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, updated.Status)
	assert.Equal(t, "Haus Berger", updated.Name)
	assert.Equal(t, "24-001", updated.ProjectNumber)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Umbau Dachgeschoss", *updated.Description)

	bad := domain.Status("UNKNOWN")
	_, err = svc.Update(ctx, p.ID.String(), domain.Patch{Status: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	stored, err := svc.Get(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, stored.Status, "rejected patch leaves the row untouched")
}

func TestProjectService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, time.Now())

	_, err := svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByNumber(ctx, "99-999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByNumber(ctx, " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	name := "x"
	_, err = svc.Update(ctx, uuid.NewString(), domain.Patch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.NewString()), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "garbage"), domain.ErrNotFound)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, time.Now())

	p, err := svc.Create(ctx, CreateInput{Name: "Haus Berger"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID.String()))
	_, err = svc.Get(ctx, p.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
