package service

import (
	"context"
	"errors"

	"github.com/planwerk/cockpit-backend/internal/apperr"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

// Verifier compares a scanned version against the head of its plan. Every
// call reads fresh state; nothing is cached.
type Verifier struct {
	d Deps
}

func NewVerifier(d Deps) *Verifier {
	d = d.withDefaults()
	d.Log = d.Log.With("service", "verification")
	return &Verifier{d: d}
}

func unknownCode() (*domain.VerificationResult, error) {
	return &domain.VerificationResult{Status: domain.StatusUnknownCode}, domain.ErrUnknownCode
}

// Verify reports whether scannedID is the current version of its plan.
// Unknown ids, including those whose plan or project was deleted, yield an
// UNKNOWN_CODE result together with domain.ErrUnknownCode.
func (v *Verifier) Verify(ctx context.Context, scannedID string) (*domain.VerificationResult, error) {
	id, err := parseID(scannedID, domain.ErrVersionNotFound)
	if err != nil {
		return unknownCode()
	}

	scanned, err := v.d.Versions.GetByID(ctx, id)
	if err != nil {
		return v.unknownOr(err)
	}
	plan, err := v.d.Plans.GetByID(ctx, scanned.TrackedPlanID)
	if err != nil {
		return v.unknownOr(err)
	}
	project, err := v.d.Projects.GetByID(ctx, plan.ProjectID)
	if err != nil {
		return v.unknownOr(err)
	}

	current, err := v.d.Versions.Current(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		v.d.Log.Error("plan has a scanned version but no current version", "plan_id", plan.ID, "version_id", scanned.ID)
		return nil, apperr.Fatal("plan %s has no current version although version %s exists", plan.ID, scanned.ID)
	}

	ref := &domain.ProjectRef{ID: project.ID, Number: project.ProjectNumber, Name: project.Name}

	if current.ID == scanned.ID {
		createdAt := scanned.CreatedAt
		return &domain.VerificationResult{
			Status:        domain.StatusCurrent,
			PlanTitle:     plan.Title,
			Project:       ref,
			VersionNumber: scanned.VersionNumber,
			CreatedAt:     &createdAt,
		}, nil
	}

	scannedAt, currentAt, currentID := scanned.CreatedAt, current.CreatedAt, current.ID
	return &domain.VerificationResult{
		Status:           domain.StatusStale,
		PlanTitle:        plan.Title,
		Project:          ref,
		ScannedVersion:   scanned.VersionNumber,
		ScannedDate:      &scannedAt,
		CurrentVersion:   current.VersionNumber,
		CurrentDate:      &currentAt,
		CurrentVersionID: &currentID,
	}, nil
}

func (v *Verifier) unknownOr(err error) (*domain.VerificationResult, error) {
	if errors.Is(err, apperr.ErrNotFound) {
		return unknownCode()
	}
	return nil, err
}
