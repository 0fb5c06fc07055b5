package domain

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	StatusCurrent     VerificationStatus = "CURRENT"
	StatusStale       VerificationStatus = "STALE"
	StatusUnknownCode VerificationStatus = "UNKNOWN_CODE"
)

type ProjectRef struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"projectNumber"`
	Name   string    `json:"name"`
}

// VerificationResult is what a field worker sees after scanning a plan.
// CURRENT fills VersionNumber and CreatedAt; STALE fills the scanned and
// current pairs plus CurrentVersionID.
type VerificationResult struct {
	Status    VerificationStatus `json:"status"`
	PlanTitle string             `json:"planTitle,omitempty"`
	Project   *ProjectRef        `json:"project,omitempty"`

	VersionNumber int        `json:"versionNumber,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`

	ScannedVersion   int        `json:"scannedVersion,omitempty"`
	ScannedDate      *time.Time `json:"scannedDate,omitempty"`
	CurrentVersion   int        `json:"currentVersion,omitempty"`
	CurrentDate      *time.Time `json:"currentDate,omitempty"`
	CurrentVersionID *uuid.UUID `json:"currentVersionId,omitempty"`
}
