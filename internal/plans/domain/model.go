package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrackedPlan is the stable identity of one drawing across its revisions,
// e.g. "Grundriss EG" of project 24-007.
type TrackedPlan struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	// Versions is filled by reads that return a plan with its history,
	// highest version first.
	Versions []PlanVersion `json:"versions"`
}

// PlanVersion is one uploaded revision. Rows are append-only; the id is
// what ends up in the QR code printed on the sheet.
type PlanVersion struct {
	ID            uuid.UUID `json:"id"`
	TrackedPlanID uuid.UUID `json:"trackedPlanId"`
	VersionNumber int       `json:"versionNumber"`
	FilePath      string    `json:"filePath"`
	Description   *string   `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LatestVersionRef answers the lookup by project number and plan title.
type LatestVersionRef struct {
	VersionID     uuid.UUID `json:"versionId"`
	VersionNumber int       `json:"versionNumber"`
}

type Download struct {
	FileName string
	Data     []byte
}
