package domain

import (
	"time"

	"github.com/google/uuid"
)

const EventVersionPublished = "plan_version.published"

// VersionPublished is emitted after a version row has been committed.
type VersionPublished struct {
	Type          string    `json:"type"`
	VersionID     uuid.UUID `json:"versionId"`
	PlanID        uuid.UUID `json:"planId"`
	ProjectID     uuid.UUID `json:"projectId"`
	ProjectNumber string    `json:"projectNumber"`
	PlanTitle     string    `json:"planTitle"`
	VersionNumber int       `json:"versionNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}
