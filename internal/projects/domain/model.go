package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAcquisition Status = "AKQUISE"
	StatusInProgress  Status = "IN_BEARBEITUNG"
	StatusPaused      Status = "PAUSE"
	StatusCompleted   Status = "FERTIGGESTELLT"
	StatusInvoiced    Status = "ABGERECHNET"
	StatusArchived    Status = "ARCHIVIERT"
)

var statuses = []Status{
	StatusAcquisition,
	StatusInProgress,
	StatusPaused,
	StatusCompleted,
	StatusInvoiced,
	StatusArchived,
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Statuses lists the lifecycle states in workflow order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

// Project is one commission of the firm. ProjectNumber is assigned once at
// creation and never changes.
type Project struct {
	ID                 uuid.UUID `json:"id"`
	ProjectNumber      string    `json:"projectNumber"`
	Name               string    `json:"name"`
	Status             Status    `json:"status"`
	Description        *string   `json:"description,omitempty"`
	ProjectType        *string   `json:"projectType,omitempty"`
	ProjectSector      *string   `json:"projectSector,omitempty"`
	Budget             *float64  `json:"budget,omitempty"`
	PlotAddress        *string   `json:"plotAddress,omitempty"`
	PlotArea           *float64  `json:"plotArea,omitempty"`
	ParcelNumber       *string   `json:"parcelNumber,omitempty"`
	CadastralCommunity *string   `json:"cadastralCommunity,omitempty"`
	Zoning             *string   `json:"zoning,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name               *string
	Status             *Status
	Description        *string
	ProjectType        *string
	ProjectSector      *string
	Budget             *float64
	PlotAddress        *string
	PlotArea           *float64
	ParcelNumber       *string
	CadastralCommunity *string
	Zoning             *string
}

// Apply copies every supplied field onto p.
func (pt Patch) Apply(p *Project) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Status != nil {
		p.Status = *pt.Status
	}
	setString(&p.Description, pt.Description)
	setString(&p.ProjectType, pt.ProjectType)
	setString(&p.ProjectSector, pt.ProjectSector)
	setString(&p.PlotAddress, pt.PlotAddress)
	setString(&p.ParcelNumber, pt.ParcelNumber)
	setString(&p.CadastralCommunity, pt.CadastralCommunity)
	setString(&p.Zoning, pt.Zoning)
	if pt.Budget != nil {
		v := *pt.Budget
		p.Budget = &v
	}
	if pt.PlotArea != nil {
		v := *pt.PlotArea
		p.PlotArea = &v
	}
}

func setString(dst **string, src *string) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
}
