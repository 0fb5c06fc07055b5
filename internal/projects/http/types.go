package http

import (
	"github.com/planwerk/cockpit-backend/internal/projects/domain"
	"github.com/planwerk/cockpit-backend/internal/projects/service"
)

type createReq struct {
	Name               string   `json:"name" binding:"required,max=255"`
	Status             string   `json:"status" binding:"omitempty,oneof=AKQUISE IN_BEARBEITUNG PAUSE FERTIGGESTELLT ABGERECHNET ARCHIVIERT"`
	Description        *string  `json:"description"`
	ProjectType        *string  `json:"projectType"`
	ProjectSector      *string  `json:"projectSector"`
	Budget             *float64 `json:"budget"`
	PlotAddress        *string  `json:"plotAddress"`
	PlotArea           *float64 `json:"plotArea"`
	ParcelNumber       *string  `json:"parcelNumber"`
	CadastralCommunity *string  `json:"cadastralCommunity"`
	Zoning             *string  `json:"zoning"`
}

func (r createReq) toInput() service.CreateInput {
	return service.CreateInput{
		Name:               r.Name,
		Status:             domain.Status(r.Status),
		Description:        r.Description,
		ProjectType:        r.ProjectType,
		ProjectSector:      r.ProjectSector,
		Budget:             r.Budget,
		PlotAddress:        r.PlotAddress,
		PlotArea:           r.PlotArea,
		ParcelNumber:       r.ParcelNumber,
		CadastralCommunity: r.CadastralCommunity,
		Zoning:             r.Zoning,
	}
}

// updateReq has no projectNumber field: the number is immutable and an
// incoming value is ignored.
type updateReq struct {
	Name               *string  `json:"name" binding:"omitempty,max=255"`
	Status             *string  `json:"status" binding:"omitempty,oneof=AKQUISE IN_BEARBEITUNG PAUSE FERTIGGESTELLT ABGERECHNET ARCHIVIERT"`
	Description        *string  `json:"description"`
	ProjectType        *string  `json:"projectType"`
	ProjectSector      *string  `json:"projectSector"`
	Budget             *float64 `json:"budget"`
	PlotAddress        *string  `json:"plotAddress"`
	PlotArea           *float64 `json:"plotArea"`
	ParcelNumber       *string  `json:"parcelNumber"`
	CadastralCommunity *string  `json:"cadastralCommunity"`
	Zoning             *string  `json:"zoning"`
}

func (r updateReq) toPatch() domain.Patch {
	p := domain.Patch{
		Name:               r.Name,
		Description:        r.Description,
		ProjectType:        r.ProjectType,
		ProjectSector:      r.ProjectSector,
		Budget:             r.Budget,
		PlotAddress:        r.PlotAddress,
		PlotArea:           r.PlotArea,
		ParcelNumber:       r.ParcelNumber,
		CadastralCommunity: r.CadastralCommunity,
		Zoning:             r.Zoning,
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		p.Status = &s
	}
	return p
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
}

func New(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}
