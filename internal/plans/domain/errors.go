package domain

import (
	"github.com/planwerk/cockpit-backend/internal/apperr"
	projdomain "github.com/planwerk/cockpit-backend/internal/projects/domain"
)

var (
	// ErrProjectNotFound is the project registry's own sentinel, so lookups
	// through either repository match it.
	ErrProjectNotFound  = projdomain.ErrNotFound
	ErrPlanNotFound     = apperr.NotFound("tracked plan not found")
	ErrVersionNotFound  = apperr.NotFound("plan version not found")
	ErrUnknownCode      = apperr.NotFound("unknown verification code")
	ErrNoCurrentVersion = apperr.NotFound("plan has no versions yet")
	ErrDuplicateTitle   = apperr.Conflict("a plan with this title already exists in the project")
	ErrDuplicateVersion = apperr.Conflict("version number already exists")
)
