package domain

import "github.com/planwerk/cockpit-backend/internal/apperr"

var (
	ErrNotFound = apperr.NotFound("project not found")
	// ErrNumberTaken is returned by repositories when another project won
	// the race for the same number.
	ErrNumberTaken = apperr.Conflict("project number already taken")
)
