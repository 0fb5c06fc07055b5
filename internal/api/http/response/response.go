// Package response renders the JSON envelopes shared by every handler.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planwerk/cockpit-backend/internal/apperr"
)

type ErrorEnvelope struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error classifies err and aborts with the matching status. Internal errors
// are not echoed to the client.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		msg = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(kind), ErrorEnvelope{Code: string(kind), Error: msg})
}

// RespondError writes an envelope with an explicit status and code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Code: code, Error: msg})
}

func BadRequest(c *gin.Context, msg string) {
	RespondError(c, http.StatusBadRequest, string(apperr.KindValidation), msg)
}

func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Created(c *gin.Context, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}
