package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planwerk/cockpit-backend/internal/api/http/response"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
	"github.com/planwerk/cockpit-backend/internal/plans/service"
)

const multipartMemory = 32 << 20

type createPlanReq struct {
	Title string `json:"title" binding:"required,max=255"`
}

func (h *Handler) createPlan(c *gin.Context) {
	var req createPlanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid body: "+err.Error())
		return
	}

	plan, err := h.registry.CreatePlan(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"plan": plan})
}

func (h *Handler) listPlans(c *gin.Context) {
	plans, err := h.registry.ListPlans(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"plans": plans})
}

func (h *Handler) findPlan(c *gin.Context) {
	plan, err := h.registry.FindPlanByTitle(c.Request.Context(), c.Query("projectNumber"), c.Query("planTitle"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"plan": plan})
}

func (h *Handler) getPlan(c *gin.Context) {
	plan, err := h.registry.GetPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"plan": plan})
}

// createVersion accepts multipart/form-data with file, versionNumber and an
// optional description.
func (h *Handler) createVersion(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, "file too large")
			return
		}
		response.BadRequest(c, "expected multipart/form-data: "+err.Error())
		return
	}

	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm("versionNumber")))
	if err != nil {
		response.BadRequest(c, "versionNumber must be a positive integer")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}

	v, err := h.ledger.CreateVersion(c.Request.Context(), service.CreateVersionInput{
		PlanID:        c.Param("planId"),
		VersionNumber: n,
		Description:   c.PostForm("description"),
		FileName:      fh.Filename,
		File:          data,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"version": v})
}

func (h *Handler) currentVersion(c *gin.Context) {
	v, err := h.ledger.GetCurrentVersion(c.Request.Context(), c.Param("planId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if v == nil {
		response.RespondError(c, http.StatusNotFound, "no_current_version", domain.ErrNoCurrentVersion.Error())
		return
	}
	response.OK(c, gin.H{"version": v})
}
