package http

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planwerk/cockpit-backend/internal/api/http/response"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

func (h *Handler) latestVersionID(c *gin.Context) {
	ref, err := h.ledger.LatestByHumanKeys(c.Request.Context(), c.Query("projectNumber"), c.Query("planTitle"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *Handler) download(c *gin.Context) {
	dl, err := h.ledger.Download(c.Request.Context(), c.Param("versionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "application/pdf", dl.Data)
}

// verify answers 200 for CURRENT and STALE and 404 with an UNKNOWN_CODE body
// for anything the ledger does not know.
func (h *Handler) verify(c *gin.Context) {
	res, err := h.verifier.Verify(c.Request.Context(), c.Param("versionId"))
	if errors.Is(err, domain.ErrUnknownCode) {
		c.JSON(http.StatusNotFound, res)
		return
	}
	if err != nil {
		h.log.Error("verification failed", "version_id", c.Param("versionId"), "error", err)
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) qrCode(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "size must be an integer")
			return
		}
		size = n
	}

	png, err := h.qr.Render(c.Request.Context(), c.Param("versionId"), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
