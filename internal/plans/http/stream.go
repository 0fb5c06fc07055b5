package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planwerk/cockpit-backend/internal/api/http/response"
)

// streamEvents pushes version events of one plan to the client using
// Server-Sent Events.
func (h *Handler) streamEvents(c *gin.Context) {
	if h.sub == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "events_unavailable", "event stream is not configured")
		return
	}

	ctx := c.Request.Context()
	plan, err := h.registry.GetPlan(ctx, c.Param("planId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	sub, err := h.sub.SubscribePlan(ctx, plan.ID)
	if err != nil {
		h.log.Error("event subscription failed", "plan_id", plan.ID, "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "events_unavailable", "event stream is not available")
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	initial, _ := json.Marshal(gin.H{"plan": plan})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: version\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
