package http

import "github.com/gin-gonic/gin"

// RegisterCockpit attaches the internal plan routes. api is the /api/v1
// group, already behind the API key middleware.
func (h *Handler) RegisterCockpit(api *gin.RouterGroup) {
	api.POST("/projects/:id/tracked-plans", h.createPlan)
	api.GET("/projects/:id/tracked-plans", h.listPlans)

	plans := api.Group("/plans")
	plans.GET("", h.findPlan)
	plans.GET("/:planId", h.getPlan)
	plans.POST("/:planId/versions", h.createVersion)
	plans.GET("/:planId/versions/current", h.currentVersion)
	plans.GET("/:planId/events", h.streamEvents)
}

// RegisterPublic attaches the scan routes used from the field.
func (h *Handler) RegisterPublic(public *gin.RouterGroup) {
	public.GET("/get-latest-plan-version-id", h.latestVersionID)
	public.GET("/plan-download/:versionId", h.download)
	public.GET("/verify/:versionId", h.verify)
	public.GET("/plan-versions/:versionId/qr.png", h.qrCode)
}
