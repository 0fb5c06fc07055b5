package bootstrap

import (
	"github.com/gin-gonic/gin"

	httpapi "github.com/planwerk/cockpit-backend/internal/api/http"
	"github.com/planwerk/cockpit-backend/internal/api/http/middleware"
	planhttp "github.com/planwerk/cockpit-backend/internal/plans/http"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
	projhttp "github.com/planwerk/cockpit-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	APIKey         string
	AllowedOrigins []string
	Log            *logger.Logger

	DBPing    httpapi.Pinger
	RedisPing httpapi.Pinger

	Projects    *projhttp.Handler
	Plans       *planhttp.Handler
	RateLimiter *middleware.IPRateLimiter
}

// BuildRouter mounts the cockpit API under /api/v1 behind the API key and
// the scan API under /api/v1/public behind the per-IP rate limiter.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(dep.AllowedOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(dep.Log))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DBPing, dep.RedisPing)
	healthHandler.RegisterRoutes(r)

	public := r.Group("/api/v1/public")
	if dep.RateLimiter != nil {
		public.Use(dep.RateLimiter.Middleware())
	}
	dep.Plans.RegisterPublic(public)

	api := r.Group("/api/v1")
	api.Use(middleware.APIKey(dep.APIKey))

	dep.Projects.Register(api.Group("/projects"))
	dep.Plans.RegisterCockpit(api)

	return r
}
