package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/planwerk/cockpit-backend/config"
)

func SetGinMode(cfg *config.AppConfig) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}
