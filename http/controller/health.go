package controller

import (
	"github.com/gin-gonic/gin"

	"filevault/utils"
)

// Health reports liveness and the state of the backing stores.
func (ctrl *Controller) Health(c *gin.Context) {
	ctx := c.Request.Context()

	postgres := "unknown"
	if pg := ctrl.Infra.Postgres; pg != nil {
		postgres = "up"
		if sqlDB, err := pg.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			postgres = "down"
		}
	}

	storage := "unknown"
	if m := ctrl.Infra.Minio; m != nil {
		storage = "up"
		if err := m.HealthCheck(ctx); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Health] Storage check failed: %v", err)
			storage = "down"
		}
	}

	body := gin.H{
		"status":   "ok",
		"postgres": postgres,
		"storage":  storage,
	}

	if postgres == "down" || storage == "down" {
		body["status"] = "degraded"
		utils.JSON503(c, body)
		return
	}
	utils.JSON200(c, body)
}
