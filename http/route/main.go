package routes

import (
	"github.com/gin-gonic/gin"

	"filevault/http/controller"
	middlewares "filevault/http/middleware"
	"filevault/utils"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		utils.JSON405(c, "Method not allowed")
	})

	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	r.GET("/healthz", ctrl.Health)

	apiRoutes := r.Group("/api/v1")
	{
		// Token verification is on only when a secret is configured; the
		// identity provider itself is external.
		if ctrl.Config.EnvConfig.JWT.SecretKey != "" {
			apiRoutes.Use(middles.AuthMiddleware)
		}

		apiRoutes.POST("/upload", ctrl.UploadFile)
		apiRoutes.GET("/upload", ctrl.ListFiles)
		apiRoutes.DELETE("/upload", ctrl.DeleteFile)
	}

	return r
}
