package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openconf/confreg/internal/controller"
	"github.com/openconf/confreg/internal/middleware"
)

func Registrations(r *gin.RouterGroup, rc *controller.RegistrationController, fc *controller.FileController, middleware *middleware.Middleware) {
	reg := r.Group("/register")
	{
		reg.POST("", rc.Submit)
		reg.GET("", rc.List)
		reg.GET("/:id", rc.Get)
		reg.GET("/file/:id", fc.Download)
		reg.DELETE("/:id", middleware.AdminAuthMiddleware, rc.Delete)
	}
}
