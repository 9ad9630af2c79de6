package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openconf/confreg/internal/controller"
)

func Auth(r *gin.RouterGroup, ac *controller.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", ac.Login)
	}
}
