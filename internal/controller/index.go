package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type IndexController struct {
	*baseController
}

func (ic IndexController) Index(ctx *gin.Context) {
	ctx.String(http.StatusOK, "conference registration api is running")
}

func (ic IndexController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": ic.app.Config.ENV,
	})
}
