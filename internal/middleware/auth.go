package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/openconf/confreg/internal/util"
)

func (m Middleware) AdminAuthMiddleware(ctx *gin.Context) {
	token, err := util.ReadBearerToken(ctx)
	if err != nil {
		m.app.Logger.Debugf("Failed to read token: %v", err)
		util.ResponseFailed(ctx, 401, "Unauthorized", util.GenerateErrorMessages(err, "unauthorized"), nil)
		ctx.Abort()
		return
	}

	claim, err := m.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		m.app.Logger.Debugf("Failed to verify token: %v", err)
		util.ResponseFailed(ctx, 401, "Invalid token", util.GenerateErrorMessages(err, "unauthorized"), nil)
		ctx.Abort()
		return
	}

	if claim.User.Role != "admin" {
		m.app.Logger.Debugf("Rejected non-admin token for: %s", claim.User.Email)
		util.ResponseFailed(ctx, 401, "Admin access required", util.GenerateErrorMessages(errors.New("admin access required"), "unauthorized"), nil)
		ctx.Abort()
		return
	}

	ctx.Set("user", claim.User)
	ctx.Next()
}
