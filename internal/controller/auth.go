package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openconf/confreg/internal/auth"
	"github.com/openconf/confreg/internal/util"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	*baseController
}

const ErrInvalidCredentials = "invalid email or password"

// Login exchanges the env-configured admin credentials for a bearer
// token used on the destructive endpoints.
func (ac AuthController) Login(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" form:"email" binding:"required,email"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	var body Request

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	cfg := ac.app.Config.Auth
	if cfg.AdminEmail == "" || cfg.AdminPasswordBcrypt == "" {
		ac.app.Logger.Error("Admin credentials are not configured")
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Admin login is not configured", util.GenerateErrorMessages(errors.New("admin login is not configured")), nil)
		return
	}

	if !strings.EqualFold(body.Email, cfg.AdminEmail) {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Invalid credentials", util.GenerateErrorMessages(errors.New(ErrInvalidCredentials), "email"), nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordBcrypt), []byte(body.Password)); err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Invalid credentials", util.GenerateErrorMessages(errors.New(ErrInvalidCredentials), "password"), nil)
		return
	}

	token, err := ac.app.JWTService.GenerateAdminToken(auth.JWTPayload{
		Email: cfg.AdminEmail,
		Role:  "admin",
	})
	if err != nil {
		ac.app.Logger.Errorf("Failed to generate admin token: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to generate token", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"token": token,
	})
}
