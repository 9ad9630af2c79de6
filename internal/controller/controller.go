package controller

import (
	appcontext "github.com/openconf/confreg/internal/app_context"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index        *IndexController
	Auth         *AuthController
	Registration *RegistrationController
	File         *FileController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:        &IndexController{baseController: bc},
		Auth:         &AuthController{baseController: bc},
		Registration: &RegistrationController{baseController: bc},
		File:         &FileController{baseController: bc},
	}
}
