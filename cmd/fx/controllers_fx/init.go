package controllers_fx

import (
	"go.uber.org/fx"

	"askdesk/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewCompanyController),
	fx.Provide(controllers.NewInquiryController))
