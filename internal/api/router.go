package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"askdesk/internal/api/controllers"
	"askdesk/internal/config"
	"askdesk/pkg/middleware"
)

func NewRouter(
	cfg config.AppConfig,
	log *zap.Logger,
	companyController *controllers.CompanyController,
	inquiryController *controllers.InquiryController) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigin))

	RegisterRoutes(r, companyController, inquiryController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	companyController *controllers.CompanyController,
	inquiryController *controllers.InquiryController) {

	r.GET("/live", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	companies := r.Group("/companies")
	companies.GET("", companyController.SearchCompanies)
	companies.GET("/categories", companyController.ListCategories)

	r.GET("/inquiry-types", inquiryController.ListInquiryTypes)

	sessions := r.Group("/sessions")
	sessions.POST("", inquiryController.StartSession)
	sessions.GET("/:id", inquiryController.GetSession)
	sessions.DELETE("/:id", inquiryController.ExitSession)
	sessions.PUT("/:id/type", inquiryController.SelectType)
	sessions.PUT("/:id/user-info", inquiryController.UpdateUserInfo)
	sessions.PUT("/:id/keywords", inquiryController.UpdateKeywords)
	sessions.PUT("/:id/draft", inquiryController.EditDraft)
	sessions.POST("/:id/attachments", inquiryController.AddAttachments)
	sessions.DELETE("/:id/attachments/:name", inquiryController.RemoveAttachment)
	sessions.POST("/:id/next", inquiryController.Next)
	sessions.POST("/:id/back", inquiryController.Back)
	sessions.POST("/:id/generate", inquiryController.Generate)
	sessions.POST("/:id/submit", inquiryController.Submit)
	sessions.GET("/:id/notifications", inquiryController.ListNotifications)
}
