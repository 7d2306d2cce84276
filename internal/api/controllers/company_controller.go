package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"askdesk/internal/models/request_models"
	"askdesk/internal/services"
	"askdesk/pkg/utils"
)

type CompanyController struct {
	companyService services.CompanySearchServiceInterface
}

func NewCompanyController(companyService services.CompanySearchServiceInterface) *CompanyController {
	return &CompanyController{
		companyService: companyService,
	}
}

// SearchCompanies godoc
// @Summary Search companies
// @Description Filter the company catalog by a case-insensitive name fragment and a category
// @Tags Company
// @Produce json
// @Param q query string false "Name fragment"
// @Param category query string false "Category id" default(all)
// @Success 200 {object} response_models.CompanySearchResponse
// @Failure 400 {object} utils.APIResponse
// @Router /companies [get]
func (cc *CompanyController) SearchCompanies(c *gin.Context) {
	var query request_models.CompanySearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid search query")
		return
	}

	result, err := cc.companyService.Search(c.Request.Context(), query.Q, query.Category)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Companies fetched successfully")
}

// ListCategories godoc
// @Summary List company categories
// @Tags Company
// @Produce json
// @Success 200 {array} response_models.CategoryResponse
// @Router /companies/categories [get]
func (cc *CompanyController) ListCategories(c *gin.Context) {
	utils.RespondSuccess(c, cc.companyService.Categories(), "Categories fetched successfully")
}
