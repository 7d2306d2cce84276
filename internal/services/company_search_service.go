package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"askdesk/internal/models/response_models"
	"askdesk/internal/models/wizard_models"
	"askdesk/internal/repositories"
	"askdesk/pkg/utils"
)

// FilterCompanies keeps the companies whose name contains searchTerm
// (case-insensitive) and whose category matches. CategoryAll and the empty
// category match everything. Catalog order is preserved.
func FilterCompanies(companies []wizard_models.Company, searchTerm string, category wizard_models.Category) []wizard_models.Company {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	matchAll := category == "" || category == wizard_models.CategoryAll

	filtered := make([]wizard_models.Company, 0, len(companies))
	for _, company := range companies {
		if !strings.Contains(strings.ToLower(company.Name), term) {
			continue
		}
		if !matchAll && company.Category != category {
			continue
		}
		filtered = append(filtered, company)
	}
	return filtered
}

// SearchHeading is the title shown above a result list.
func SearchHeading(searchTerm string, category wizard_models.Category) string {
	term := strings.TrimSpace(searchTerm)
	switch {
	case term != "":
		return fmt.Sprintf("%q 검색 결과", term)
	case category == "" || category == wizard_models.CategoryAll:
		return "인기 기업"
	default:
		return fmt.Sprintf("%s 기업", category.Label())
	}
}

type CompanySearchServiceInterface interface {
	Search(ctx context.Context, searchTerm string, category string) (response_models.CompanySearchResponse, error)
	Categories() []response_models.CategoryResponse
	FindCompany(ctx context.Context, name string) (*wizard_models.Company, error)
}

type CompanySearchService struct {
	companyRepo repositories.CompanyRepository
	log         *zap.Logger
}

func NewCompanySearchService(companyRepo repositories.CompanyRepository, log *zap.Logger) CompanySearchServiceInterface {
	return &CompanySearchService{
		companyRepo: companyRepo,
		log:         log,
	}
}

func (s *CompanySearchService) Search(ctx context.Context, searchTerm string, category string) (response_models.CompanySearchResponse, error) {
	companies, err := s.companyRepo.ListCompanies(ctx)
	if err != nil {
		s.log.Error("listing companies failed", zap.Error(err))
		return response_models.CompanySearchResponse{}, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	cat := wizard_models.Category(strings.ToLower(strings.TrimSpace(category)))
	filtered := FilterCompanies(companies, searchTerm, cat)

	results := make([]response_models.CompanyResponse, 0, len(filtered))
	for _, company := range filtered {
		results = append(results, toCompanyResponse(company))
	}

	return response_models.CompanySearchResponse{
		Heading:   SearchHeading(searchTerm, cat),
		Companies: results,
		Total:     len(results),
		CanSkip:   true,
	}, nil
}

func (s *CompanySearchService) Categories() []response_models.CategoryResponse {
	categories := make([]response_models.CategoryResponse, 0, len(wizard_models.FilterCategories))
	for _, category := range wizard_models.FilterCategories {
		categories = append(categories, response_models.CategoryResponse{
			ID:    string(category),
			Label: category.Label(),
		})
	}
	return categories
}

func (s *CompanySearchService) FindCompany(ctx context.Context, name string) (*wizard_models.Company, error) {
	if strings.TrimSpace(name) == "" {
		return nil, utils.ErrCompanyNotFound
	}
	company, err := s.companyRepo.FindByName(ctx, name)
	if err != nil {
		s.log.Error("finding company failed", zap.String("company", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if company == nil {
		return nil, utils.ErrCompanyNotFound
	}
	return company, nil
}

func toCompanyResponse(company wizard_models.Company) response_models.CompanyResponse {
	return response_models.CompanyResponse{
		Name:          company.Name,
		Category:      string(company.Category),
		CategoryLabel: company.Category.Label(),
	}
}
