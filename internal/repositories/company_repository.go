package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"askdesk/internal/models/db_models"
	"askdesk/internal/models/wizard_models"
)

// CompanyRepository is the read-only catalog source. ListCompanies returns the
// catalog in insertion order; FindByName returns nil when the name is unknown.
type CompanyRepository interface {
	ListCompanies(ctx context.Context) ([]wizard_models.Company, error)
	FindByName(ctx context.Context, name string) (*wizard_models.Company, error)
}

// ReferenceCatalog is the built-in list of popular companies.
func ReferenceCatalog() []wizard_models.Company {
	return []wizard_models.Company{
		{Name: "삼성전자", Category: wizard_models.CategoryElectronics},
		{Name: "네이버", Category: wizard_models.CategoryTech},
		{Name: "쿠팡", Category: wizard_models.CategoryEcommerce},
		{Name: "카카오", Category: wizard_models.CategoryTech},
		{Name: "현대자동차", Category: wizard_models.CategoryAutomotive},
		{Name: "LG전자", Category: wizard_models.CategoryElectronics},
		{Name: "SK텔레콤", Category: wizard_models.CategoryTelecom},
		{Name: "KB국민은행", Category: wizard_models.CategoryFinance},
		{Name: "11번가", Category: wizard_models.CategoryEcommerce},
		{Name: "GS25", Category: wizard_models.CategoryRetail},
		{Name: "이마트", Category: wizard_models.CategoryRetail},
		{Name: "CJ대한통운", Category: wizard_models.CategoryLogistics},
	}
}

type staticCompanyRepository struct {
	companies []wizard_models.Company
}

// NewStaticCompanyRepository serves a fixed catalog from memory. The slice is
// copied so callers cannot mutate the catalog afterwards.
func NewStaticCompanyRepository(companies []wizard_models.Company) CompanyRepository {
	return &staticCompanyRepository{
		companies: append([]wizard_models.Company(nil), companies...),
	}
}

func (s *staticCompanyRepository) ListCompanies(ctx context.Context) ([]wizard_models.Company, error) {
	return append([]wizard_models.Company(nil), s.companies...), nil
}

func (s *staticCompanyRepository) FindByName(ctx context.Context, name string) (*wizard_models.Company, error) {
	name = strings.TrimSpace(name)
	for _, company := range s.companies {
		if company.Name == name {
			found := company
			return &found, nil
		}
	}
	return nil, nil
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) ListCompanies(ctx context.Context) ([]wizard_models.Company, error) {
	var rows []db_models.Company
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	companies := make([]wizard_models.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, toCompany(row))
	}
	return companies, nil
}

func (r *companyRepository) FindByName(ctx context.Context, name string) (*wizard_models.Company, error) {
	var row db_models.Company
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	company := toCompany(row)
	return &company, nil
}

// SeedCompanies migrates the companies table and inserts any catalog entry
// that is not there yet. Existing rows are left untouched.
func SeedCompanies(ctx context.Context, db *gorm.DB, companies []wizard_models.Company) error {
	if err := db.WithContext(ctx).AutoMigrate(&db_models.Company{}); err != nil {
		return fmt.Errorf("migrating companies: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, company := range companies {
			row := db_models.Company{
				Name:     company.Name,
				Category: string(company.Category),
				Position: i,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("seeding company %s: %w", company.Name, err)
			}
		}
		return nil
	})
}

func toCompany(row db_models.Company) wizard_models.Company {
	return wizard_models.Company{
		Name:     row.Name,
		Category: wizard_models.Category(row.Category),
	}
}
