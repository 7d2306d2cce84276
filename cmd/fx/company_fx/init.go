package company_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"askdesk/cmd/fx/db_fx"
	"askdesk/internal/config"
	"askdesk/internal/repositories"
	"askdesk/internal/services"
)

// Module picks the catalog source from config. The postgres source migrates
// and seeds the reference catalog on start.
func Module(cfg config.AppConfig) fx.Option {
	if cfg.CatalogSource == config.CatalogSourcePostgres {
		return fx.Options(
			db_fx.Module,
			fx.Provide(providePostgresCompanyRepo),
			fx.Provide(provideCompanySearchService),
		)
	}
	return fx.Options(
		fx.Provide(provideStaticCompanyRepo),
		fx.Provide(provideCompanySearchService),
	)
}

func provideStaticCompanyRepo() repositories.CompanyRepository {
	return repositories.NewStaticCompanyRepository(repositories.ReferenceCatalog())
}

func providePostgresCompanyRepo(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) repositories.CompanyRepository {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := repositories.SeedCompanies(ctx, db, repositories.ReferenceCatalog()); err != nil {
				return err
			}
			log.Info("company catalog seeded")
			return nil
		},
	})
	return repositories.NewCompanyRepository(db)
}

func provideCompanySearchService(companyRepo repositories.CompanyRepository, log *zap.Logger) services.CompanySearchServiceInterface {
	return services.NewCompanySearchService(companyRepo, log.Named("company"))
}
