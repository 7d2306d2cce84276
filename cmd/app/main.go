package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"askdesk/cmd/fx/company_fx"
	"askdesk/cmd/fx/controllers_fx"
	"askdesk/cmd/fx/inquiry_fx"
	"askdesk/cmd/fx/logger_fx"
	"askdesk/cmd/fx/memcache_fx"
	"askdesk/internal/api"
	"askdesk/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	app := fx.New(
		fx.Supply(cfg),
		logger_fx.Module,
		company_fx.Module(cfg),
		memcache_fx.Module,
		inquiry_fx.Module,
		controllers_fx.Module,

		fx.Provide(api.NewRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg config.AppConfig, engine *gin.Engine, log *zap.Logger) {
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listener, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server",
				zap.String("addr", server.Addr),
				zap.String("wizard_mode", string(cfg.WizardMode)),
				zap.String("catalog_source", cfg.CatalogSource),
			)
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
