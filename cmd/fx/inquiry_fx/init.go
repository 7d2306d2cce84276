package inquiry_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"askdesk/internal/config"
	"askdesk/internal/models/wizard_models"
	"askdesk/internal/services"
	mem "askdesk/pkg/memcache"
)

var Module = fx.Options(
	fx.Provide(
		provideTemplateEngine,
		provideSubmissionTransport,
		provideNotificationFeed,
		provideNotificationSink,
		provideInquiryFlowService,
	),
	fx.Invoke(registerSweeper),
)

func provideTemplateEngine(cfg config.AppConfig) (services.InquiryTemplateEngine, error) {
	return services.NewInquiryTemplateEngine(cfg.TemplateLocale)
}

func provideSubmissionTransport(cfg config.AppConfig, log *zap.Logger) services.SubmissionTransport {
	return services.NewSimulatedTransport(cfg.SubmissionDelay, log.Named("transport"))
}

// Feeds outlive their session by one TTL so clients can read the final
// notification after teardown.
func provideNotificationFeed(cfg config.AppConfig, store mem.Store[[]wizard_models.Notification]) *services.NotificationFeed {
	return services.NewNotificationFeed(store, 2*cfg.SessionTTL)
}

func provideNotificationSink(log *zap.Logger) services.NotificationSink {
	return services.NewLogNotificationSink(log.Named("notify"))
}

func provideInquiryFlowService(
	cfg config.AppConfig,
	companies services.CompanySearchServiceInterface,
	engine services.InquiryTemplateEngine,
	transport services.SubmissionTransport,
	sink services.NotificationSink,
	feed *services.NotificationFeed,
	sessions mem.Store[*services.InquirySession],
	receipts mem.Store[services.SubmissionReceipt],
	log *zap.Logger,
) services.InquiryFlowServiceInterface {
	return services.NewInquiryFlowService(
		companies,
		engine,
		transport,
		sink,
		feed,
		sessions,
		receipts,
		services.FlowOptions{
			Mode:            cfg.WizardMode,
			Policy:          cfg.RegenerationPolicy,
			GenerationDelay: cfg.GenerationDelay,
			SessionTTL:      cfg.SessionTTL,
		},
		log.Named("inquiry"),
	)
}

func registerSweeper(lc fx.Lifecycle, cfg config.AppConfig, flow services.InquiryFlowServiceInterface) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						flow.SweepExpired()
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
