package memcache_fx

import (
	"go.uber.org/fx"

	"askdesk/internal/models/wizard_models"
	"askdesk/internal/services"
	mem "askdesk/pkg/memcache"
)

var Module = fx.Provide(
	provideSessionStore,
	provideReceiptStore,
	provideNotificationStore)

func provideSessionStore() mem.Store[*services.InquirySession] {
	return mem.NewTTLStore[*services.InquirySession]()
}

func provideReceiptStore() mem.Store[services.SubmissionReceipt] {
	return mem.NewTTLStore[services.SubmissionReceipt]()
}

func provideNotificationStore() mem.Store[[]wizard_models.Notification] {
	return mem.NewTTLStore[[]wizard_models.Notification]()
}
