package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"askdesk/internal/models/wizard_models"
	mem "askdesk/pkg/memcache"
)

// NotificationSink receives fire-and-forget user notifications.
type NotificationSink interface {
	Notify(ctx context.Context, sessionID string, notification wizard_models.Notification)
}

type logNotificationSink struct {
	log *zap.Logger
}

func NewLogNotificationSink(log *zap.Logger) NotificationSink {
	return &logNotificationSink{log: log}
}

func (s *logNotificationSink) Notify(ctx context.Context, sessionID string, notification wizard_models.Notification) {
	s.log.Info("notification",
		zap.String("session_id", sessionID),
		zap.String("title", notification.Title),
		zap.String("description", notification.Description),
	)
}

// NotificationFeed keeps recent notifications per session so a client can read
// them after the session itself has been torn down.
type NotificationFeed struct {
	mu    sync.Mutex
	store mem.Store[[]wizard_models.Notification]
	ttl   time.Duration
}

func NewNotificationFeed(store mem.Store[[]wizard_models.Notification], ttl time.Duration) *NotificationFeed {
	return &NotificationFeed{store: store, ttl: ttl}
}

func (f *NotificationFeed) Notify(ctx context.Context, sessionID string, notification wizard_models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, _ := f.store.Get(sessionID)
	updated := append(append([]wizard_models.Notification{}, existing...), notification)
	f.store.Set(sessionID, updated, f.ttl)
}

// Open registers an empty feed for a new session.
func (f *NotificationFeed) Open(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.store.Get(sessionID); !ok {
		f.store.Set(sessionID, []wizard_models.Notification{}, f.ttl)
	}
}

func (f *NotificationFeed) List(sessionID string) ([]wizard_models.Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	notifications, ok := f.store.Get(sessionID)
	if !ok {
		return nil, false
	}
	return append([]wizard_models.Notification{}, notifications...), true
}

func (f *NotificationFeed) Sweep() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store.Sweep()
}
