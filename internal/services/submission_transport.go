package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"askdesk/internal/models/wizard_models"
)

type SubmissionPayload struct {
	SessionID            string
	Company              string
	CompanyGuess         string
	SkipCompanySelection bool
	Type                 wizard_models.InquiryType
	UserInfo             wizard_models.UserInfo
	Text                 string
	Attachments          []wizard_models.Attachment
}

type SubmissionReceipt struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Company     string    `json:"company,omitempty"`
	Routed      bool      `json:"routed"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SubmissionTransport delivers a finished inquiry. Errors are treated as
// retryable delivery failures.
type SubmissionTransport interface {
	Submit(ctx context.Context, payload SubmissionPayload) (SubmissionReceipt, error)
}

type simulatedTransport struct {
	delay time.Duration
	log   *zap.Logger
	now   func() time.Time
}

// NewSimulatedTransport waits for delay and then accepts every payload. A
// cancelled context aborts the wait.
func NewSimulatedTransport(delay time.Duration, log *zap.Logger) SubmissionTransport {
	return &simulatedTransport{delay: delay, log: log, now: time.Now}
}

func (t *simulatedTransport) Submit(ctx context.Context, payload SubmissionPayload) (SubmissionReceipt, error) {
	if err := sleepContext(ctx, t.delay); err != nil {
		return SubmissionReceipt{}, err
	}

	receipt := SubmissionReceipt{
		ID:          uuid.New().String(),
		SessionID:   payload.SessionID,
		Company:     payload.Company,
		Routed:      payload.SkipCompanySelection,
		SubmittedAt: t.now().UTC(),
	}
	t.log.Info("inquiry delivered",
		zap.String("receipt_id", receipt.ID),
		zap.String("session_id", payload.SessionID),
		zap.String("company", payload.Company),
		zap.Bool("routed", receipt.Routed),
		zap.String("type", string(payload.Type)),
		zap.Int("attachments", len(payload.Attachments)),
	)
	return receipt, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
