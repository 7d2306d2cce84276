package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"askdesk/internal/models/request_models"
	"askdesk/internal/models/response_models"
	"askdesk/internal/models/wizard_models"
	mem "askdesk/pkg/memcache"
	"askdesk/pkg/utils"
)

const routingCompanyLabel = "저희가 찾아드려요"

var (
	generationDoneNotification = wizard_models.Notification{
		Title:       "AI 문구 생성 완료",
		Description: "문의 내용이 자동으로 작성되었습니다. 수정하여 사용하세요.",
	}
	generationFailedNotification = wizard_models.Notification{
		Title:       "AI 문구 생성 실패",
		Description: "문의 내용을 자동으로 작성하지 못했습니다. 직접 입력하거나 다시 시도해주세요.",
	}
	submissionFailedNotification = wizard_models.Notification{
		Title:       "문의 전송 실패",
		Description: "문의를 전송하지 못했습니다. 잠시 후 다시 시도해주세요.",
	}
)

// InquirySession owns one wizard and the runtime state around it. Every field
// is guarded by mu.
type InquirySession struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	wizard    *Wizard

	// ctx lives as long as the session; background work derives from it.
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	autoText      string
	edited        bool
	generating    bool
	generationSeq uint64
	submitting    bool
}

type FlowOptions struct {
	Mode            wizard_models.WizardMode
	Policy          wizard_models.RegenerationPolicy
	GenerationDelay time.Duration
	SessionTTL      time.Duration
}

type InquiryFlowServiceInterface interface {
	InquiryTypes() []wizard_models.InquiryTypeInfo
	StartSession(ctx context.Context, request request_models.StartSessionRequest) (response_models.SessionResponse, error)
	Session(ctx context.Context, sessionID string) (response_models.SessionResponse, error)
	SelectType(ctx context.Context, sessionID string, rawType string) (response_models.SessionResponse, error)
	UpdateUserInfo(ctx context.Context, sessionID string, info wizard_models.UserInfo) (response_models.SessionResponse, error)
	UpdateKeywords(ctx context.Context, sessionID string, keywords string) (response_models.SessionResponse, error)
	EditDraft(ctx context.Context, sessionID string, text string) (response_models.SessionResponse, error)
	AddAttachments(ctx context.Context, sessionID string, files []wizard_models.Attachment) (response_models.SessionResponse, error)
	RemoveAttachment(ctx context.Context, sessionID string, name string) (response_models.SessionResponse, error)
	Next(ctx context.Context, sessionID string) (response_models.SessionResponse, error)
	Back(ctx context.Context, sessionID string) (response_models.SessionResponse, error)
	Generate(ctx context.Context, sessionID string) (*Task[string], response_models.SessionResponse, error)
	Submit(ctx context.Context, sessionID string) (response_models.SubmissionResponse, error)
	Exit(ctx context.Context, sessionID string) error
	Notifications(ctx context.Context, sessionID string) ([]wizard_models.Notification, error)
	SweepExpired() int
}

type InquiryFlowService struct {
	companies CompanySearchServiceInterface
	engine    InquiryTemplateEngine
	transport SubmissionTransport
	notifier  NotificationSink
	feed      *NotificationFeed
	sessions  mem.Store[*InquirySession]
	receipts  mem.Store[SubmissionReceipt]
	opts      FlowOptions
	log       *zap.Logger
}

func NewInquiryFlowService(
	companies CompanySearchServiceInterface,
	engine InquiryTemplateEngine,
	transport SubmissionTransport,
	notifier NotificationSink,
	feed *NotificationFeed,
	sessions mem.Store[*InquirySession],
	receipts mem.Store[SubmissionReceipt],
	opts FlowOptions,
	log *zap.Logger,
) InquiryFlowServiceInterface {
	if !opts.Mode.IsValid() {
		opts.Mode = wizard_models.WizardModeClassic
	}
	if !opts.Policy.IsValid() {
		opts.Policy = wizard_models.RegenerationPreserveEdits
	}
	return &InquiryFlowService{
		companies: companies,
		engine:    engine,
		transport: transport,
		notifier:  notifier,
		feed:      feed,
		sessions:  sessions,
		receipts:  receipts,
		opts:      opts,
		log:       log,
	}
}

func (s *InquiryFlowService) InquiryTypes() []wizard_models.InquiryTypeInfo {
	return append([]wizard_models.InquiryTypeInfo{}, wizard_models.InquiryTypes...)
}

func (s *InquiryFlowService) StartSession(ctx context.Context, request request_models.StartSessionRequest) (response_models.SessionResponse, error) {
	name := strings.TrimSpace(request.Company)

	var company *wizard_models.Company
	switch {
	case request.SkipCompanySelection && name != "":
		return response_models.SessionResponse{}, utils.NewValidationError("company", "기업을 건너뛸 때는 기업명을 지정할 수 없습니다")
	case !request.SkipCompanySelection:
		if name == "" {
			return response_models.SessionResponse{}, utils.NewValidationError("company", "문의할 기업을 선택해주세요")
		}
		found, err := s.companies.FindCompany(ctx, name)
		if err != nil {
			return response_models.SessionResponse{}, err
		}
		company = found
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &InquirySession{
		id:        uuid.New().String(),
		createdAt: time.Now(),
		wizard:    NewWizard(s.opts.Mode, company),
		ctx:       sessCtx,
		cancel:    cancel,
	}
	s.sessions.Set(sess.id, sess, s.opts.SessionTTL)
	s.feed.Open(sess.id)

	s.log.Info("inquiry session started",
		zap.String("session_id", sess.id),
		zap.String("mode", string(s.opts.Mode)),
		zap.String("company", name),
		zap.Bool("skip_company_selection", request.SkipCompanySelection),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

func (s *InquiryFlowService) Session(ctx context.Context, sessionID string) (response_models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return response_models.SessionResponse{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return response_models.SessionResponse{}, utils.ErrSessionClosed
	}
	return s.view(sess), nil
}

func (s *InquiryFlowService) SelectType(ctx context.Context, sessionID string, rawType string) (response_models.SessionResponse, error) {
	inquiryType, ok := wizard_models.ParseInquiryType(rawType)
	if !ok {
		return response_models.SessionResponse{}, fmt.Errorf("%w: %q", utils.ErrInvalidInquiryType, rawType)
	}
	return s.mutate(sessionID, func(sess *InquirySession) error {
		if err := sess.wizard.SelectType(inquiryType); err != nil {
			return err
		}
		return s.onContextChange(sess)
	})
}

func (s *InquiryFlowService) UpdateUserInfo(ctx context.Context, sessionID string, info wizard_models.UserInfo) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		if err := sess.wizard.SetUserInfo(info); err != nil {
			return err
		}
		return s.onContextChange(sess)
	})
}

func (s *InquiryFlowService) UpdateKeywords(ctx context.Context, sessionID string, keywords string) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		if err := sess.wizard.SetKeywords(keywords); err != nil {
			return err
		}
		return s.onContextChange(sess)
	})
}

// EditDraft records a manual edit. Any in-flight generation is superseded so
// it cannot overwrite what the user typed.
func (s *InquiryFlowService) EditDraft(ctx context.Context, sessionID string, text string) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		if err := sess.wizard.SetDraftText(text); err != nil {
			return err
		}
		sess.edited = text != sess.autoText
		sess.generationSeq++
		return nil
	})
}

func (s *InquiryFlowService) AddAttachments(ctx context.Context, sessionID string, files []wizard_models.Attachment) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		for _, file := range files {
			if err := sess.wizard.AddAttachment(file); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *InquiryFlowService) RemoveAttachment(ctx context.Context, sessionID string, name string) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		if sess.wizard.Submitted() {
			return utils.ErrSessionClosed
		}
		if !sess.wizard.RemoveAttachment(name) {
			return utils.NewValidationError("attachments.name", "첨부파일을 찾을 수 없습니다")
		}
		return nil
	})
}

func (s *InquiryFlowService) Next(ctx context.Context, sessionID string) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		return sess.wizard.Next()
	})
}

// Back is a no-op at the first step.
func (s *InquiryFlowService) Back(ctx context.Context, sessionID string) (response_models.SessionResponse, error) {
	return s.mutate(sessionID, func(sess *InquirySession) error {
		sess.wizard.Back()
		return nil
	})
}

// Generate starts drafting in the background and returns immediately. The
// result is applied to the session unless newer input or a manual edit arrived
// first, or the session was torn down.
func (s *InquiryFlowService) Generate(ctx context.Context, sessionID string) (*Task[string], response_models.SessionResponse, error) {
	var task *Task[string]
	view, err := s.mutate(sessionID, func(sess *InquirySession) error {
		if sess.generating {
			return utils.ErrGenerationInFlight
		}
		draft := sess.wizard.Draft()
		if !draft.Type.IsValid() {
			return utils.NewValidationError("type", "문의 유형을 선택해주세요")
		}

		sess.generationSeq++
		sess.generating = true
		task = newTask[string]()
		go s.runGeneration(sess, sess.generationSeq, generationInput{
			inquiryType:  draft.Type,
			company:      sess.wizard.CompanyName(),
			companyGuess: sess.wizard.CompanyGuess(),
			userInfo:     sess.wizard.UserInfo(),
			keywords:     draft.Keywords,
		}, task)
		return nil
	})
	if err != nil {
		return nil, response_models.SessionResponse{}, err
	}
	return task, view, nil
}

type generationInput struct {
	inquiryType  wizard_models.InquiryType
	company      string
	companyGuess string
	userInfo     wizard_models.UserInfo
	keywords     string
}

func (s *InquiryFlowService) runGeneration(sess *InquirySession, seq uint64, in generationInput, task *Task[string]) {
	err := sleepContext(sess.ctx, s.opts.GenerationDelay)
	var text string
	if err == nil {
		text, err = s.engine.Generate(in.inquiryType, in.company, in.companyGuess, in.userInfo, in.keywords)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.generating = false

	switch {
	case sess.closed || sess.ctx.Err() != nil:
		task.resolve("", utils.ErrSessionClosed)
		return
	case err != nil:
		s.log.Error("inquiry generation failed", zap.String("session_id", sess.id), zap.Error(err))
		s.notify(sess.id, generationFailedNotification)
		task.resolve("", err)
		return
	case seq != sess.generationSeq || sess.submitting:
		s.log.Debug("stale inquiry generation dropped", zap.String("session_id", sess.id), zap.Uint64("seq", seq))
		task.resolve("", utils.ErrGenerationStale)
		return
	}

	if err := s.applyGenerated(sess, text); err != nil {
		task.resolve("", err)
		return
	}
	s.notify(sess.id, generationDoneNotification)
	task.resolve(text, nil)
}

// onContextChange regenerates the draft in live mode. A manually edited draft
// is kept under the preserve_edits policy.
func (s *InquiryFlowService) onContextChange(sess *InquirySession) error {
	if sess.wizard.Mode() != wizard_models.WizardModeLive {
		return nil
	}
	draft := sess.wizard.Draft()
	if !draft.Type.IsValid() {
		return nil
	}
	if sess.edited && s.opts.Policy == wizard_models.RegenerationPreserveEdits {
		return nil
	}

	text, err := s.engine.Generate(draft.Type, sess.wizard.CompanyName(), sess.wizard.CompanyGuess(), sess.wizard.UserInfo(), draft.Keywords)
	if err != nil {
		s.log.Error("live regeneration failed", zap.String("session_id", sess.id), zap.Error(err))
		s.notify(sess.id, generationFailedNotification)
		return err
	}
	sess.generationSeq++
	return s.applyGenerated(sess, text)
}

func (s *InquiryFlowService) applyGenerated(sess *InquirySession, text string) error {
	if err := sess.wizard.SetDraftText(text); err != nil {
		return err
	}
	sess.autoText = text
	sess.edited = false
	return nil
}

// Submit delivers the inquiry once per session. A delivery failure keeps the
// session so the user can retry; success tears it down.
func (s *InquiryFlowService) Submit(ctx context.Context, sessionID string) (response_models.SubmissionResponse, error) {
	if _, done := s.receipts.Get(sessionID); done {
		return response_models.SubmissionResponse{}, utils.ErrDuplicateSubmission
	}
	sess, err := s.lookup(sessionID)
	if err != nil {
		return response_models.SubmissionResponse{}, err
	}

	sess.mu.Lock()
	switch {
	case sess.wizard.Submitted():
		sess.mu.Unlock()
		return response_models.SubmissionResponse{}, utils.ErrDuplicateSubmission
	case sess.closed:
		sess.mu.Unlock()
		return response_models.SubmissionResponse{}, utils.ErrSessionClosed
	case sess.submitting:
		sess.mu.Unlock()
		return response_models.SubmissionResponse{}, utils.ErrSubmissionInFlight
	case sess.generating:
		sess.mu.Unlock()
		return response_models.SubmissionResponse{}, utils.ErrGenerationInFlight
	}
	if err := sess.wizard.CanSubmit(); err != nil {
		sess.mu.Unlock()
		return response_models.SubmissionResponse{}, err
	}
	payload := payloadOf(sess)
	sess.submitting = true
	sessCtx := sess.ctx
	sess.mu.Unlock()

	submitCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(sessCtx, cancel)
	receipt, err := s.transport.Submit(submitCtx, payload)
	stop()
	cancel()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.submitting = false

	if sess.closed {
		return response_models.SubmissionResponse{}, utils.ErrSessionClosed
	}
	if err != nil {
		s.log.Warn("inquiry submission failed", zap.String("session_id", sess.id), zap.Error(err))
		s.notify(sess.id, submissionFailedNotification)
		return response_models.SubmissionResponse{}, fmt.Errorf("%w: %v", utils.ErrSubmissionFailure, err)
	}
	if err := sess.wizard.MarkSubmitted(); err != nil {
		return response_models.SubmissionResponse{}, err
	}

	s.receipts.Set(sess.id, receipt, s.opts.SessionTTL)
	notification := submittedNotification(payload)
	s.notify(sess.id, notification)
	s.teardown(sess)

	s.log.Info("inquiry submitted",
		zap.String("session_id", sess.id),
		zap.String("receipt_id", receipt.ID),
		zap.Bool("routed", receipt.Routed),
	)

	return response_models.SubmissionResponse{
		ReceiptID:    receipt.ID,
		SessionID:    sess.id,
		Company:      receipt.Company,
		Routed:       receipt.Routed,
		SubmittedAt:  receipt.SubmittedAt.Unix(),
		Notification: notification,
	}, nil
}

func submittedNotification(payload SubmissionPayload) wizard_models.Notification {
	if payload.SkipCompanySelection {
		return wizard_models.Notification{
			Title:       "문의 접수 완료",
			Description: "문의가 접수되었습니다. 적절한 담당 기업을 찾아 전달해드리고, 답변은 이메일로 받아보실 수 있습니다.",
		}
	}
	return wizard_models.Notification{
		Title:       "문의 전송 완료",
		Description: fmt.Sprintf("%s에 문의가 성공적으로 전송되었습니다. 답변은 이메일로 받아보실 수 있습니다.", payload.Company),
	}
}

func payloadOf(sess *InquirySession) SubmissionPayload {
	draft := sess.wizard.Draft()
	return SubmissionPayload{
		SessionID:            sess.id,
		Company:              sess.wizard.CompanyName(),
		CompanyGuess:         sess.wizard.CompanyGuess(),
		SkipCompanySelection: sess.wizard.SkipCompanySelection(),
		Type:                 draft.Type,
		UserInfo:             sess.wizard.UserInfo(),
		Text:                 draft.Text,
		Attachments:          draft.Attachments,
	}
}

// Exit abandons the flow. Pending generation or submission is cancelled.
func (s *InquiryFlowService) Exit(ctx context.Context, sessionID string) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.teardown(sess)
	s.log.Info("inquiry session closed", zap.String("session_id", sess.id))
	return nil
}

func (s *InquiryFlowService) Notifications(ctx context.Context, sessionID string) ([]wizard_models.Notification, error) {
	notifications, ok := s.feed.List(sessionID)
	if !ok {
		if _, err := s.lookup(sessionID); err != nil {
			return nil, err
		}
		return []wizard_models.Notification{}, nil
	}
	return notifications, nil
}

// SweepExpired tears down idle sessions and drops expired feeds and receipts.
func (s *InquiryFlowService) SweepExpired() int {
	expired := s.sessions.Sweep()
	for _, sess := range expired {
		sess.mu.Lock()
		s.teardown(sess)
		sess.mu.Unlock()
	}
	s.feed.Sweep()
	s.receipts.Sweep()
	if len(expired) > 0 {
		s.log.Info("expired inquiry sessions swept",
			zap.Int("count", len(expired)),
			zap.Int("active", s.sessions.Len()),
		)
	}
	return len(expired)
}

func (s *InquiryFlowService) lookup(sessionID string) (*InquirySession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, utils.ErrSessionNotFound
	}
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	s.sessions.Touch(sessionID, s.opts.SessionTTL)
	return sess, nil
}

// mutate runs fn under the session lock and returns the resulting view.
// Sessions are read-only while a submission is in flight.
func (s *InquiryFlowService) mutate(sessionID string, fn func(sess *InquirySession) error) (response_models.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return response_models.SessionResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return response_models.SessionResponse{}, utils.ErrSessionClosed
	}
	if sess.submitting {
		return response_models.SessionResponse{}, utils.ErrSubmissionInFlight
	}
	if err := fn(sess); err != nil {
		return response_models.SessionResponse{}, err
	}
	return s.view(sess), nil
}

// teardown must be called with sess.mu held.
func (s *InquiryFlowService) teardown(sess *InquirySession) {
	if sess.closed {
		return
	}
	sess.closed = true
	sess.cancel()
	s.sessions.Delete(sess.id)
}

func (s *InquiryFlowService) notify(sessionID string, notification wizard_models.Notification) {
	ctx := context.Background()
	s.feed.Notify(ctx, sessionID, notification)
	if s.notifier != nil {
		s.notifier.Notify(ctx, sessionID, notification)
	}
}

func (s *InquiryFlowService) view(sess *InquirySession) response_models.SessionResponse {
	w := sess.wizard
	draft := w.Draft()

	var attachmentBytes int64
	for _, attachment := range draft.Attachments {
		attachmentBytes += attachment.Size
	}

	resp := response_models.SessionResponse{
		ID:                   sess.id,
		Mode:                 string(w.Mode()),
		Step:                 int(w.Step()),
		MaxStep:              int(w.MaxStep()),
		Stage:                string(w.Stage()),
		SkipCompanySelection: w.SkipCompanySelection(),
		CompanyLabel:         valueOr(w.CompanyName(), valueOr(w.CompanyGuess(), routingCompanyLabel)),
		InquiryType:          string(draft.Type),
		UserInfo:             w.UserInfo(),
		VisibleFields:        w.VisibleFields(),
		Draft: response_models.DraftResponse{
			Keywords:        draft.Keywords,
			Text:            draft.Text,
			ManuallyEdited:  sess.edited,
			Attachments:     draft.Attachments,
			AttachmentCount: len(draft.Attachments),
			AttachmentBytes: attachmentBytes,
		},
		Generating: sess.generating,
		Submitting: sess.submitting,
		CreatedAt:  sess.createdAt.Unix(),
	}
	if draft.Type.IsValid() {
		resp.InquiryTypeLabel = draft.Type.Label()
	}
	if company := w.SelectedCompany(); company != nil {
		selected := toCompanyResponse(*company)
		resp.SelectedCompany = &selected
	}
	return resp
}
