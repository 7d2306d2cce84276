package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"askdesk/internal/models/request_models"
	"askdesk/internal/models/wizard_models"
	"askdesk/internal/repositories"
	mem "askdesk/pkg/memcache"
	"askdesk/pkg/utils"
)

type fakeTransport struct {
	mu      sync.Mutex
	calls   int
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeTransport) Submit(ctx context.Context, payload SubmissionPayload) (SubmissionReceipt, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return SubmissionReceipt{}, ctx.Err()
		}
	}
	if err != nil {
		return SubmissionReceipt{}, err
	}
	return SubmissionReceipt{
		ID:          "receipt-" + payload.SessionID,
		SessionID:   payload.SessionID,
		Company:     payload.Company,
		Routed:      payload.SkipCompanySelection,
		SubmittedAt: time.Unix(1_700_000_000, 0),
	}, nil
}

func (f *fakeTransport) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSink struct {
	mu    sync.Mutex
	items []wizard_models.Notification
}

func (r *recordingSink) Notify(ctx context.Context, sessionID string, notification wizard_models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification)
}

func (r *recordingSink) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, 0, len(r.items))
	for _, n := range r.items {
		titles = append(titles, n.Title)
	}
	return titles
}

// gatedEngine blocks Generate until gate is closed.
type gatedEngine struct {
	InquiryTemplateEngine
	gate chan struct{}
}

func (g *gatedEngine) Generate(inquiryType wizard_models.InquiryType, company, companyGuess string, userInfo wizard_models.UserInfo, keywords string) (string, error) {
	<-g.gate
	return g.InquiryTemplateEngine.Generate(inquiryType, company, companyGuess, userInfo, keywords)
}

type flowFixture struct {
	svc       InquiryFlowServiceInterface
	transport *fakeTransport
	sink      *recordingSink
}

func newFlowFixture(t *testing.T, opts FlowOptions, engine InquiryTemplateEngine, sessions mem.Store[*InquirySession]) *flowFixture {
	t.Helper()
	if engine == nil {
		engine = newKoEngine(t)
	}
	if sessions == nil {
		sessions = mem.NewTTLStore[*InquirySession]()
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = time.Hour
	}
	log := zap.NewNop()
	transport := &fakeTransport{}
	sink := &recordingSink{}
	companies := NewCompanySearchService(repositories.NewStaticCompanyRepository(repositories.ReferenceCatalog()), log)
	feed := NewNotificationFeed(mem.NewTTLStore[[]wizard_models.Notification](), opts.SessionTTL)

	svc := NewInquiryFlowService(companies, engine, transport, sink, feed,
		sessions, mem.NewTTLStore[SubmissionReceipt](), opts, log)
	return &flowFixture{svc: svc, transport: transport, sink: sink}
}

func waitTask(t *testing.T, task *Task[string]) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return task.Wait(ctx)
}

func TestFlowClassicRefundScenario(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, nil, nil)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "삼성전자"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Step != 1 || sess.MaxStep != 3 || sess.CompanyLabel != "삼성전자" || sess.SelectedCompany == nil {
		t.Fatalf("unexpected session %+v", sess)
	}
	id := sess.ID

	if _, err := f.svc.SelectType(ctx, id, "REFUND"); err != nil {
		t.Fatalf("select type: %v", err)
	}
	if _, err := f.svc.Next(ctx, id); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "홍길동", Email: "hong@example.com", OrderNumber: "ORD-1"}); err != nil {
		t.Fatalf("user info: %v", err)
	}
	if _, err := f.svc.Next(ctx, id); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := f.svc.UpdateKeywords(ctx, id, "배송 지연"); err != nil {
		t.Fatalf("keywords: %v", err)
	}

	task, view, err := f.svc.Generate(ctx, id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !view.Generating {
		t.Fatal("view should report generation in progress")
	}
	text, err := waitTask(t, task)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	for _, want := range []string{"삼성전자", "ORD-1", "배송 지연"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in draft", want)
		}
	}

	after, err := f.svc.Session(ctx, id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if after.Draft.Text != text || after.Draft.ManuallyEdited || after.Generating {
		t.Fatalf("generated text not applied: %+v", after.Draft)
	}

	receipt, err := f.svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.Company != "삼성전자" || receipt.Routed || receipt.Notification.Title != "문의 전송 완료" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if !strings.Contains(receipt.Notification.Description, "삼성전자에 문의가 성공적으로 전송되었습니다") {
		t.Fatalf("unexpected description %q", receipt.Notification.Description)
	}

	if _, err := f.svc.Session(ctx, id); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("session should be torn down, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, id); !errors.Is(err, utils.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate submission, got %v", err)
	}
	if f.transport.Calls() != 1 {
		t.Fatalf("expected one transport call, got %d", f.transport.Calls())
	}

	feed, err := f.svc.Notifications(ctx, id)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(feed) != 2 || feed[0].Title != "AI 문구 생성 완료" || feed[1].Title != "문의 전송 완료" {
		t.Fatalf("unexpected feed %+v", feed)
	}
	if got := f.sink.Titles(); len(got) != 2 {
		t.Fatalf("sink should see the same notifications, got %v", got)
	}
}

func TestFlowSkipCompanyRoutesSubmission(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, nil, nil)
	ctx := context.Background()

	sess, err := f.svc.StartSession(ctx, request_models.StartSessionRequest{SkipCompanySelection: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.SelectedCompany != nil || sess.CompanyLabel != "저희가 찾아드려요" {
		t.Fatalf("unexpected skip session %+v", sess)
	}
	id := sess.ID

	_, _ = f.svc.SelectType(ctx, id, "general")
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b"})
	_, _ = f.svc.Next(ctx, id)

	task, _, err := f.svc.Generate(ctx, id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	text, err := waitTask(t, task)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if !strings.Contains(text, "[기업명]") || !strings.Contains(text, "자세한 내용은 다음과 같습니다.") {
		t.Fatalf("unexpected draft:\n%s", text)
	}

	receipt, err := f.svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !receipt.Routed || receipt.Notification.Title != "문의 접수 완료" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestFlowStartSessionValidation(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{}, nil, nil)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "없는기업"}); !errors.Is(err, utils.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
	if _, err := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "쿠팡", SkipCompanySelection: true}); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.StartSession(ctx, request_models.StartSessionRequest{}); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Session(ctx, "not-a-uuid"); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := f.svc.Notifications(ctx, "not-a-uuid"); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestFlowRejectsUnknownInquiryType(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{}, nil, nil)
	ctx := context.Background()
	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "쿠팡"})

	if _, err := f.svc.SelectType(ctx, sess.ID, "shipping"); !errors.Is(err, utils.ErrInvalidInquiryType) {
		t.Fatalf("expected ErrInvalidInquiryType, got %v", err)
	}
}

func TestFlowEmptySubmissionNeverReachesTransport(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "네이버"})
	id := sess.ID
	_, _ = f.svc.SelectType(ctx, id, "account")
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b"})
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.EditDraft(ctx, id, "  \n ")

	_, err := f.svc.Submit(ctx, id)
	var verr *utils.ValidationError
	if !errors.As(err, &verr) || verr.Field != "text" {
		t.Fatalf("expected text validation error, got %v", err)
	}
	if f.transport.Calls() != 0 {
		t.Fatalf("transport must not be called, got %d calls", f.transport.Calls())
	}
	if _, err := f.svc.Session(ctx, id); err != nil {
		t.Fatalf("session should survive a blocked submit: %v", err)
	}
}

func TestFlowSubmissionFailureKeepsSession(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "카카오"})
	id := sess.ID
	_, _ = f.svc.SelectType(ctx, id, "general")
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b"})
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.EditDraft(ctx, id, "문의드립니다")

	f.transport.SetErr(errors.New("upstream unavailable"))
	if _, err := f.svc.Submit(ctx, id); !errors.Is(err, utils.ErrSubmissionFailure) {
		t.Fatalf("expected ErrSubmissionFailure, got %v", err)
	}
	view, err := f.svc.Session(ctx, id)
	if err != nil {
		t.Fatalf("session should remain after failure: %v", err)
	}
	if view.Submitting || view.Draft.Text != "문의드립니다" {
		t.Fatalf("unexpected view after failure %+v", view)
	}

	f.transport.SetErr(nil)
	if _, err := f.svc.Submit(ctx, id); err != nil {
		t.Fatalf("retry: %v", err)
	}
	titles := f.sink.Titles()
	if len(titles) != 2 || titles[0] != "문의 전송 실패" || titles[1] != "문의 전송 완료" {
		t.Fatalf("unexpected notifications %v", titles)
	}
}

func TestFlowSubmissionInFlightBlocksSecondSubmit(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeLive}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "이마트"})
	id := sess.ID
	_, _ = f.svc.SelectType(ctx, id, "complaint")
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b"})

	f.transport.started = make(chan struct{})
	f.transport.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(ctx, id)
		done <- err
	}()
	<-f.transport.started

	if _, err := f.svc.Submit(ctx, id); !errors.Is(err, utils.ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	if _, err := f.svc.UpdateKeywords(ctx, id, "late"); !errors.Is(err, utils.ErrSubmissionInFlight) {
		t.Fatalf("edits are blocked while submitting, got %v", err)
	}

	close(f.transport.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestFlowExitCancelsSubmission(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeLive}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{SkipCompanySelection: true})
	id := sess.ID
	_, _ = f.svc.SelectType(ctx, id, "general")
	_, _ = f.svc.Next(ctx, id)
	_, _ = f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b"})

	f.transport.started = make(chan struct{})
	f.transport.release = make(chan struct{})
	defer close(f.transport.release)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(ctx, id)
		done <- err
	}()
	<-f.transport.started

	if err := f.svc.Exit(ctx, id); err != nil {
		t.Fatalf("exit: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, utils.ErrSessionClosed) {
			t.Fatalf("expected ErrSessionClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submission was not cancelled")
	}
}

func TestFlowLiveModeRegeneratesAndPreservesEdits(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{
		Mode:   wizard_models.WizardModeLive,
		Policy: wizard_models.RegenerationPreserveEdits,
	}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{SkipCompanySelection: true})
	id := sess.ID
	if sess.MaxStep != 2 {
		t.Fatalf("live max step should be 2, got %d", sess.MaxStep)
	}

	view, err := f.svc.SelectType(ctx, id, "general")
	if err != nil {
		t.Fatalf("select type: %v", err)
	}
	if !strings.Contains(view.Draft.Text, "[기업명]") {
		t.Fatalf("live mode should draft immediately:\n%s", view.Draft.Text)
	}

	view, _ = f.svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b", CompanyGuess: "동네빵집"})
	if !strings.Contains(view.Draft.Text, "동네빵집") {
		t.Fatalf("draft should follow the company guess:\n%s", view.Draft.Text)
	}

	view, _ = f.svc.EditDraft(ctx, id, "직접 쓴 문의")
	if !view.Draft.ManuallyEdited {
		t.Fatal("manual edit should be flagged")
	}
	view, _ = f.svc.UpdateKeywords(ctx, id, "영업시간")
	if view.Draft.Text != "직접 쓴 문의" {
		t.Fatalf("preserve_edits must keep the manual text, got:\n%s", view.Draft.Text)
	}
}

func TestFlowLiveModeOverwritePolicy(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{
		Mode:   wizard_models.WizardModeLive,
		Policy: wizard_models.RegenerationOverwrite,
	}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "SK텔레콤"})
	id := sess.ID
	_, _ = f.svc.SelectType(ctx, id, "general")
	_, _ = f.svc.EditDraft(ctx, id, "직접 쓴 문의")

	view, _ := f.svc.UpdateKeywords(ctx, id, "요금제")
	if view.Draft.ManuallyEdited || !strings.Contains(view.Draft.Text, "요금제") {
		t.Fatalf("overwrite should regenerate over the edit: %+v", view.Draft)
	}
}

func TestFlowClassicModeDoesNotRegenerate(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "GS25"})
	view, _ := f.svc.SelectType(ctx, sess.ID, "general")
	view, _ = f.svc.UpdateKeywords(ctx, view.ID, "택배")
	if view.Draft.Text != "" {
		t.Fatalf("classic mode only drafts on explicit generate, got %q", view.Draft.Text)
	}
}

func TestFlowGenerationGuards(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{GenerationDelay: time.Hour}, nil, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "쿠팡"})
	id := sess.ID

	if _, _, err := f.svc.Generate(ctx, id); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("generation needs a type, got %v", err)
	}
	_, _ = f.svc.SelectType(ctx, id, "refund")

	task, _, err := f.svc.Generate(ctx, id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := f.svc.Generate(ctx, id); !errors.Is(err, utils.ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}

	if err := f.svc.Exit(ctx, id); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if _, err := waitTask(t, task); !errors.Is(err, utils.ErrSessionClosed) {
		t.Fatalf("generation should be dropped after exit, got %v", err)
	}
	if _, err := f.svc.Session(ctx, id); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after exit, got %v", err)
	}
}

func TestFlowManualEditSupersedesGeneration(t *testing.T) {
	engine := &gatedEngine{InquiryTemplateEngine: newKoEngine(t), gate: make(chan struct{})}
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, engine, nil)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "현대자동차"})
	id := sess.ID
	_, _ = f.svc.SelectType(ctx, id, "complaint")

	task, _, err := f.svc.Generate(ctx, id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := f.svc.EditDraft(ctx, id, "제가 쓴 내용"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	close(engine.gate)

	if _, err := waitTask(t, task); !errors.Is(err, utils.ErrGenerationStale) {
		t.Fatalf("expected stale generation, got %v", err)
	}
	view, _ := f.svc.Session(ctx, id)
	if view.Draft.Text != "제가 쓴 내용" || view.Generating {
		t.Fatalf("manual edit must win: %+v", view)
	}
}

func TestFlowSweepExpiredSessions(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	sessions := mem.NewTTLStore[*InquirySession](mem.WithClock[*InquirySession](clock))
	f := newFlowFixture(t, FlowOptions{SessionTTL: time.Minute}, nil, sessions)
	ctx := context.Background()

	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "CJ대한통운"})
	if n := f.svc.SweepExpired(); n != 0 {
		t.Fatalf("nothing should expire yet, swept %d", n)
	}

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	if n := f.svc.SweepExpired(); n != 1 {
		t.Fatalf("expected one expired session, swept %d", n)
	}
	if _, err := f.svc.Session(ctx, sess.ID); !errors.Is(err, utils.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestFlowAttachments(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{}, nil, nil)
	ctx := context.Background()
	sess, _ := f.svc.StartSession(ctx, request_models.StartSessionRequest{Company: "11번가"})

	view, err := f.svc.AddAttachments(ctx, sess.ID, []wizard_models.Attachment{
		{Name: "a.png", Size: 100, ContentType: "image/png"},
		{Name: "b.pdf", Size: 50, ContentType: "application/pdf"},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if view.Draft.AttachmentCount != 2 || view.Draft.AttachmentBytes != 150 {
		t.Fatalf("unexpected attachment totals %+v", view.Draft)
	}

	view, err = f.svc.RemoveAttachment(ctx, sess.ID, "a.png")
	if err != nil || view.Draft.AttachmentCount != 1 {
		t.Fatalf("remove: %+v, %v", view.Draft, err)
	}
	if _, err := f.svc.RemoveAttachment(ctx, sess.ID, "a.png"); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("removing a missing attachment should fail validation, got %v", err)
	}
}

func composeClassicDraft(t *testing.T, svc InquiryFlowServiceInterface, company, text string) string {
	t.Helper()
	ctx := context.Background()
	sess, err := svc.StartSession(ctx, request_models.StartSessionRequest{Company: company})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	id := sess.ID
	_, _ = svc.SelectType(ctx, id, "general")
	_, _ = svc.Next(ctx, id)
	_, _ = svc.UpdateUserInfo(ctx, id, wizard_models.UserInfo{Name: "a", Email: "b"})
	_, _ = svc.Next(ctx, id)
	if _, err := svc.EditDraft(ctx, id, text); err != nil {
		t.Fatalf("edit: %v", err)
	}
	return id
}

func TestFlowSubmitRejectedWhileGenerating(t *testing.T) {
	engine := &gatedEngine{InquiryTemplateEngine: newKoEngine(t), gate: make(chan struct{})}
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, engine, nil)
	ctx := context.Background()
	id := composeClassicDraft(t, f.svc, "카카오", "내가 직접 쓴 문의")

	task, _, err := f.svc.Generate(ctx, id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	f.transport.SetErr(errors.New("upstream down"))
	if _, err := f.svc.Submit(ctx, id); !errors.Is(err, utils.ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}
	if f.transport.Calls() != 0 {
		t.Fatalf("transport must not be called while generating, got %d calls", f.transport.Calls())
	}

	close(engine.gate)
	text, err := waitTask(t, task)
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	view, _ := f.svc.Session(ctx, id)
	if view.Draft.Text != text || view.Generating {
		t.Fatalf("generation should apply once nothing is submitting: %+v", view.Draft)
	}
}

func TestFlowGenerateRejectedWhileSubmitting(t *testing.T) {
	f := newFlowFixture(t, FlowOptions{Mode: wizard_models.WizardModeClassic}, nil, nil)
	ctx := context.Background()
	id := composeClassicDraft(t, f.svc, "카카오", "내가 직접 쓴 문의")

	f.transport.SetErr(errors.New("upstream down"))
	f.transport.started = make(chan struct{})
	f.transport.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(ctx, id)
		done <- err
	}()
	<-f.transport.started

	if _, _, err := f.svc.Generate(ctx, id); !errors.Is(err, utils.ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}

	close(f.transport.release)
	if err := <-done; !errors.Is(err, utils.ErrSubmissionFailure) {
		t.Fatalf("expected ErrSubmissionFailure, got %v", err)
	}
	view, err := f.svc.Session(ctx, id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if view.Draft.Text != "내가 직접 쓴 문의" {
		t.Fatalf("draft must still match the submitted payload, got %q", view.Draft.Text)
	}
}
