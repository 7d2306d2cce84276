package services

import (
	"strings"

	"askdesk/internal/models/wizard_models"
	"askdesk/pkg/utils"
)

// Wizard is the step state machine plus the in-progress inquiry record. It is
// not safe for concurrent use; InquirySession serializes access.
//
// Classic mode: type selection (1), user info (2), composition (3).
// Live mode: type selection (1), user info and composition merged (2).
type Wizard struct {
	mode      wizard_models.WizardMode
	step      wizard_models.Step
	submitted bool

	selectedCompany      *wizard_models.Company
	skipCompanySelection bool

	userInfo wizard_models.UserInfo
	draft    wizard_models.InquiryDraft
}

// NewWizard starts at step 1. A nil company means the user skipped company
// selection.
func NewWizard(mode wizard_models.WizardMode, company *wizard_models.Company) *Wizard {
	if !mode.IsValid() {
		mode = wizard_models.WizardModeClassic
	}
	w := &Wizard{
		mode:                 mode,
		step:                 wizard_models.StepTypeSelection,
		skipCompanySelection: company == nil,
		draft:                wizard_models.InquiryDraft{Attachments: []wizard_models.Attachment{}},
	}
	if company != nil {
		selected := *company
		w.selectedCompany = &selected
	}
	return w
}

func (w *Wizard) Mode() wizard_models.WizardMode { return w.mode }
func (w *Wizard) Step() wizard_models.Step       { return w.step }
func (w *Wizard) MaxStep() wizard_models.Step    { return w.mode.MaxStep() }
func (w *Wizard) Submitted() bool                { return w.submitted }
func (w *Wizard) SkipCompanySelection() bool     { return w.skipCompanySelection }
func (w *Wizard) UserInfo() wizard_models.UserInfo {
	return w.userInfo
}

func (w *Wizard) SelectedCompany() *wizard_models.Company {
	if w.selectedCompany == nil {
		return nil
	}
	company := *w.selectedCompany
	return &company
}

// Draft returns a copy; attachments are not shared with the caller.
func (w *Wizard) Draft() wizard_models.InquiryDraft {
	draft := w.draft
	draft.Attachments = append([]wizard_models.Attachment{}, w.draft.Attachments...)
	return draft
}

func (w *Wizard) Stage() wizard_models.Stage {
	switch {
	case w.submitted:
		return wizard_models.StageSubmitted
	case w.step == wizard_models.StepTypeSelection:
		return wizard_models.StageTypeSelection
	case w.step == w.MaxStep():
		return wizard_models.StageComposition
	default:
		return wizard_models.StageUserInfo
	}
}

// CompanyName is the explicitly selected company, empty when skipped.
func (w *Wizard) CompanyName() string {
	if w.selectedCompany == nil {
		return ""
	}
	return w.selectedCompany.Name
}

// CompanyGuess is only meaningful when company selection was skipped.
func (w *Wizard) CompanyGuess() string {
	if !w.skipCompanySelection {
		return ""
	}
	return w.userInfo.CompanyGuess
}

// VisibleFields lists the user info fields a form should render for the
// current type and company mode.
func (w *Wizard) VisibleFields() []string {
	fields := []string{"name", "email", "phone"}
	if w.skipCompanySelection {
		fields = append(fields, "companyGuess")
	}
	if w.draft.Type.UsesOrderNumber() {
		fields = append(fields, "orderNumber")
	}
	return fields
}

func (w *Wizard) SelectType(inquiryType wizard_models.InquiryType) error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	if !inquiryType.IsValid() {
		return utils.NewValidationError("type", "문의 유형을 선택해주세요")
	}
	w.draft.Type = inquiryType
	return nil
}

func (w *Wizard) SetUserInfo(info wizard_models.UserInfo) error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.OrderNumber = strings.TrimSpace(info.OrderNumber)
	info.CompanyGuess = strings.TrimSpace(info.CompanyGuess)
	if !w.skipCompanySelection {
		info.CompanyGuess = ""
	}
	w.userInfo = info
	return nil
}

func (w *Wizard) SetKeywords(keywords string) error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	w.draft.Keywords = keywords
	return nil
}

func (w *Wizard) SetDraftText(text string) error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	w.draft.Text = text
	return nil
}

// AddAttachment replaces an attachment with the same name.
func (w *Wizard) AddAttachment(attachment wizard_models.Attachment) error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	attachment.Name = strings.TrimSpace(attachment.Name)
	if attachment.Name == "" {
		return utils.NewValidationError("attachments.name", "파일 이름이 필요합니다")
	}
	if attachment.Size < 0 {
		return utils.NewValidationError("attachments.size", "파일 크기가 올바르지 않습니다")
	}
	for i, existing := range w.draft.Attachments {
		if existing.Name == attachment.Name {
			w.draft.Attachments[i] = attachment
			return nil
		}
	}
	w.draft.Attachments = append(w.draft.Attachments, attachment)
	return nil
}

func (w *Wizard) RemoveAttachment(name string) bool {
	if w.submitted {
		return false
	}
	for i, existing := range w.draft.Attachments {
		if existing.Name == name {
			w.draft.Attachments = append(w.draft.Attachments[:i], w.draft.Attachments[i+1:]...)
			return true
		}
	}
	return false
}

// Next advances one step when the guard of the current step holds. The guard
// is evaluated on every call.
func (w *Wizard) Next() error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	if w.step >= w.MaxStep() {
		return utils.NewValidationError("step", "마지막 단계입니다. 문의를 전송해주세요")
	}

	switch w.Stage() {
	case wizard_models.StageTypeSelection:
		if err := w.checkType(); err != nil {
			return err
		}
	case wizard_models.StageUserInfo:
		if err := w.checkUserInfo(); err != nil {
			return err
		}
	}

	w.step++
	return nil
}

// Back steps down by one. It reports false at step 1 or after submission.
func (w *Wizard) Back() bool {
	if w.submitted || w.step <= wizard_models.StepTypeSelection {
		return false
	}
	w.step--
	return true
}

// CanSubmit checks the composition guard without changing state.
func (w *Wizard) CanSubmit() error {
	if w.submitted {
		return utils.ErrSessionClosed
	}
	if w.step != w.MaxStep() {
		return utils.NewValidationError("step", "문의 작성 단계에서만 전송할 수 있습니다")
	}
	if err := w.checkType(); err != nil {
		return err
	}
	if err := w.checkUserInfo(); err != nil {
		return err
	}
	if strings.TrimSpace(w.draft.Text) == "" {
		return utils.NewValidationError("text", "문의 내용을 입력해주세요")
	}
	return nil
}

func (w *Wizard) MarkSubmitted() error {
	if err := w.CanSubmit(); err != nil {
		return err
	}
	w.submitted = true
	return nil
}

func (w *Wizard) checkType() error {
	if !w.draft.Type.IsValid() {
		return utils.NewValidationError("type", "문의 유형을 선택해주세요")
	}
	return nil
}

func (w *Wizard) checkUserInfo() error {
	if w.userInfo.Name == "" {
		return utils.NewValidationError("name", "이름을 입력해주세요")
	}
	if w.userInfo.Email == "" {
		return utils.NewValidationError("email", "이메일을 입력해주세요")
	}
	return nil
}
