package response_models

import "askdesk/internal/models/wizard_models"

type DraftResponse struct {
	Keywords        string                     `json:"keywords"`
	Text            string                     `json:"text"`
	ManuallyEdited  bool                       `json:"manuallyEdited"`
	Attachments     []wizard_models.Attachment `json:"attachments"`
	AttachmentCount int                        `json:"attachmentCount"`
	AttachmentBytes int64                      `json:"attachmentBytes"`
}

type SessionResponse struct {
	ID                   string                 `json:"id"`
	Mode                 string                 `json:"mode"`
	Step                 int                    `json:"step"`
	MaxStep              int                    `json:"maxStep"`
	Stage                string                 `json:"stage"`
	SelectedCompany      *CompanyResponse       `json:"selectedCompany,omitempty"`
	SkipCompanySelection bool                   `json:"skipCompanySelection"`
	CompanyLabel         string                 `json:"companyLabel"`
	InquiryType          string                 `json:"inquiryType,omitempty"`
	InquiryTypeLabel     string                 `json:"inquiryTypeLabel,omitempty"`
	UserInfo             wizard_models.UserInfo `json:"userInfo"`
	VisibleFields        []string               `json:"visibleFields"`
	Draft                DraftResponse          `json:"draft"`
	Generating           bool                   `json:"generating"`
	Submitting           bool                   `json:"submitting"`
	CreatedAt            int64                  `json:"createdAt"`
}

type SubmissionResponse struct {
	ReceiptID    string                     `json:"receiptId"`
	SessionID    string                     `json:"sessionId"`
	Company      string                     `json:"company,omitempty"`
	Routed       bool                       `json:"routed"`
	SubmittedAt  int64                      `json:"submittedAt"`
	Notification wizard_models.Notification `json:"notification"`
}
