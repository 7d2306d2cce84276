package wizard_models

import "strings"

type InquiryType string

const (
	InquiryTypeRefund    InquiryType = "refund"
	InquiryTypeAccount   InquiryType = "account"
	InquiryTypeComplaint InquiryType = "complaint"
	InquiryTypeGeneral   InquiryType = "general"
)

type InquiryTypeInfo struct {
	ID          InquiryType `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
}

// InquiryTypes is the closed set of inquiry types in display order.
var InquiryTypes = []InquiryTypeInfo{
	{ID: InquiryTypeRefund, Label: "환불/교환", Description: "제품 환불이나 교환을 요청하고 싶어요"},
	{ID: InquiryTypeAccount, Label: "계정 문제", Description: "로그인이나 계정 관련 문제가 있어요"},
	{ID: InquiryTypeComplaint, Label: "불만/클레임", Description: "서비스나 제품에 문제가 있어요"},
	{ID: InquiryTypeGeneral, Label: "일반 문의", Description: "기타 궁금한 점이 있어요"},
}

func (t InquiryType) IsValid() bool {
	for _, info := range InquiryTypes {
		if info.ID == t {
			return true
		}
	}
	return false
}

func (t InquiryType) Label() string {
	for _, info := range InquiryTypes {
		if info.ID == t {
			return info.Label
		}
	}
	return ""
}

// UsesOrderNumber reports whether the order number field applies to the type.
func (t InquiryType) UsesOrderNumber() bool {
	return t == InquiryTypeRefund || t == InquiryTypeComplaint
}

// ParseInquiryType normalizes user input; ok is false for anything outside the set.
func ParseInquiryType(raw string) (InquiryType, bool) {
	t := InquiryType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.IsValid()
}

// UserInfo is the contact record collected by the wizard. It lives only as long
// as the session that owns it.
type UserInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	OrderNumber  string `json:"orderNumber,omitempty"`
	CompanyGuess string `json:"companyGuess,omitempty"`
}

// Attachment is file metadata only; contents are never read.
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

type InquiryDraft struct {
	Type        InquiryType  `json:"type"`
	Keywords    string       `json:"keywords"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Notification is the payload handed to a notification sink.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
