package services

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"askdesk/internal/models/wizard_models"
	"askdesk/pkg/utils"
)

// InquiryTemplateEngine turns the wizard inputs into a draft. Generate is pure:
// identical inputs always produce identical text, and missing fields degrade to
// placeholders instead of failing.
type InquiryTemplateEngine interface {
	Generate(
		inquiryType wizard_models.InquiryType,
		company string,
		companyGuess string,
		userInfo wizard_models.UserInfo,
		keywords string,
	) (string, error)
	CompanyPlaceholder() string
}

type templateData struct {
	Company     string
	Keywords    string
	OrderNumber string
	Email       string
	Phone       string
}

type templateSet struct {
	companyPlaceholder string
	orderPlaceholder   string
	emailPlaceholder   string
	phonePlaceholder   string
	templates          map[wizard_models.InquiryType]*template.Template
}

func mustTemplates(locale string, sources map[wizard_models.InquiryType]string) map[wizard_models.InquiryType]*template.Template {
	parsed := make(map[wizard_models.InquiryType]*template.Template, len(sources))
	for inquiryType, source := range sources {
		name := fmt.Sprintf("%s.%s", locale, inquiryType)
		parsed[inquiryType] = template.Must(template.New(name).Option("missingkey=error").Parse(source))
	}
	return parsed
}

var templateSets = map[string]templateSet{
	"ko": {
		companyPlaceholder: "[기업명]",
		orderPlaceholder:   "XXX-XXX-XXX",
		emailPlaceholder:   "이메일 주소",
		phonePlaceholder:   "연락처",
		templates: mustTemplates("ko", map[wizard_models.InquiryType]string{
			wizard_models.InquiryTypeRefund: `안녕하세요, {{.Company}} 고객센터입니다.

주문번호 {{.OrderNumber}} 관련하여 {{or .Keywords "제품"}}에 대한 환불을 요청드리고자 연락드립니다.

{{if .Keywords}}구체적인 사유: {{.Keywords}}{{else}}구체적인 사유를 말씀해주시면 빠른 처리가 가능합니다.{{end}}

빠른 처리 부탁드리며, 추가 서류가 필요하시면 언제든 말씀해주세요.

감사합니다.`,
			wizard_models.InquiryTypeAccount: `안녕하세요, {{.Company}} 고객센터입니다.

계정 관련 문제로 연락드립니다.
{{if .Keywords}}문제 상황: {{.Keywords}}{{else}}로그인 또는 계정 접근에 어려움이 있습니다.{{end}}

등록된 이메일: {{.Email}}
연락처: {{.Phone}}

빠른 해결 방안을 안내해주시면 감사하겠습니다.

감사합니다.`,
			wizard_models.InquiryTypeComplaint: `안녕하세요, {{.Company}} 고객센터입니다.

서비스 이용 중 불편한 점이 있어 연락드립니다.
{{if .Keywords}}불편사항: {{.Keywords}}{{else}}구체적인 불편사항을 설명드리겠습니다.{{end}}

관련 주문번호: {{.OrderNumber}}

개선 방안과 해결책을 제시해주시면 감사하겠습니다.

감사합니다.`,
			wizard_models.InquiryTypeGeneral: `안녕하세요, {{.Company}} 고객센터입니다.

{{or .Keywords "서비스"}}에 대해 문의드리고자 합니다.

{{if .Keywords}}문의 내용: {{.Keywords}}{{else}}자세한 내용은 다음과 같습니다.{{end}}

빠른 답변 부탁드립니다.

감사합니다.`,
		}),
	},
	"en": {
		companyPlaceholder: "[company name]",
		orderPlaceholder:   "XXX-XXX-XXX",
		emailPlaceholder:   "email address",
		phonePlaceholder:   "phone number",
		templates: mustTemplates("en", map[wizard_models.InquiryType]string{
			wizard_models.InquiryTypeRefund: `Hello {{.Company}} customer service,

I am writing to request a refund for {{or .Keywords "a product"}} on order {{.OrderNumber}}.

{{if .Keywords}}Reason: {{.Keywords}}{{else}}I can share the specific reason so this can be processed quickly.{{end}}

Please let me know if any additional documents are needed.

Thank you.`,
			wizard_models.InquiryTypeAccount: `Hello {{.Company}} customer service,

I am contacting you about a problem with my account.
{{if .Keywords}}Issue: {{.Keywords}}{{else}}I am having trouble logging in or accessing my account.{{end}}

Registered email: {{.Email}}
Phone: {{.Phone}}

I would appreciate guidance on resolving this quickly.

Thank you.`,
			wizard_models.InquiryTypeComplaint: `Hello {{.Company}} customer service,

I experienced a problem while using your service.
{{if .Keywords}}Issue: {{.Keywords}}{{else}}I would like to describe the specific problem.{{end}}

Related order number: {{.OrderNumber}}

Please let me know how this will be improved and resolved.

Thank you.`,
			wizard_models.InquiryTypeGeneral: `Hello {{.Company}} customer service,

I have a question about {{or .Keywords "your service"}}.

{{if .Keywords}}Details: {{.Keywords}}{{else}}The details are as follows.{{end}}

I look forward to your reply.

Thank you.`,
		}),
	},
}

type inquiryTemplateEngine struct {
	set templateSet
}

func NewInquiryTemplateEngine(locale string) (InquiryTemplateEngine, error) {
	set, ok := templateSets[locale]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported template locale %q", utils.ErrInvalidInput, locale)
	}
	return &inquiryTemplateEngine{set: set}, nil
}

func (e *inquiryTemplateEngine) CompanyPlaceholder() string {
	return e.set.companyPlaceholder
}

// ResolveCompanyLabel picks the explicit company, then the user's guess, then
// the placeholder token.
func ResolveCompanyLabel(company, companyGuess, placeholder string) string {
	if label := strings.TrimSpace(company); label != "" {
		return label
	}
	if label := strings.TrimSpace(companyGuess); label != "" {
		return label
	}
	return placeholder
}

func (e *inquiryTemplateEngine) Generate(
	inquiryType wizard_models.InquiryType,
	company string,
	companyGuess string,
	userInfo wizard_models.UserInfo,
	keywords string,
) (string, error) {
	tpl, ok := e.set.templates[inquiryType]
	if !ok {
		tpl = e.set.templates[wizard_models.InquiryTypeGeneral]
	}

	data := templateData{
		Company:     ResolveCompanyLabel(company, companyGuess, e.set.companyPlaceholder),
		Keywords:    strings.TrimSpace(keywords),
		OrderNumber: e.set.orderPlaceholder,
		Email:       valueOr(userInfo.Email, e.set.emailPlaceholder),
		Phone:       valueOr(userInfo.Phone, e.set.phonePlaceholder),
	}
	if inquiryType.UsesOrderNumber() {
		data.OrderNumber = valueOr(userInfo.OrderNumber, e.set.orderPlaceholder)
	}

	var out bytes.Buffer
	if err := tpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrGenerationFailure, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("%w: template %s produced no text", utils.ErrGenerationFailure, tpl.Name())
	}
	return out.String(), nil
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
