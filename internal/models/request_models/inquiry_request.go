package request_models

type CompanySearchQuery struct {
	Q        string `form:"q" binding:"max=100"`
	Category string `form:"category" binding:"max=32"`
}

// StartSessionRequest either names a catalog company or skips selection.
type StartSessionRequest struct {
	Company              string `json:"company" binding:"max=100"`
	SkipCompanySelection bool   `json:"skipCompanySelection"`
}

type SelectTypeRequest struct {
	Type string `json:"type" binding:"required,max=32"`
}

type UserInfoRequest struct {
	Name         string `json:"name" binding:"max=100"`
	Email        string `json:"email" binding:"max=254"`
	Phone        string `json:"phone" binding:"max=32"`
	OrderNumber  string `json:"orderNumber" binding:"max=64"`
	CompanyGuess string `json:"companyGuess" binding:"max=100"`
}

type KeywordsRequest struct {
	Keywords string `json:"keywords" binding:"max=200"`
}

type DraftRequest struct {
	Text string `json:"text" binding:"max=5000"`
}

type AttachmentItem struct {
	Name string `json:"name" binding:"required,max=255"`
	Size int64  `json:"size" binding:"gte=0"`
	Type string `json:"type" binding:"max=127"`
}

type AttachmentsRequest struct {
	Files []AttachmentItem `json:"files" binding:"required,min=1,max=10,dive"`
}
