package response_models

type CompanyResponse struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	CategoryLabel string `json:"categoryLabel"`
}

type CategoryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CompanySearchResponse carries CanSkip so an empty result can offer the
// skip-company action instead of a dead end.
type CompanySearchResponse struct {
	Heading   string            `json:"heading"`
	Companies []CompanyResponse `json:"companies"`
	Total     int               `json:"total"`
	CanSkip   bool              `json:"canSkip"`
}
