package wizard_models

// Category groups companies in the catalog. CategoryAll is only a filter value,
// never a company category.
type Category string

const (
	CategoryAll         Category = "all"
	CategoryTech        Category = "tech"
	CategoryElectronics Category = "electronics"
	CategoryEcommerce   Category = "ecommerce"
	CategoryFinance     Category = "finance"
	CategoryTelecom     Category = "telecom"
	CategoryAutomotive  Category = "automotive"
	CategoryRetail      Category = "retail"
	CategoryLogistics   Category = "logistics"
)

var categoryLabels = map[Category]string{
	CategoryAll:         "전체",
	CategoryTech:        "IT/인터넷",
	CategoryElectronics: "전자제품",
	CategoryEcommerce:   "쇼핑몰",
	CategoryFinance:     "금융",
	CategoryTelecom:     "통신",
	CategoryAutomotive:  "자동차",
	CategoryRetail:      "유통",
	CategoryLogistics:   "물류",
}

// FilterCategories is the display order of the category filter.
var FilterCategories = []Category{
	CategoryAll,
	CategoryTech,
	CategoryElectronics,
	CategoryEcommerce,
	CategoryFinance,
	CategoryTelecom,
	CategoryAutomotive,
	CategoryRetail,
	CategoryLogistics,
}

// Label returns the display label, or the raw value for unknown categories.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Category) IsKnown() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Company is an immutable catalog entry. Name is its identity.
type Company struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}
