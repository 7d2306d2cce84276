package db_models

// Company is the postgres row behind the read-only catalog. Position keeps the
// catalog insertion order stable across queries.
type Company struct {
	BaseModel
	Name     string `gorm:"uniqueIndex;not null"`
	Category string `gorm:"index;not null"`
	Position int    `gorm:"not null;default:0"`
}

func (Company) TableName() string {
	return "companies"
}
