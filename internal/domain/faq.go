package domain

import "time"

// FAQCategory groups questions.
type FAQCategory string

const (
	FAQCategoryTechnical FAQCategory = "technical"
	FAQCategoryPricing   FAQCategory = "pricing"
	FAQCategorySupport   FAQCategory = "support"
)

// Valid reports whether c is a known category.
func (c FAQCategory) Valid() bool {
	switch c {
	case FAQCategoryTechnical, FAQCategoryPricing, FAQCategorySupport:
		return true
	}
	return false
}

// FAQ is a public question and answer.
type FAQ struct {
	ID        string      `json:"id,omitempty"`
	Category  FAQCategory `json:"category"`
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Order     int         `json:"order"`
	IsActive  bool        `json:"isActive"`
	CreatedBy string      `json:"createdBy,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
