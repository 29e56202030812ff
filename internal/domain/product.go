package domain

import "time"

// ProductCategory is the subscription tier of a catalog system.
type ProductCategory string

const (
	ProductCategoryBasic        ProductCategory = "basic"
	ProductCategoryAdvanced     ProductCategory = "advanced"
	ProductCategoryProfessional ProductCategory = "professional"
	ProductCategoryEnterprise   ProductCategory = "enterprise"
)

// Valid reports whether c is a known category.
func (c ProductCategory) Valid() bool {
	switch c {
	case ProductCategoryBasic, ProductCategoryAdvanced, ProductCategoryProfessional, ProductCategoryEnterprise:
		return true
	}
	return false
}

// Product is a subscription system offered in the catalog.
type Product struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      ProductCategory `json:"category"`
	Price         float64         `json:"price"`
	OriginalPrice *float64        `json:"originalPrice,omitempty"`
	Image         string          `json:"image,omitempty"`
	Features      []string        `json:"features"`
	Gallery       []string        `json:"gallery,omitempty"`
	Videos        []string        `json:"videos,omitempty"`
	Order         int             `json:"order"`
	IsActive      bool            `json:"isActive"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
