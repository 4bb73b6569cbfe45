package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a catalog item. CategoryID is a weak reference resolved by lookup.
type Product struct {
	ID            int64                       `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name          string                      `gorm:"size:200;index" json:"name"`
	Description   string                      `gorm:"size:2000" json:"description"`
	Image         string                      `gorm:"size:1024" json:"image"`
	ImagePublicID string                      `gorm:"size:255" json:"imagePublicId"`
	CategoryID    int64                       `gorm:"index" json:"categoryId,string"`
	Category      *Category                   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Price         float64                     `json:"price"`
	InStock       bool                        `gorm:"index" json:"inStock"`
	Featured      bool                        `gorm:"index" json:"featured"`
	IsActive      bool                        `gorm:"index" json:"isActive"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt     time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "cms_product"
}

func ValidateProduct(p *Product) FieldErrors {
	var errs FieldErrors
	if errs.required("name", p.Name) {
		errs.maxLen("name", p.Name, 200)
	}
	if errs.required("description", p.Description) {
		errs.maxLen("description", p.Description, 2000)
	}
	if p.CategoryID == 0 {
		errs.Add("category", "category is required")
	}
	if p.Price < 0 {
		errs.Add("price", "price cannot be negative")
	}
	for _, tag := range p.Tags {
		if len([]rune(tag)) > 50 {
			errs.Add("tags", "tag %q cannot exceed 50 characters", tag)
			break
		}
	}
	return errs
}
