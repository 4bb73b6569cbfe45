package domain

import (
	"time"

	"github.com/verdantlabs/catalogd/pkg/common"
)

// Category groups products. NameKey holds the case-folded name and carries the
// unique index.
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name        string    `gorm:"size:100" json:"name"`
	NameKey     string    `gorm:"size:100;uniqueIndex" json:"-"`
	Description string    `gorm:"size:500" json:"description"`
	IsActive    bool      `gorm:"index" json:"isActive"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "cms_category"
}

// CategoryStats carries the per-category product counts joined into listings.
type CategoryStats struct {
	ProductCount int64 `json:"productCount"`
	InStockCount int64 `json:"inStockCount"`
}

// CategoryWithStats is a category as presented by the list endpoint.
type CategoryWithStats struct {
	Category
	CategoryStats
}

func ValidateCategory(c *Category) FieldErrors {
	var errs FieldErrors
	if errs.required("name", c.Name) {
		errs.maxLen("name", c.Name, 100)
	}
	errs.maxLen("description", c.Description, 500)
	c.NameKey = common.FoldKey(c.Name)
	return errs
}
