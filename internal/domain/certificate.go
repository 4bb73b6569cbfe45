package domain

import "time"

var CertificateCategories = []string{"quality", "organic", "safety", "export", "award", "other"}

type Certificate struct {
	ID            int64      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name          string     `gorm:"size:200;index" json:"name"`
	Description   string     `gorm:"size:1000" json:"description"`
	Image         string     `gorm:"size:1024" json:"image"`
	ImagePublicID string     `gorm:"size:255" json:"imagePublicId"`
	Category      string     `gorm:"size:32;index" json:"category"`
	IssuedBy      string     `gorm:"size:200" json:"issuedBy"`
	IssueDate     *time.Time `json:"issueDate,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	IsActive      bool       `gorm:"index" json:"isActive"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName Specify table name
func (Certificate) TableName() string {
	return "cms_certificate"
}

func ValidateCertificate(c *Certificate) FieldErrors {
	var errs FieldErrors
	if errs.required("name", c.Name) {
		errs.maxLen("name", c.Name, 200)
	}
	errs.maxLen("description", c.Description, 1000)
	if c.Category == "" {
		c.Category = "other"
	}
	errs.oneOf("category", c.Category, CertificateCategories)
	if c.IssueDate != nil && c.ExpiryDate != nil && c.ExpiryDate.Before(*c.IssueDate) {
		errs.Add("expiryDate", "expiry date cannot be before issue date")
	}
	return errs
}
