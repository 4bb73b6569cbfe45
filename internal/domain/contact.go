package domain

import (
	"strings"
	"time"
)

// ContactTypes are the contact methods that may be published.
var ContactTypes = []string{"phone", "email", "whatsapp", "address", "working_hours", "fax", "telegram"}

// ExcludedContactTypes are website and social channels, which are managed
// elsewhere and rejected here.
var ExcludedContactTypes = []string{"website", "facebook", "instagram", "twitter", "linkedin", "youtube", "tiktok", "social"}

type Contact struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Type      string    `gorm:"size:32;index" json:"type"`
	Label     string    `gorm:"size:100" json:"label"`
	Value     string    `gorm:"size:500" json:"value"`
	Icon      string    `gorm:"size:100" json:"icon"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `gorm:"index" json:"isActive"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (Contact) TableName() string {
	return "cms_contact"
}

func ValidateContact(c *Contact) FieldErrors {
	var errs FieldErrors
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if errs.required("type", c.Type) {
		excluded := false
		for _, t := range ExcludedContactTypes {
			if t == c.Type {
				errs.Add("type", "%s contacts are not allowed here", c.Type)
				excluded = true
				break
			}
		}
		if !excluded {
			errs.oneOf("type", c.Type, ContactTypes)
		}
	}
	if errs.required("label", c.Label) {
		errs.maxLen("label", c.Label, 100)
	}
	if errs.required("value", c.Value) {
		errs.maxLen("value", c.Value, 500)
	}
	if c.Type == "email" && c.Value != "" && !IsEmail(c.Value) {
		errs.Add("value", "please enter a valid email")
	}
	return errs
}
