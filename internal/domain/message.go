package domain

import (
	"time"

	"gorm.io/datatypes"
)

var MessageCategories = []string{"general", "sales", "herbs", "complaint", "support", "partnership"}

// MessagePriorities lists every priority label, including the ones only an
// admin can assign.
var MessagePriorities = []string{PriorityCEO, PrioritySalesManager, PriorityHerbs, PriorityHigh, PriorityMedium, PriorityLow}

// MessageNote is an internal remark attached by an operator.
type MessageNote struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is an inbound contact-form submission.
type Message struct {
	ID        int64                            `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name      string                           `gorm:"size:100" json:"name"`
	Email     string                           `gorm:"size:255;index" json:"email"`
	Phone     string                           `gorm:"size:50" json:"phone"`
	Subject   string                           `gorm:"size:200" json:"subject"`
	Body      string                           `gorm:"column:message;size:5000" json:"message"`
	Category  string                           `gorm:"size:32;index" json:"category"`
	Priority  string                           `gorm:"size:32;index" json:"priority"`
	IsRead    bool                             `gorm:"index" json:"isRead"`
	Replied   bool                             `gorm:"index" json:"replied"`
	RepliedAt *time.Time                       `json:"repliedAt,omitempty"`
	Notes     datatypes.JSONSlice[MessageNote] `json:"notes"`
	IPAddress string                           `gorm:"size:64" json:"ipAddress"`
	CreatedAt time.Time                        `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time                        `json:"updatedAt"`
}

// TableName Specify table name
func (Message) TableName() string {
	return "cms_message"
}

func ValidateMessage(m *Message) FieldErrors {
	var errs FieldErrors
	if errs.required("name", m.Name) {
		errs.maxLen("name", m.Name, 100)
	}
	if errs.required("email", m.Email) {
		errs.email("email", m.Email)
	}
	errs.maxLen("phone", m.Phone, 50)
	if errs.required("subject", m.Subject) {
		errs.maxLen("subject", m.Subject, 200)
	}
	if errs.required("message", m.Body) {
		errs.maxLen("message", m.Body, 5000)
	}
	if m.Category == "" {
		m.Category = "general"
	}
	errs.oneOf("category", m.Category, MessageCategories)
	if m.Priority != "" {
		errs.oneOf("priority", m.Priority, MessagePriorities)
	}
	return errs
}
