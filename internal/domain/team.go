package domain

import (
	"time"

	"github.com/verdantlabs/catalogd/pkg/common"
	"gorm.io/datatypes"
)

// TeamMember is a person shown on the team page. Email is stored folded and is
// unique across members.
type TeamMember struct {
	ID            int64                       `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name          string                      `gorm:"size:100;index" json:"name"`
	Position      string                      `gorm:"size:100" json:"position"`
	Department    string                      `gorm:"size:100" json:"department"`
	Bio           string                      `gorm:"size:1000" json:"bio"`
	Image         string                      `gorm:"size:1024" json:"image"`
	ImagePublicID string                      `gorm:"size:255" json:"imagePublicId"`
	Email         string                      `gorm:"size:255;uniqueIndex" json:"email"`
	Phone         string                      `gorm:"size:50" json:"phone"`
	Whatsapp      string                      `gorm:"size:50" json:"whatsapp"`
	Skills        datatypes.JSONSlice[string] `json:"skills"`
	Languages     datatypes.JSONSlice[string] `json:"languages"`
	SortOrder     int                         `json:"sortOrder"`
	IsActive      bool                        `gorm:"index" json:"isActive"`
	CreatedAt     time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// TableName Specify table name
func (TeamMember) TableName() string {
	return "cms_team_member"
}

func ValidateTeamMember(m *TeamMember) FieldErrors {
	var errs FieldErrors
	if errs.required("name", m.Name) {
		errs.maxLen("name", m.Name, 100)
	}
	if errs.required("position", m.Position) {
		errs.maxLen("position", m.Position, 100)
	}
	errs.maxLen("department", m.Department, 100)
	errs.maxLen("bio", m.Bio, 1000)
	m.Email = common.FoldKey(m.Email)
	if errs.required("email", m.Email) {
		errs.email("email", m.Email)
	}
	return errs
}
