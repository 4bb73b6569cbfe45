package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var teamResource = query.Resource{
	DefaultLimit:  20,
	SearchColumns: []string{"name", "position", "department"},
	SortColumns: map[string]string{
		"name":      "name",
		"position":  "position",
		"sortOrder": "sort_order",
		"createdAt": "created_at",
	},
	BoolFilters:  map[string]string{"isActive": "is_active"},
	EqualFilters: map[string]string{"department": "department"},
}

type teamPayload struct {
	Name       *string  `json:"name"`
	Position   *string  `json:"position"`
	Department *string  `json:"department"`
	Bio        *string  `json:"bio"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Whatsapp   *string  `json:"whatsapp"`
	Skills     []string `json:"skills"`
	Languages  []string `json:"languages"`
	SortOrder  *int     `json:"sortOrder"`
	IsActive   *bool    `json:"isActive"`
}

func (p teamPayload) apply(m *domain.TeamMember) {
	for dst, src := range map[*string]*string{
		&m.Name:       p.Name,
		&m.Position:   p.Position,
		&m.Department: p.Department,
		&m.Bio:        p.Bio,
		&m.Email:      p.Email,
		&m.Phone:      p.Phone,
		&m.Whatsapp:   p.Whatsapp,
	} {
		if src != nil {
			*dst = *trimPtr(src)
		}
	}
	if p.Skills != nil {
		m.Skills = trimAll(p.Skills)
	}
	if p.Languages != nil {
		m.Languages = trimAll(p.Languages)
	}
	if p.SortOrder != nil {
		m.SortOrder = *p.SortOrder
	}
	if p.IsActive != nil {
		m.IsActive = *p.IsActive
	}
}

// registerTeamRoutes registers team member CRUD routes
func registerTeamRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/team", listTeam)
	srv.ApiGET("/team/:id", getTeamMember)
	srv.ApiPOST("/team", createTeamMember, srv.AdminAuth())
	srv.ApiPUT("/team/:id", updateTeamMember, srv.AdminAuth())
	srv.ApiDELETE("/team/:id", deleteTeamMember, srv.AdminAuth())
}

func listTeam(c echo.Context) error {
	params, err := parseList(c, teamResource)
	if err != nil {
		return handleValidationError(c, err)
	}

	base := params.Filter(GetDB(c).Model(&domain.TeamMember{})).Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return serverError(c, err, "failed to count team members")
	}

	members := make([]domain.TeamMember, 0, params.Limit)
	if err := params.Paginate(base).Find(&members).Error; err != nil {
		return serverError(c, err, "failed to query team members")
	}
	return paged(c, members, params.Pagination(total))
}

func getTeamMember(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "team member")
	}
	var m domain.TeamMember
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; err != nil {
		return handleStoreError(c, err, "Team member")
	}
	return ok(c, m)
}

func teamEmailTaken(c echo.Context, email string, exceptID int64) (bool, error) {
	var exists int64
	err := GetDB(c).Model(&domain.TeamMember{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&exists).Error
	return exists > 0, err
}

func createTeamMember(c echo.Context) error {
	var payload teamPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	m := domain.TeamMember{IsActive: true, Skills: []string{}, Languages: []string{}}
	payload.apply(&m)
	if err := domain.ValidateTeamMember(&m).Err(); err != nil {
		return handleValidationError(c, err)
	}

	taken, err := teamEmailTaken(c, m.Email, 0)
	if err != nil {
		return serverError(c, err, "failed to check team member email")
	}
	if taken {
		return conflict(c, "email", "Team member with this email already exists")
	}

	img, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	if img != nil {
		m.Image, m.ImagePublicID = img.Path, img.Filename
	}

	m.ID = common.UUIDint64()
	if err := GetDB(c).Create(&m).Error; err != nil {
		if img != nil {
			discardAssets(c, img.Filename)
		}
		return handleStoreError(c, err, "Team member")
	}
	zap.L().Info("team member created", zap.Int64("id", m.ID), zap.String("email", m.Email))
	return created(c, m)
}

func updateTeamMember(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "team member")
	}
	var payload teamPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	var m domain.TeamMember
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; err != nil {
		return handleStoreError(c, err, "Team member")
	}
	payload.apply(&m)
	if err := domain.ValidateTeamMember(&m).Err(); err != nil {
		return handleValidationError(c, err)
	}

	taken, err := teamEmailTaken(c, m.Email, id)
	if err != nil {
		return serverError(c, err, "failed to check team member email")
	}
	if taken {
		return conflict(c, "email", "Team member with this email already exists")
	}

	img, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	previous := ""
	if img != nil {
		previous = m.ImagePublicID
		m.Image, m.ImagePublicID = img.Path, img.Filename
	}

	if err := GetDB(c).Save(&m).Error; err != nil {
		if img != nil {
			discardAssets(c, img.Filename)
		}
		return handleStoreError(c, err, "Team member")
	}
	if previous != "" {
		discardAssets(c, previous)
	}
	return ok(c, m)
}

func deleteTeamMember(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "team member")
	}
	var m domain.TeamMember
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; err != nil {
		return handleStoreError(c, err, "Team member")
	}
	if err := GetDB(c).Delete(&domain.TeamMember{}, id).Error; err != nil {
		return serverError(c, err, "failed to delete team member")
	}
	if m.ImagePublicID != "" {
		discardAssets(c, m.ImagePublicID)
	}
	zap.L().Info("team member deleted", zap.Int64("id", id))
	return okMessage(c, "Team member deleted successfully")
}
