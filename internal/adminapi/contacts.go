package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"gorm.io/gorm"
)

var contactResource = query.Resource{
	DefaultLimit:  100,
	SearchColumns: []string{"label", "value"},
	SortColumns: map[string]string{
		"type":      "type",
		"label":     "label",
		"sortOrder": "sort_order",
		"createdAt": "created_at",
	},
	BoolFilters:  map[string]string{"isActive": "is_active"},
	EqualFilters: map[string]string{"type": "type"},
}

type contactPayload struct {
	Type      *string `json:"type"`
	Label     *string `json:"label"`
	Value     *string `json:"value"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sortOrder"`
	IsActive  *bool   `json:"isActive"`
}

func (p contactPayload) apply(ct *domain.Contact) {
	if p.Type != nil {
		ct.Type = *trimPtr(p.Type)
	}
	if p.Label != nil {
		ct.Label = *trimPtr(p.Label)
	}
	if p.Value != nil {
		ct.Value = *trimPtr(p.Value)
	}
	if p.Icon != nil {
		ct.Icon = *trimPtr(p.Icon)
	}
	if p.SortOrder != nil {
		ct.SortOrder = *p.SortOrder
	}
	if p.IsActive != nil {
		ct.IsActive = *p.IsActive
	}
}

// registerContactRoutes registers contact method CRUD routes
func registerContactRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/contacts", listContacts)
	srv.ApiGET("/contacts/:id", getContact)
	srv.ApiPOST("/contacts", createContact, srv.AdminAuth())
	srv.ApiPUT("/contacts/:id", updateContact, srv.AdminAuth())
	srv.ApiDELETE("/contacts/:id", deleteContact, srv.AdminAuth())
}

func listContacts(c echo.Context) error {
	params, err := parseList(c, contactResource)
	if err != nil {
		return handleValidationError(c, err)
	}

	base := params.Filter(GetDB(c).Model(&domain.Contact{})).Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return serverError(c, err, "failed to count contacts")
	}

	contacts := make([]domain.Contact, 0, params.Limit)
	if err := params.Paginate(base).Find(&contacts).Error; err != nil {
		return serverError(c, err, "failed to query contacts")
	}
	return paged(c, contacts, params.Pagination(total))
}

func getContact(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "contact")
	}
	var ct domain.Contact
	if err := GetDB(c).Where("id = ?", id).First(&ct).Error; err != nil {
		return handleStoreError(c, err, "Contact")
	}
	return ok(c, ct)
}

func createContact(c echo.Context) error {
	var payload contactPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}
	ct := domain.Contact{IsActive: true}
	payload.apply(&ct)
	if err := domain.ValidateContact(&ct).Err(); err != nil {
		return handleValidationError(c, err)
	}

	ct.ID = common.UUIDint64()
	if err := GetDB(c).Create(&ct).Error; err != nil {
		return handleStoreError(c, err, "Contact")
	}
	return created(c, ct)
}

func updateContact(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "contact")
	}
	var payload contactPayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	var ct domain.Contact
	if err := GetDB(c).Where("id = ?", id).First(&ct).Error; err != nil {
		return handleStoreError(c, err, "Contact")
	}
	payload.apply(&ct)
	if err := domain.ValidateContact(&ct).Err(); err != nil {
		return handleValidationError(c, err)
	}
	if err := GetDB(c).Save(&ct).Error; err != nil {
		return handleStoreError(c, err, "Contact")
	}
	return ok(c, ct)
}

func deleteContact(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "contact")
	}
	res := GetDB(c).Delete(&domain.Contact{}, id)
	if res.Error != nil {
		return serverError(c, res.Error, "failed to delete contact")
	}
	if res.RowsAffected == 0 {
		return handleStoreError(c, gorm.ErrRecordNotFound, "Contact")
	}
	return okMessage(c, "Contact deleted successfully")
}
