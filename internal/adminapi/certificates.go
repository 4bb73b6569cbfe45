package adminapi

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var certificateResource = query.Resource{
	DefaultLimit:  20,
	SearchColumns: []string{"name", "description", "issued_by"},
	SortColumns: map[string]string{
		"name":       "name",
		"issueDate":  "issue_date",
		"expiryDate": "expiry_date",
		"createdAt":  "created_at",
	},
	BoolFilters:  map[string]string{"isActive": "is_active"},
	EqualFilters: map[string]string{"category": "category"},
}

// certificatePayload accepts dates in any common layout ("2024-03-01",
// "03/01/2024", RFC 3339). An empty date string clears the date.
type certificatePayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	IssuedBy    *string `json:"issuedBy"`
	IssueDate   *string `json:"issueDate"`
	ExpiryDate  *string `json:"expiryDate"`
	IsActive    *bool   `json:"isActive"`
}

func parseDate(field string, raw *string, dst **time.Time, errs *domain.FieldErrors) {
	if raw == nil {
		return
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		*dst = nil
		return
	}
	t, err := dateparse.ParseIn(v, time.UTC)
	if err != nil {
		errs.Add(field, "%s is not a valid date", field)
		return
	}
	*dst = &t
}

func (p certificatePayload) apply(cert *domain.Certificate) domain.FieldErrors {
	var errs domain.FieldErrors
	if p.Name != nil {
		cert.Name = *trimPtr(p.Name)
	}
	if p.Description != nil {
		cert.Description = *trimPtr(p.Description)
	}
	if p.Category != nil {
		cert.Category = strings.ToLower(*trimPtr(p.Category))
	}
	if p.IssuedBy != nil {
		cert.IssuedBy = *trimPtr(p.IssuedBy)
	}
	parseDate("issueDate", p.IssueDate, &cert.IssueDate, &errs)
	parseDate("expiryDate", p.ExpiryDate, &cert.ExpiryDate, &errs)
	if p.IsActive != nil {
		cert.IsActive = *p.IsActive
	}
	return errs
}

// registerCertificateRoutes registers certificate CRUD routes
func registerCertificateRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/certificates", listCertificates)
	srv.ApiGET("/certificates/:id", getCertificate)
	srv.ApiPOST("/certificates", createCertificate, srv.AdminAuth())
	srv.ApiPUT("/certificates/:id", updateCertificate, srv.AdminAuth())
	srv.ApiDELETE("/certificates/:id", deleteCertificate, srv.AdminAuth())
}

func listCertificates(c echo.Context) error {
	params, err := parseList(c, certificateResource)
	if err != nil {
		return handleValidationError(c, err)
	}

	base := params.Filter(GetDB(c).Model(&domain.Certificate{})).Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return serverError(c, err, "failed to count certificates")
	}

	certs := make([]domain.Certificate, 0, params.Limit)
	if err := params.Paginate(base).Find(&certs).Error; err != nil {
		return serverError(c, err, "failed to query certificates")
	}
	return paged(c, certs, params.Pagination(total))
}

func getCertificate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "certificate")
	}
	var cert domain.Certificate
	if err := GetDB(c).Where("id = ?", id).First(&cert).Error; err != nil {
		return handleStoreError(c, err, "Certificate")
	}
	return ok(c, cert)
}

func createCertificate(c echo.Context) error {
	var payload certificatePayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	cert := domain.Certificate{IsActive: true}
	errs := payload.apply(&cert)
	errs.Merge(domain.ValidateCertificate(&cert))
	if err := errs.Err(); err != nil {
		return handleValidationError(c, err)
	}

	img, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	if img != nil {
		cert.Image, cert.ImagePublicID = img.Path, img.Filename
	}

	cert.ID = common.UUIDint64()
	if err := GetDB(c).Create(&cert).Error; err != nil {
		if img != nil {
			discardAssets(c, img.Filename)
		}
		return handleStoreError(c, err, "Certificate")
	}
	zap.L().Info("certificate created", zap.Int64("id", cert.ID), zap.String("name", cert.Name))
	return created(c, cert)
}

func updateCertificate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "certificate")
	}
	var payload certificatePayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	var cert domain.Certificate
	if err := GetDB(c).Where("id = ?", id).First(&cert).Error; err != nil {
		return handleStoreError(c, err, "Certificate")
	}
	errs := payload.apply(&cert)
	errs.Merge(domain.ValidateCertificate(&cert))
	if err := errs.Err(); err != nil {
		return handleValidationError(c, err)
	}

	img, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	previous := ""
	if img != nil {
		previous = cert.ImagePublicID
		cert.Image, cert.ImagePublicID = img.Path, img.Filename
	}

	if err := GetDB(c).Save(&cert).Error; err != nil {
		if img != nil {
			discardAssets(c, img.Filename)
		}
		return handleStoreError(c, err, "Certificate")
	}
	if previous != "" {
		discardAssets(c, previous)
	}
	return ok(c, cert)
}

func deleteCertificate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "certificate")
	}
	var cert domain.Certificate
	if err := GetDB(c).Where("id = ?", id).First(&cert).Error; err != nil {
		return handleStoreError(c, err, "Certificate")
	}
	if err := GetDB(c).Delete(&domain.Certificate{}, id).Error; err != nil {
		return serverError(c, err, "failed to delete certificate")
	}
	if cert.ImagePublicID != "" {
		discardAssets(c, cert.ImagePublicID)
	}
	zap.L().Info("certificate deleted", zap.Int64("id", id))
	return okMessage(c, "Certificate deleted successfully")
}
