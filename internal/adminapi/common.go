package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/internal/app"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidID     = errors.New("invalid id")
	ErrDuplicate     = errors.New("duplicate value")
	ErrCategoryInUse = errors.New("category in use")
)

// GetAppContext returns the application attached to the request by the web server.
func GetAppContext(c echo.Context) app.AppContext {
	appCtx, _ := c.Get(webserver.AppContextKey).(app.AppContext)
	return appCtx
}

// GetDB returns the database handle bound to the request context.
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Data: data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, webserver.Response{Success: true, Data: data})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Message: message})
}

func paged(c echo.Context, data interface{}, pagination query.Pagination) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Data: data, Pagination: &pagination})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, webserver.Response{Success: false, Code: code, Message: message, Errors: details})
}

// serverError logs err and answers with a generic 500.
func serverError(c echo.Context, err error, action string) error {
	zap.L().Error(action,
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// internalError logs err and returns a generic 500 for handlers that cannot
// write the response themselves.
func internalError(err error, action string) error {
	zap.L().Error(action, zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(ErrInvalidID, "%s=%q", name, c.Param(name))
	}
	return id, nil
}

func invalidID(c echo.Context, entity string) error {
	return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+entity+" ID", nil)
}

// handleValidationError renders field errors from the domain validators or
// from struct tag validation.
func handleValidationError(c echo.Context, err error) error {
	var fields domain.FieldErrors
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &fields):
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fields = append(fields, domain.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
	default:
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " cannot exceed " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "email":
		return "please enter a valid email"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return fe.Field() + " is invalid"
}

// handleStoreError maps persistence errors onto the response taxonomy.
func handleStoreError(c echo.Context, err error, entity string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", entity+" not found", nil)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, ErrDuplicate):
		return fail(c, http.StatusBadRequest, "DUPLICATE", entity+" already exists", nil)
	}
	return serverError(c, err, "failed to access "+strings.ToLower(entity))
}

// conflict reports a uniqueness violation on field.
func conflict(c echo.Context, field, message string) error {
	return fail(c, http.StatusBadRequest, "DUPLICATE", message,
		domain.FieldErrors{{Field: field, Message: message}})
}

// parseList validates the list parameters of a request against r.
func parseList(c echo.Context, r query.Resource) (query.Params, error) {
	return r.Parse(c.QueryParams())
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
