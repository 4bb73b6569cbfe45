package adminapi

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/pkg/common"
)

func isFormRequest(c echo.Context) bool {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ctype, echo.MIMEMultipartForm) ||
		strings.HasPrefix(ctype, echo.MIMEApplicationForm)
}

// splitListHook decodes "a, b" into []string{"a", "b"}.
func splitListHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	return common.SplitList(data.(string)), nil
}

// bindPayload decodes a JSON body, or the text fields of a form, into dst.
// Form values are weakly typed: "true", "12.5" and "a,b" decode into bool,
// number and []string fields.
func bindPayload(c echo.Context, dst interface{}) error {
	if !isFormRequest(c) {
		if err := c.Bind(dst); err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse request body").SetInternal(err)
		}
		return nil
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse form data").SetInternal(err)
	}
	input := make(map[string]interface{}, len(form))
	for key, values := range form {
		if len(values) == 1 {
			input[key] = values[0]
		} else {
			input[key] = values
		}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       splitListHook,
		Result:           dst,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := decoder.Decode(input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data: "+err.Error()).SetInternal(err)
	}
	return nil
}
