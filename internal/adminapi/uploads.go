package adminapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/internal/assets"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"go.uber.org/zap"
)

const defaultMaxUpload int64 = 5 << 20

type imageFile struct {
	name string
	data []byte
}

func registerUploadRoutes(srv *webserver.AdminServer) {
	srv.ApiPOST("/uploads", uploadImage, srv.AdminAuth())
}

func maxUploadSize(c echo.Context) int64 {
	raw := GetAppContext(c).Config().Assets.MaxUploadSize
	if raw == "" {
		return defaultMaxUpload
	}
	n, err := bytes.Parse(raw)
	if err != nil || n <= 0 {
		zap.S().Warnf("invalid assets.max_upload_size %q, using %s", raw, bytes.Format(defaultMaxUpload))
		return defaultMaxUpload
	}
	return n
}

// receiveImage reads the optional image file of a multipart request. It
// returns nil when the request carries no file.
func receiveImage(c echo.Context, field string) (*imageFile, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file").SetInternal(err)
	}
	limit := maxUploadSize(c)
	if fh.Size > limit {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			"Image exceeds the maximum size of "+bytes.Format(limit))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "read uploaded file")
	}
	if int64(len(data)) > limit {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			"Image exceeds the maximum size of "+bytes.Format(limit))
	}
	if len(data) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Uploaded file is empty")
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, echo.NewHTTPError(http.StatusUnsupportedMediaType, "Only image files are allowed")
	}
	return &imageFile{name: fh.Filename, data: data}, nil
}

// storeImage uploads img to the media host.
func storeImage(c echo.Context, img *imageFile) (assets.UploadResult, error) {
	res, err := GetAppContext(c).Assets().Upload(c.Request().Context(), img.name, img.data)
	if err != nil {
		return assets.UploadResult{}, errors.Wrap(err, "store image")
	}
	return res, nil
}

// discardAssets schedules best-effort removal of refs from the media host.
func discardAssets(c echo.Context, refs ...string) {
	if cleaner := GetAppContext(c).Cleaner(); cleaner != nil {
		cleaner.Discard(refs...)
	}
}

// receiveAndStore handles the optional image of a create or update request.
// A nil result means no image was sent. The returned error is ready to be
// returned from the handler.
func receiveAndStore(c echo.Context) (*assets.UploadResult, error) {
	img, err := receiveImage(c, "image")
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, internalError(err, "failed to receive image")
	}
	if img == nil {
		return nil, nil
	}
	res, err := storeImage(c, img)
	if err != nil {
		return nil, internalError(err, "failed to upload image")
	}
	return &res, nil
}

func uploadImage(c echo.Context) error {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Expected multipart form data with an image file", nil)
	}
	res, err := receiveAndStore(c)
	if err != nil {
		return err
	}
	if res == nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Image file is required", nil)
	}
	zap.L().Info("image uploaded", zap.String("ref", res.Filename))
	return created(c, res)
}
