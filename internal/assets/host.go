// Package assets talks to the external media host that stores uploaded images.
package assets

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/config"
)

var ErrNotConfigured = errors.New("asset host is not configured")

// UploadResult identifies a stored asset: Path is the public URL, Filename the
// reference used to delete it later.
type UploadResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Host is the media host contract the catalog relies on.
type Host interface {
	Upload(ctx context.Context, filename string, data []byte) (UploadResult, error)
	Delete(ctx context.Context, ref string) error
}

// HTTPHost uploads to and deletes from a media host over its HTTP API:
//
//	POST {base}/upload   multipart file, folder, public_id -> {"url", "public_id"}
//	POST {base}/destroy  public_id                         -> {"result"}
type HTTPHost struct {
	baseURL string
	apiKey  string
	folder  string
	timeout time.Duration
}

// NewHTTPHost returns a client for the configured media host.
func NewHTTPHost(cfg config.AssetsConfig) *HTTPHost {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPHost{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		folder:  cfg.Folder,
		timeout: timeout,
	}
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Error    string `json:"error"`
}

type destroyResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (h *HTTPHost) Upload(ctx context.Context, filename string, data []byte) (UploadResult, error) {
	if h.baseURL == "" {
		return UploadResult{}, ErrNotConfigured
	}
	publicID := path.Join(h.folder, uuid.NewString())
	var resp uploadResponse
	var code int
	err := gout.POST(h.baseURL + "/upload").
		WithContext(ctx).
		SetTimeout(h.timeout).
		SetHeader(gout.H{"Authorization": "Bearer " + h.apiKey}).
		SetForm(gout.H{
			"file":      gout.FormType{FileName: filename, File: gout.FormMem(data)},
			"folder":    h.folder,
			"public_id": publicID,
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return UploadResult{}, errors.Wrap(err, "upload asset")
	}
	if code != http.StatusOK && code != http.StatusCreated {
		return UploadResult{}, errors.Errorf("upload asset: media host returned %d: %s", code, resp.Error)
	}
	if resp.PublicID == "" {
		resp.PublicID = publicID
	}
	return UploadResult{Path: resp.URL, Filename: resp.PublicID}, nil
}

func (h *HTTPHost) Delete(ctx context.Context, ref string) error {
	if h.baseURL == "" {
		return ErrNotConfigured
	}
	var resp destroyResponse
	var code int
	err := gout.POST(h.baseURL + "/destroy").
		WithContext(ctx).
		SetTimeout(h.timeout).
		SetHeader(gout.H{"Authorization": "Bearer " + h.apiKey}).
		SetWWWForm(gout.H{"public_id": ref}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrapf(err, "delete asset %s", ref)
	}
	if code != http.StatusOK {
		return errors.Errorf("delete asset %s: media host returned %d: %s", ref, code, resp.Error)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return errors.Errorf("delete asset %s: unexpected result %q", ref, resp.Result)
	}
	return nil
}
