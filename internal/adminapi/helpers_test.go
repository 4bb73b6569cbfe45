package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/catalogd/config"
	"github.com/verdantlabs/catalogd/internal/app"
	"github.com/verdantlabs/catalogd/internal/assets"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"github.com/verdantlabs/catalogd/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "s3cret-pass"

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type fakeHost struct {
	mu       sync.Mutex
	seq      int
	uploaded []string
	deleted  []string
	failDel  bool
}

func (h *fakeHost) Upload(_ context.Context, filename string, _ []byte) (assets.UploadResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	ref := fmt.Sprintf("catalog/%d-%s", h.seq, filename)
	h.uploaded = append(h.uploaded, ref)
	return assets.UploadResult{Path: "https://media.test/" + ref, Filename: ref}, nil
}

func (h *fakeHost) Delete(_ context.Context, ref string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failDel {
		return errors.New("media host unavailable")
	}
	h.deleted = append(h.deleted, ref)
	return nil
}

func (h *fakeHost) deletedRefs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.deleted...)
}

type testEnv struct {
	t           *testing.T
	app         *app.Application
	srv         *webserver.AdminServer
	db          *gorm.DB
	host        *fakeHost
	adminToken  string
	editorToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.System.Workdir = ""
	cfg.Web.Secret = "test-secret"
	cfg.Web.Metrics = false
	cfg.Web.MessageRate = 0
	cfg.Auth.Users = []config.AuthUser{
		{Username: "admin", PasswordHash: string(hash), Role: webserver.RoleAdmin},
		{Username: "editor", PasswordHash: string(hash), Role: webserver.RoleEditor},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), app.GormConfig(false))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store, err := metrics.New("")
	require.NoError(t, err)

	host := &fakeHost{}
	application := app.NewApplication(cfg, db, app.WithAssetHost(host), app.WithMetrics(store))
	require.NoError(t, application.Init())
	t.Cleanup(application.Release)

	srv := webserver.NewAdminServer(application)
	Init(srv)

	adminToken, _, err := webserver.IssueToken(cfg.Web.Secret, time.Hour, "admin", webserver.RoleAdmin)
	require.NoError(t, err)
	editorToken, _, err := webserver.IssueToken(cfg.Web.Secret, time.Hour, "editor", webserver.RoleEditor)
	require.NoError(t, err)

	return &testEnv{
		t:           t,
		app:         application,
		srv:         srv,
		db:          db,
		host:        host,
		adminToken:  adminToken,
		editorToken: editorToken,
	}
}

type apiResponse struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Message    string              `json:"message"`
	Code       string              `json:"code"`
	Errors     []domain.FieldError `json:"errors"`
	Pagination *query.Pagination   `json:"pagination"`
}

func (r apiResponse) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst), string(r.Data))
}

func (r apiResponse) hasFieldError(field string) bool {
	for _, fe := range r.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (e *testEnv) send(req *http.Request, token string) (*httptest.ResponseRecorder, apiResponse) {
	e.t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)

	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func (e *testEnv) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, apiResponse) {
	e.t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return e.send(req, token)
}

// multipart builds a form request with text fields and an optional image.
func (e *testEnv) multipart(method, path string, fields map[string]string, image []byte, token string) (*httptest.ResponseRecorder, apiResponse) {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.png")
		require.NoError(e.t, err)
		_, err = part.Write(image)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return e.send(req, token)
}

// seed inserts rows directly, bypassing the handlers.
func (e *testEnv) seed(rows ...interface{}) {
	e.t.Helper()
	for _, row := range rows {
		require.NoError(e.t, e.db.Create(row).Error)
	}
}

func (e *testEnv) seedCategory(name string) *domain.Category {
	cat := &domain.Category{ID: common.UUIDint64(), Name: name, NameKey: common.FoldKey(name), IsActive: true}
	e.seed(cat)
	return cat
}

// seedProducts creates n products in cat with increasing creation times.
func (e *testEnv) seedProducts(cat *domain.Category, n int, inStock func(i int) bool) []*domain.Product {
	e.t.Helper()
	base := time.Now().Add(-time.Hour)
	products := make([]*domain.Product, 0, n)
	for i := 0; i < n; i++ {
		p := &domain.Product{
			ID:          common.UUIDint64(),
			Name:        fmt.Sprintf("Product %02d", i),
			Description: "catalog item",
			CategoryID:  cat.ID,
			Price:       float64(10 + i),
			InStock:     inStock(i),
			IsActive:    true,
			Tags:        []string{},
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		e.seed(p)
		products = append(products, p)
	}
	return products
}

func allInStock(int) bool { return true }

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
