package assets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/catalogd/config"
)

func newMediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad key"})
			return
		}
		switch r.URL.Path {
		case "/upload":
			file, header, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			data, _ := io.ReadAll(file)
			if len(data) == 0 {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "empty file"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"url":       "https://cdn.example.com/" + r.FormValue("public_id") + "/" + header.Filename,
				"public_id": r.FormValue("public_id"),
			})
		case "/destroy":
			result := "ok"
			if r.FormValue("public_id") == "catalog/missing" {
				result = "not found"
			}
			if r.FormValue("public_id") == "catalog/locked" {
				result = "error"
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"result": result})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPHostUploadAndDelete(t *testing.T) {
	srv := newMediaServer(t)
	host := NewHTTPHost(config.AssetsConfig{BaseURL: srv.URL + "/", APIKey: "key-1", Folder: "catalog"})

	res, err := host.Upload(context.Background(), "mint.png", []byte("png"))
	require.NoError(t, err)
	assert.Contains(t, res.Filename, "catalog/")
	assert.Equal(t, "https://cdn.example.com/"+res.Filename+"/mint.png", res.Path)

	assert.NoError(t, host.Delete(context.Background(), res.Filename))
	assert.NoError(t, host.Delete(context.Background(), "catalog/missing"))
	assert.Error(t, host.Delete(context.Background(), "catalog/locked"))
}

func TestHTTPHostRejectedKey(t *testing.T) {
	srv := newMediaServer(t)
	host := NewHTTPHost(config.AssetsConfig{BaseURL: srv.URL, APIKey: "wrong", Folder: "catalog"})
	_, err := host.Upload(context.Background(), "mint.png", []byte("png"))
	assert.Error(t, err)
}

func TestHTTPHostNotConfigured(t *testing.T) {
	host := NewHTTPHost(config.AssetsConfig{})
	_, err := host.Upload(context.Background(), "a.png", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, host.Delete(context.Background(), "x"), ErrNotConfigured)
}

type recordingHost struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
}

func (h *recordingHost) Upload(context.Context, string, []byte) (UploadResult, error) {
	return UploadResult{}, nil
}

func (h *recordingHost) Delete(_ context.Context, ref string) error {
	if h.fail[ref] {
		return errors.New("media host unavailable")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, ref)
	return nil
}

func TestCleanerDiscard(t *testing.T) {
	host := &recordingHost{fail: map[string]bool{"bad": true}}
	bus := EventBus.New()

	var mu sync.Mutex
	var failed []string
	require.NoError(t, bus.Subscribe(TopicCleanupFailed, func(ref string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, ref)
	}))

	cleaner, err := NewCleaner(host, 2, bus)
	require.NoError(t, err)
	defer cleaner.Release()

	cleaner.Discard("a", "", "bad", "b")
	cleaner.Wait()

	assert.ElementsMatch(t, []string{"a", "b"}, host.deleted)
	mu.Lock()
	assert.Equal(t, []string{"bad"}, failed)
	mu.Unlock()
}
