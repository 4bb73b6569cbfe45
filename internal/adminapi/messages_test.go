package adminapi

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/pkg/metrics"
)

func postMessage(t *testing.T, env *testEnv, subject, message, category string) (int, string) {
	t.Helper()
	body := map[string]interface{}{
		"name":     "Visitor",
		"email":    "visitor@example.com",
		"subject":  subject,
		"message":  message,
		"category": category,
	}
	rec, resp := env.do(http.MethodPost, "/api/messages", body, "")
	if rec.Code != http.StatusCreated {
		return rec.Code, ""
	}
	var data struct {
		ID       string `json:"id"`
		Priority string `json:"priority"`
	}
	resp.decode(t, &data)
	return rec.Code, data.Priority
}

func TestCreateMessageClassifiesPriority(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		subject, message, category string
		want                       string
	}{
		{"Urgent request", "need help", "general", domain.PriorityCEO},
		{"order", "I love your herbs", "general", domain.PriorityHerbs},
		{"issue", "bad service", "complaint", domain.PriorityHigh},
		{"hi", "just saying hello", "general", domain.PriorityMedium},
		{"urgent", "please pass to the sales manager", "sales", domain.PriorityCEO},
		{"pricing", "wholesale list", "sales", domain.PrioritySalesManager},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			code, priority := postMessage(t, env, tt.subject, tt.message, tt.category)
			require.Equal(t, http.StatusCreated, code)
			assert.Equal(t, tt.want, priority)
		})
	}

	var stored []domain.Message
	require.NoError(t, env.db.Find(&stored).Error)
	assert.Len(t, stored, len(tests))
	assert.Equal(t, float64(len(tests)), env.app.Metrics().Sum(metrics.MessageReceived, time.Now().Add(-time.Minute)))
}

func TestCreateMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"name": "V", "email": "bad", "subject": "", "message": "hi", "category": "gossip"}
	rec, resp := env.do(http.MethodPost, "/api/messages", body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	for _, field := range []string{"email", "subject", "category"} {
		assert.True(t, resp.hasFieldError(field), field)
	}

	// category defaults to general
	code, priority := postMessage(t, env, "hello", "there", "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, domain.PriorityMedium, priority)
}

func TestMessagesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(http.MethodGet, "/api/messages", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = env.do(http.MethodGet, "/api/messages", nil, env.editorToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = env.do(http.MethodGet, "/api/messages", nil, env.adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMessageWorkflow(t *testing.T) {
	env := newTestEnv(t)
	m := &domain.Message{ID: 77, Name: "V", Email: "v@example.com", Subject: "herbs", Body: "question",
		Category: "general", Priority: domain.PriorityHerbs, Notes: []domain.MessageNote{}}
	env.seed(m)

	_, resp := env.do(http.MethodGet, "/api/messages?isRead=false", nil, env.adminToken)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	rec, resp := env.do(http.MethodGet, idPath("/api/messages", m.ID), nil, env.adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Message
	resp.decode(t, &got)
	assert.True(t, got.IsRead)

	_, resp = env.do(http.MethodGet, "/api/messages?isRead=false", nil, env.adminToken)
	assert.Equal(t, int64(0), resp.Pagination.Total)

	rec, resp = env.do(http.MethodPut, idPath("/api/messages", m.ID), map[string]interface{}{"replied": true, "priority": "low"}, env.adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp.decode(t, &got)
	assert.True(t, got.Replied)
	assert.NotNil(t, got.RepliedAt)
	assert.Equal(t, domain.PriorityLow, got.Priority)

	rec, resp = env.do(http.MethodPut, idPath("/api/messages", m.ID), map[string]interface{}{"priority": "whenever"}, env.adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, resp.hasFieldError("priority"))

	rec, resp = env.do(http.MethodPost, idPath("/api/messages", m.ID)+"/notes", map[string]interface{}{"text": "called back"}, env.adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp.decode(t, &got)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "called back", got.Notes[0].Text)
	assert.Equal(t, "admin", got.Notes[0].Author)

	rec, resp = env.do(http.MethodPost, idPath("/api/messages", m.ID)+"/notes", map[string]interface{}{"text": "  "}, env.adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, resp.hasFieldError("text"))

	_, resp = env.do(http.MethodGet, "/api/messages?priority=low&replied=true", nil, env.adminToken)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	rec, _ = env.do(http.MethodDelete, idPath("/api/messages", m.ID), nil, env.adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(http.MethodDelete, idPath("/api/messages", m.ID), nil, env.adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportMessagesCSV(t *testing.T) {
	env := newTestEnv(t)
	env.seed(
		&domain.Message{ID: 1, Name: "A", Email: "a@example.com", Subject: "one", Body: "first, with comma", Category: "general", Priority: "medium", Notes: []domain.MessageNote{}},
		&domain.Message{ID: 2, Name: "B", Email: "b@example.com", Subject: "two", Body: "second", Category: "complaint", Priority: "high", Notes: []domain.MessageNote{}},
	)

	rec, _ := env.do(http.MethodGet, "/api/messages/export?format=csv&category=complaint", nil, env.adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, messageExportHeader, records[0])
	assert.Equal(t, "2", records[1][0])
	assert.Equal(t, "high", records[1][7])

	rec, _ = env.do(http.MethodGet, "/api/messages/export?format=xlsx&category=complaint", nil, env.adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")

	book, err := excelize.OpenReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Equal(t, "id", book.GetCellValue("Sheet1", "A1"))
	assert.Equal(t, "message", book.GetCellValue("Sheet1", "K1"))
	assert.Equal(t, "high", book.GetCellValue("Sheet1", "H2"))
	assert.Empty(t, book.GetCellValue("Sheet1", "A3"))

	rec, _ = env.do(http.MethodGet, "/api/messages/export?format=pdf", nil, env.adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
