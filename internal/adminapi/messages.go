package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/verdantlabs/catalogd/internal/app"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/query"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var messageResource = query.Resource{
	DefaultLimit:  20,
	SearchColumns: []string{"name", "email", "subject", "message"},
	SortColumns: map[string]string{
		"name":      "name",
		"priority":  "priority",
		"category":  "category",
		"createdAt": "created_at",
	},
	BoolFilters: map[string]string{
		"isRead":  "is_read",
		"replied": "replied",
	},
	EqualFilters: map[string]string{
		"category": "category",
		"priority": "priority",
	},
}

// messageCreatePayload is the public contact form.
type messageCreatePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

type messageUpdatePayload struct {
	IsRead   *bool   `json:"isRead"`
	Replied  *bool   `json:"replied"`
	Priority *string `json:"priority"`
	Category *string `json:"category"`
}

type notePayload struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// registerMessageRoutes registers contact-form intake and message management routes
func registerMessageRoutes(srv *webserver.AdminServer) {
	srv.ApiPOST("/messages", createMessage, srv.MessageRateLimit())
	srv.ApiGET("/messages", listMessages, srv.AdminAuth())
	srv.ApiGET("/messages/export", exportMessages, srv.AdminAuth())
	srv.ApiGET("/messages/:id", getMessage, srv.AdminAuth())
	srv.ApiPUT("/messages/:id", updateMessage, srv.AdminAuth())
	srv.ApiPOST("/messages/:id/notes", addMessageNote, srv.AdminAuth())
	srv.ApiDELETE("/messages/:id", deleteMessage, srv.AdminAuth())
}

func createMessage(c echo.Context) error {
	var payload messageCreatePayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	m := domain.Message{
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:     strings.TrimSpace(payload.Phone),
		Subject:   strings.TrimSpace(payload.Subject),
		Body:      strings.TrimSpace(payload.Message),
		Category:  strings.ToLower(strings.TrimSpace(payload.Category)),
		Notes:     []domain.MessageNote{},
		IPAddress: c.RealIP(),
	}
	if err := domain.ValidateMessage(&m).Err(); err != nil {
		return handleValidationError(c, err)
	}
	m.Priority = domain.ClassifyPriority(m.Subject, m.Body, m.Category)

	m.ID = common.UUIDint64()
	if err := GetDB(c).Create(&m).Error; err != nil {
		return handleStoreError(c, err, "Message")
	}
	GetAppContext(c).Bus().Publish(app.TopicMessageReceived, m.ID, m.Priority)
	return c.JSON(http.StatusCreated, webserver.Response{
		Success: true,
		Message: "Thank you for your message. We will get back to you soon.",
		Data:    map[string]interface{}{"id": fmt.Sprint(m.ID), "priority": m.Priority},
	})
}

func listMessages(c echo.Context) error {
	params, err := parseList(c, messageResource)
	if err != nil {
		return handleValidationError(c, err)
	}

	base := params.Filter(GetDB(c).Model(&domain.Message{})).Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return serverError(c, err, "failed to count messages")
	}

	messages := make([]domain.Message, 0, params.Limit)
	if err := params.Paginate(base).Find(&messages).Error; err != nil {
		return serverError(c, err, "failed to query messages")
	}
	return paged(c, messages, params.Pagination(total))
}

// getMessage returns a message and marks it read.
func getMessage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "message")
	}
	var m domain.Message
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; err != nil {
		return handleStoreError(c, err, "Message")
	}
	if !m.IsRead {
		if err := GetDB(c).Model(&m).Update("is_read", true).Error; err != nil {
			return serverError(c, err, "failed to mark message read")
		}
		m.IsRead = true
	}
	return ok(c, m)
}

func updateMessage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "message")
	}
	var payload messageUpdatePayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}

	var m domain.Message
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; err != nil {
		return handleStoreError(c, err, "Message")
	}

	if payload.IsRead != nil {
		m.IsRead = *payload.IsRead
	}
	if payload.Replied != nil {
		switch {
		case *payload.Replied && !m.Replied:
			now := time.Now()
			m.RepliedAt = &now
		case !*payload.Replied:
			m.RepliedAt = nil
		}
		m.Replied = *payload.Replied
	}
	if payload.Priority != nil {
		m.Priority = strings.TrimSpace(*payload.Priority)
	}
	if payload.Category != nil {
		m.Category = strings.ToLower(strings.TrimSpace(*payload.Category))
	}
	errs := domain.ValidateMessage(&m)
	if m.Priority == "" {
		errs.Add("priority", "priority is required")
	}
	if err := errs.Err(); err != nil {
		return handleValidationError(c, err)
	}

	if err := GetDB(c).Save(&m).Error; err != nil {
		return handleStoreError(c, err, "Message")
	}
	return ok(c, m)
}

func addMessageNote(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "message")
	}
	var payload notePayload
	if err := bindPayload(c, &payload); err != nil {
		return err
	}
	payload.Text = strings.TrimSpace(payload.Text)
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var m domain.Message
	if err := GetDB(c).Where("id = ?", id).First(&m).Error; err != nil {
		return handleStoreError(c, err, "Message")
	}
	author := ""
	if p, found := webserver.CurrentPrincipal(c); found {
		author = p.Username
	}
	note := domain.MessageNote{Text: payload.Text, Author: author, CreatedAt: time.Now()}
	m.Notes = append(m.Notes, note)
	if err := GetDB(c).Model(&m).Update("notes", m.Notes).Error; err != nil {
		return serverError(c, err, "failed to add message note")
	}
	return created(c, m)
}

func deleteMessage(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return invalidID(c, "message")
	}
	res := GetDB(c).Delete(&domain.Message{}, id)
	if res.Error != nil {
		return serverError(c, res.Error, "failed to delete message")
	}
	if res.RowsAffected == 0 {
		return handleStoreError(c, gorm.ErrRecordNotFound, "Message")
	}
	zap.L().Info("message deleted", zap.Int64("id", id))
	return okMessage(c, "Message deleted successfully")
}
