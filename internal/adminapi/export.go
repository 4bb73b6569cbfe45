package adminapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/verdantlabs/catalogd/internal/domain"
)

const maxExportRows = 10000

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type messageExportRow struct {
	ID        string `csv:"id"`
	CreatedAt string `csv:"created_at"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Phone     string `csv:"phone"`
	Subject   string `csv:"subject"`
	Category  string `csv:"category"`
	Priority  string `csv:"priority"`
	IsRead    bool   `csv:"is_read"`
	Replied   bool   `csv:"replied"`
	Message   string `csv:"message"`
}

var messageExportHeader = []string{
	"id", "created_at", "name", "email", "phone", "subject",
	"category", "priority", "is_read", "replied", "message",
}

func (r messageExportRow) values() []interface{} {
	return []interface{}{
		r.ID, r.CreatedAt, r.Name, r.Email, r.Phone, r.Subject,
		r.Category, r.Priority, r.IsRead, r.Replied, r.Message,
	}
}

func toExportRows(messages []domain.Message) []*messageExportRow {
	rows := make([]*messageExportRow, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, &messageExportRow{
			ID:        cast.ToString(m.ID),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
			Name:      m.Name,
			Email:     m.Email,
			Phone:     m.Phone,
			Subject:   m.Subject,
			Category:  m.Category,
			Priority:  m.Priority,
			IsRead:    m.IsRead,
			Replied:   m.Replied,
			Message:   m.Body,
		})
	}
	return rows
}

// exportMessages writes the filtered message list as CSV or XLSX. Paging
// parameters are ignored; at most maxExportRows messages are exported.
func exportMessages(c echo.Context) error {
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			domain.FieldErrors{{Field: "format", Message: "format must be one of: csv, xlsx"}})
	}

	params, err := parseList(c, messageResource)
	if err != nil {
		return handleValidationError(c, err)
	}
	params.Page, params.Limit = 1, maxExportRows

	var messages []domain.Message
	if err := params.Paginate(params.Filter(GetDB(c).Model(&domain.Message{}))).Find(&messages).Error; err != nil {
		return serverError(c, err, "failed to query messages for export")
	}
	rows := toExportRows(messages)

	filename := fmt.Sprintf("messages-%s.%s", time.Now().Format("20060102-150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	if format == "xlsx" {
		c.Response().Header().Set(echo.HeaderContentType, xlsxMIME)
		c.Response().WriteHeader(http.StatusOK)
		return writeMessagesXLSX(c.Response(), rows)
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return errors.Wrap(gocsv.Marshal(rows, c.Response()), "write csv export")
}

func writeMessagesXLSX(w io.Writer, rows []*messageExportRow) error {
	const sheet = "Sheet1"
	f := excelize.NewFile()
	for i, h := range messageExportHeader {
		f.SetCellValue(sheet, excelize.ToAlphaString(i)+"1", h)
	}
	for r, row := range rows {
		for i, v := range row.values() {
			f.SetCellValue(sheet, excelize.ToAlphaString(i)+strconv.Itoa(r+2), v)
		}
	}
	return errors.Wrap(f.Write(w), "write xlsx export")
}
