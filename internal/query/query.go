// Package query turns list-endpoint request parameters into a filter, a sort
// order and a page window over a gorm model.
package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/verdantlabs/catalogd/internal/domain"
	"gorm.io/gorm"
)

const (
	MaxLimit      = 100
	DefaultSortBy = "created_at"
)

// OptionalBool is a tri-state boolean filter: absent, true or false.
type OptionalBool struct {
	Set   bool
	Value bool
}

// ParseOptionalBool accepts "", "true" and "false". Anything else is an error.
func ParseOptionalBool(raw string) (OptionalBool, error) {
	switch strings.TrimSpace(raw) {
	case "":
		return OptionalBool{}, nil
	case "true":
		return OptionalBool{Set: true, Value: true}, nil
	case "false":
		return OptionalBool{Set: true, Value: false}, nil
	}
	return OptionalBool{}, strconv.ErrSyntax
}

// Resource describes how one entity can be listed. Map keys are request
// parameter names, values are column names. JSONSearchColumns hold JSON
// string arrays and are matched element by element.
type Resource struct {
	DefaultLimit      int
	SearchColumns     []string
	JSONSearchColumns []string
	SortColumns       map[string]string
	BoolFilters       map[string]string
	EqualFilters      map[string]string
	IDFilters         map[string]string
}

// Params is a parsed list request.
type Params struct {
	Page       int
	Limit      int
	Terms      []string
	SearchIn   []string
	SearchJSON []string
	Bools      map[string]bool
	Equals     map[string]interface{}
	SortColumn string
	SortDesc   bool
}

// Parse validates the request parameters against the resource description.
// The returned error, when not nil, is a domain.FieldErrors.
func (r Resource) Parse(values url.Values) (Params, error) {
	var errs domain.FieldErrors
	p := Params{
		Page:       1,
		Limit:      r.DefaultLimit,
		Bools:      make(map[string]bool),
		Equals:     make(map[string]interface{}),
		SortColumn: DefaultSortBy,
		SortDesc:   true,
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("page", "page must be a positive integer")
		} else {
			p.Page = n
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.Add("limit", "limit must be a positive integer")
		} else {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	// the row offset must fit in an int
	if p.Page-1 > math.MaxInt/p.Limit {
		errs.Add("page", "page is out of range")
		p.Page = 1
	}

	p.Terms = strings.Fields(strings.ToLower(values.Get("search")))
	p.SearchIn = r.SearchColumns
	p.SearchJSON = r.JSONSearchColumns

	for _, param := range sortedKeys(r.BoolFilters) {
		b, err := ParseOptionalBool(values.Get(param))
		if err != nil {
			errs.Add(param, "%s must be true or false", param)
			continue
		}
		if b.Set {
			p.Bools[r.BoolFilters[param]] = b.Value
		}
	}
	for _, param := range sortedKeys(r.EqualFilters) {
		if v := strings.TrimSpace(values.Get(param)); v != "" {
			p.Equals[r.EqualFilters[param]] = v
		}
	}
	for _, param := range sortedKeys(r.IDFilters) {
		v := strings.TrimSpace(values.Get(param))
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			errs.Add(param, "invalid %s id", param)
			continue
		}
		p.Equals[r.IDFilters[param]] = id
	}

	if col, ok := r.SortColumns[strings.TrimSpace(values.Get("sortBy"))]; ok {
		p.SortColumn = col
		p.SortDesc = !strings.EqualFold(strings.TrimSpace(values.Get("sortOrder")), "asc")
	}

	if len(errs) > 0 {
		return p, errs
	}
	return p, nil
}

// Filter applies the search terms and filters to db.
func (p Params) Filter(db *gorm.DB) *gorm.DB {
	for _, col := range sortedKeys(p.Bools) {
		db = db.Where(col+" = ?", p.Bools[col])
	}
	for _, col := range sortedKeys(p.Equals) {
		db = db.Where(col+" = ?", p.Equals[col])
	}
	if len(p.Terms) > 0 && len(p.SearchIn)+len(p.SearchJSON) > 0 {
		clause, args := searchClause(db.Dialector.Name(), p.SearchIn, p.SearchJSON, p.Terms)
		db = db.Where(clause, args...)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches term literally anywhere in a value.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// searchClause matches a row when any term occurs in any column, or in any
// element of a JSON array column. gorm wraps the OR chain in parentheses
// when other conditions are present.
func searchClause(dialect string, columns, jsonColumns, terms []string) (string, []interface{}) {
	postgres := strings.EqualFold(dialect, "postgres")
	n := (len(columns) + len(jsonColumns)) * len(terms)
	conds := make([]string, 0, n)
	args := make([]interface{}, 0, n)
	for _, term := range terms {
		pattern := likePattern(term)
		for _, col := range columns {
			if postgres {
				conds = append(conds, "CAST("+col+" AS TEXT) ILIKE ? ESCAPE '\\'")
			} else {
				conds = append(conds, "LOWER(CAST("+col+" AS TEXT)) LIKE ? ESCAPE '\\'")
			}
			args = append(args, pattern)
		}
		for _, col := range jsonColumns {
			if postgres {
				doc := "CAST(" + col + " AS JSONB)"
				conds = append(conds, "EXISTS (SELECT 1 FROM jsonb_array_elements_text(CASE WHEN jsonb_typeof("+doc+
					") = 'array' THEN "+doc+" ELSE '[]'::jsonb END) AS elem(v) WHERE elem.v ILIKE ? ESCAPE '\\')")
			} else {
				conds = append(conds, "EXISTS (SELECT 1 FROM json_each("+col+
					") AS elem WHERE LOWER(elem.value) LIKE ? ESCAPE '\\')")
			}
			args = append(args, pattern)
		}
	}
	return strings.Join(conds, " OR "), args
}

// Paginate applies the sort order and page window to db.
func (p Params) Paginate(db *gorm.DB) *gorm.DB {
	order := "ASC"
	if p.SortDesc {
		order = "DESC"
	}
	db = db.Order(p.SortColumn + " " + order)
	if p.SortColumn != "id" {
		db = db.Order("id " + order)
	}
	return db.Offset(p.Offset()).Limit(p.Limit)
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the page summary returned with every list response.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

func (p Params) Pagination(total int64) Pagination {
	return NewPagination(p.Page, p.Limit, total)
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Current: page, Pages: pages, Total: total, Limit: limit}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
