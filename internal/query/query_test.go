package query

import (
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/catalogd/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var itemQuery = Resource{
	DefaultLimit:      10,
	SearchColumns:     []string{"name", "notes"},
	JSONSearchColumns: []string{"tags"},
	SortColumns:       map[string]string{"name": "name", "createdAt": "created_at"},
	BoolFilters:       map[string]string{"inStock": "in_stock", "featured": "featured"},
	EqualFilters:      map[string]string{"kind": "kind"},
	IDFilters:         map[string]string{"owner": "owner_id"},
}

type item struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Notes     string
	Kind      string
	Tags      datatypes.JSONSlice[string]
	OwnerID   int64
	InStock   bool
	Featured  bool
	CreatedAt time.Time
}

func TestParseOptionalBool(t *testing.T) {
	b, err := ParseOptionalBool("")
	require.NoError(t, err)
	assert.False(t, b.Set)

	b, err = ParseOptionalBool("true")
	require.NoError(t, err)
	assert.Equal(t, OptionalBool{Set: true, Value: true}, b)

	b, err = ParseOptionalBool("false")
	require.NoError(t, err)
	assert.Equal(t, OptionalBool{Set: true, Value: false}, b)

	for _, bad := range []string{"1", "yes", "TRUE", "no"} {
		_, err := ParseOptionalBool(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := itemQuery.Parse(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, "created_at", p.SortColumn)
	assert.True(t, p.SortDesc)
	assert.Empty(t, p.Bools)
	assert.Empty(t, p.Equals)
	assert.Empty(t, p.Terms)
}

func TestParseValues(t *testing.T) {
	p, err := itemQuery.Parse(url.Values{
		"page":      {"3"},
		"limit":     {"500"},
		"search":    {"Mint  Tea"},
		"inStock":   {"false"},
		"kind":      {"loose"},
		"owner":     {"77"},
		"sortBy":    {"name"},
		"sortOrder": {"ASC"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, []string{"mint", "tea"}, p.Terms)
	assert.Equal(t, map[string]bool{"in_stock": false}, p.Bools)
	assert.Equal(t, map[string]interface{}{"kind": "loose", "owner_id": int64(77)}, p.Equals)
	assert.Equal(t, "name", p.SortColumn)
	assert.False(t, p.SortDesc)
	assert.Equal(t, 200, p.Offset())
}

func TestParseNumbersAreDecimal(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"08", 8},
		{"010", 10},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		p, err := itemQuery.Parse(url.Values{"page": {tt.raw}, "limit": {tt.raw}})
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, p.Page, tt.raw)
		assert.Equal(t, tt.want, p.Limit, tt.raw)
	}
}

func TestParsePageOutOfRange(t *testing.T) {
	huge := strconv.Itoa(math.MaxInt/100 + 2)
	_, err := itemQuery.Parse(url.Values{"page": {huge}, "limit": {"100"}})
	var errs domain.FieldErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "page", errs[0].Field)

	p, err := itemQuery.Parse(url.Values{"page": {strconv.Itoa(math.MaxInt/100 + 1)}, "limit": {"100"}})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Offset(), 0)
}

func TestParseUnknownSortFallsBack(t *testing.T) {
	p, err := itemQuery.Parse(url.Values{"sortBy": {"password"}, "sortOrder": {"asc"}})
	require.NoError(t, err)
	assert.Equal(t, "created_at", p.SortColumn)
	assert.True(t, p.SortDesc)
}

func TestParseErrors(t *testing.T) {
	_, err := itemQuery.Parse(url.Values{
		"page":     {"0"},
		"limit":    {"ten"},
		"featured": {"maybe"},
		"owner":    {"abc"},
	})
	require.Error(t, err)
	var errs domain.FieldErrors
	require.ErrorAs(t, err, &errs)
	got := make([]string, 0, len(errs))
	for _, e := range errs {
		got = append(got, e.Field)
	}
	assert.ElementsMatch(t, []string{"page", "limit", "featured", "owner"}, got)

	for _, raw := range []string{"0x10", "1e2", "-3", "2.5"} {
		_, err := itemQuery.Parse(url.Values{"page": {raw}, "limit": {raw}})
		require.ErrorAs(t, err, &errs, raw)
		assert.Len(t, errs, 2, raw)
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Current: 1, Pages: 3, Total: 25, Limit: 10}, NewPagination(1, 10, 25))
	assert.Equal(t, Pagination{Current: 2, Pages: 2, Total: 20, Limit: 10}, NewPagination(2, 10, 20))
	assert.Equal(t, Pagination{Current: 1, Pages: 0, Total: 0, Limit: 10}, NewPagination(1, 10, 0))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&item{}))
	return db
}

func list(t *testing.T, db *gorm.DB, values url.Values) ([]item, Pagination) {
	t.Helper()
	p, err := itemQuery.Parse(values)
	require.NoError(t, err)
	base := p.Filter(db.Model(&item{})).Session(&gorm.Session{})
	var total int64
	require.NoError(t, base.Count(&total).Error)
	var rows []item
	require.NoError(t, p.Paginate(base).Find(&rows).Error)
	return rows, p.Pagination(total)
}

func TestFilterAndPaginate(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		require.NoError(t, db.Create(&item{
			ID:        int64(i),
			Name:      "item",
			InStock:   i%2 == 0,
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	rows, page := list(t, db, url.Values{"limit": {"10"}})
	assert.Equal(t, Pagination{Current: 1, Pages: 3, Total: 25, Limit: 10}, page)
	require.Len(t, rows, 10)
	assert.Equal(t, int64(25), rows[0].ID, "newest first")

	rows, page = list(t, db, url.Values{"limit": {"10"}, "page": {"3"}})
	assert.Len(t, rows, 5)
	assert.Equal(t, 3, page.Current)

	rows, page = list(t, db, url.Values{"limit": {"10"}, "page": {"4"}})
	assert.Empty(t, rows)
	assert.Equal(t, int64(25), page.Total)

	rows, page = list(t, db, url.Values{"inStock": {"true"}, "limit": {"100"}})
	assert.Equal(t, int64(12), page.Total)
	for _, r := range rows {
		assert.True(t, r.InStock)
	}

	_, page = list(t, db, url.Values{"inStock": {"false"}})
	assert.Equal(t, int64(13), page.Total)
}

func TestSearchMatchesAnyTermInAnyColumn(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&[]item{
		{ID: 1, Name: "Peppermint", Notes: "cooling", Kind: "loose"},
		{ID: 2, Name: "Chamomile", Notes: "calming TEA blend", Kind: "bag"},
		{ID: 3, Name: "Rooibos", Notes: "red bush", Kind: "loose"},
	}).Error)

	rows, _ := list(t, db, url.Values{"search": {"MINT tea"}, "sortBy": {"name"}, "sortOrder": {"asc"}})
	require.Len(t, rows, 2)
	assert.Equal(t, "Chamomile", rows[0].Name)
	assert.Equal(t, "Peppermint", rows[1].Name)

	rows, _ = list(t, db, url.Values{"search": {"mint tea"}, "kind": {"loose"}})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)

	rows, _ = list(t, db, url.Values{"search": {"licorice"}})
	assert.Empty(t, rows)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&[]item{
		{ID: 1, Name: "Peppermint", Notes: "cooling"},
		{ID: 2, Name: "Chamomile", Notes: "100% organic"},
		{ID: 3, Name: "Rooibos", Notes: "red_bush"},
		{ID: 4, Name: `Back\slash`, Notes: "escaped"},
	}).Error)

	tests := []struct {
		search string
		want   []int64
	}{
		{"%", []int64{2}},
		{"_", []int64{3}},
		{"0%", []int64{2}},
		{`\`, []int64{4}},
		{"d_b", []int64{3}},
		{"p_p", nil},
	}
	for _, tt := range tests {
		rows, page := list(t, db, url.Values{"search": {tt.search}})
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, int64(len(tt.want)), page.Total, tt.search)
		assert.ElementsMatch(t, tt.want, ids, tt.search)
	}
}

func TestSearchMatchesJSONArrayElements(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&[]item{
		{ID: 1, Name: "Sencha", Tags: datatypes.JSONSlice[string]{"green", "Japanese"}},
		{ID: 2, Name: "Assam", Tags: datatypes.JSONSlice[string]{"black"}},
		{ID: 3, Name: "Plain"},
	}).Error)

	rows, _ := list(t, db, url.Values{"search": {"japan"}})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)

	for _, punct := range []string{`"`, ",", "[", "]"} {
		_, page := list(t, db, url.Values{"search": {punct}})
		assert.Zero(t, page.Total, punct)
	}
}
