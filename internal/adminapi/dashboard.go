package adminapi

import (
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cast"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"github.com/verdantlabs/catalogd/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const activityFeedSize = 8

type ProductCounts struct {
	Total    int64 `json:"total"`
	InStock  int64 `json:"inStock"`
	Featured int64 `json:"featured"`
}

type MessageCounts struct {
	Total     int64 `json:"total"`
	Unread    int64 `json:"unread"`
	Unreplied int64 `json:"unreplied"`
}

type DashboardCounts struct {
	Products     ProductCounts `json:"products"`
	Categories   int64         `json:"categories"`
	Team         int64         `json:"team"`
	Certificates int64         `json:"certificates"`
	Contacts     int64         `json:"contacts"`
	Messages     MessageCounts `json:"messages"`
}

type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ActivityItem is one entry of the recent activity feed.
type ActivityItem struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type DashboardOverview struct {
	Counts                  DashboardCounts `json:"counts"`
	Prices                  PriceStats      `json:"prices"`
	RecentActivity          []ActivityItem  `json:"recentActivity"`
	AssetCleanupFailures24h int64           `json:"assetCleanupFailures24h"`
}

func registerDashboardRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/dashboard/overview", getDashboardOverview, srv.Auth())
}

func getDashboardOverview(c echo.Context) error {
	db := GetDB(c)
	var overview DashboardOverview

	counts := &overview.Counts
	countQueries := []struct {
		model  interface{}
		column string
		value  bool
		dst    *int64
	}{
		{&domain.Product{}, "", false, &counts.Products.Total},
		{&domain.Product{}, "in_stock", true, &counts.Products.InStock},
		{&domain.Product{}, "featured", true, &counts.Products.Featured},
		{&domain.Category{}, "", false, &counts.Categories},
		{&domain.TeamMember{}, "", false, &counts.Team},
		{&domain.Certificate{}, "", false, &counts.Certificates},
		{&domain.Contact{}, "", false, &counts.Contacts},
		{&domain.Message{}, "", false, &counts.Messages.Total},
		{&domain.Message{}, "is_read", false, &counts.Messages.Unread},
		{&domain.Message{}, "replied", false, &counts.Messages.Unreplied},
	}

	g, ctx := errgroup.WithContext(c.Request().Context())
	for _, q := range countQueries {
		q := q
		g.Go(func() error {
			tx := db.WithContext(ctx).Model(q.model)
			if q.column != "" {
				tx = tx.Where(q.column+" = ?", q.value)
			}
			return tx.Count(q.dst).Error
		})
	}
	g.Go(func() error {
		var prices []float64
		if err := db.WithContext(ctx).Model(&domain.Product{}).Pluck("price", &prices).Error; err != nil {
			return err
		}
		overview.Prices = priceStats(prices)
		return nil
	})
	g.Go(func() error {
		items, err := recentActivity(db.WithContext(ctx))
		overview.RecentActivity = items
		return err
	})
	if err := g.Wait(); err != nil {
		return serverError(c, err, "failed to build dashboard overview")
	}

	failures := GetAppContext(c).Metrics().Sum(metrics.AssetCleanupFailed, time.Now().Add(-24*time.Hour))
	overview.AssetCleanupFailures24h = int64(failures)
	return ok(c, overview)
}

func priceStats(prices []float64) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}
	data := stats.Float64Data(prices)
	var ps PriceStats
	ps.Min, _ = data.Min()
	ps.Max, _ = data.Max()
	ps.Mean, _ = data.Mean()
	ps.Median, _ = data.Median()
	return ps
}

// recentActivity merges the newest entities of each kind into one feed.
func recentActivity(db *gorm.DB) ([]ActivityItem, error) {
	newest := func(limit int) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC").Limit(limit)
	}
	var (
		products []domain.Product
		messages []domain.Message
		team     []domain.TeamMember
		certs    []domain.Certificate
		cats     []domain.Category
	)
	for _, q := range []struct {
		dst   interface{}
		limit int
	}{
		{&products, 3}, {&messages, 3}, {&team, 2}, {&certs, 2}, {&cats, 2},
	} {
		if err := newest(q.limit).Find(q.dst).Error; err != nil {
			return nil, err
		}
	}

	items := make([]ActivityItem, 0, 12)
	for _, p := range products {
		items = append(items, ActivityItem{"product", cast.ToString(p.ID), p.Name, p.CreatedAt})
	}
	for _, m := range messages {
		items = append(items, ActivityItem{"message", cast.ToString(m.ID), m.Subject, m.CreatedAt})
	}
	for _, t := range team {
		items = append(items, ActivityItem{"team", cast.ToString(t.ID), t.Name, t.CreatedAt})
	}
	for _, ct := range certs {
		items = append(items, ActivityItem{"certificate", cast.ToString(ct.ID), ct.Name, ct.CreatedAt})
	}
	for _, cat := range cats {
		items = append(items, ActivityItem{"category", cast.ToString(cat.ID), cat.Name, cat.CreatedAt})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > activityFeedSize {
		items = items[:activityFeedSize]
	}
	return items, nil
}
