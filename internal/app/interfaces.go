package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/verdantlabs/catalogd/config"
	"github.com/verdantlabs/catalogd/internal/assets"
	"github.com/verdantlabs/catalogd/pkg/metrics"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// AssetProvider provides the media host and the best-effort cleaner
type AssetProvider interface {
	Assets() assets.Host
	Cleaner() *assets.Cleaner
}

// MetricsProvider provides the in-process counters
type MetricsProvider interface {
	Metrics() *metrics.Store
}

// EventProvider provides the side-channel event bus
type EventProvider interface {
	Bus() EventBus.Bus
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	AssetProvider
	MetricsProvider
	EventProvider

	MigrateDB(track bool) error
	DropAll()
}
