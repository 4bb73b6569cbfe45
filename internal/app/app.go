package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/config"
	"github.com/verdantlabs/catalogd/internal/assets"
	"github.com/verdantlabs/catalogd/internal/domain"
	"github.com/verdantlabs/catalogd/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	assetHost assets.Host
	cleaner   *assets.Cleaner
	metrics   *metrics.Store
	bus       EventBus.Bus
}

// Ensure Application implements all interfaces
var (
	_ DBProvider      = (*Application)(nil)
	_ ConfigProvider  = (*Application)(nil)
	_ AssetProvider   = (*Application)(nil)
	_ MetricsProvider = (*Application)(nil)
	_ EventProvider   = (*Application)(nil)
	_ AppContext      = (*Application)(nil)
)

type Option func(*Application)

// WithAssetHost replaces the HTTP media host client (used in tests).
func WithAssetHost(host assets.Host) Option {
	return func(a *Application) {
		a.assetHost = host
	}
}

// WithMetrics supplies an already opened metrics store.
func WithMetrics(store *metrics.Store) Option {
	return func(a *Application) {
		a.metrics = store
	}
}

// NewApplication wires the application around an opened database handle.
func NewApplication(appConfig *config.AppConfig, db *gorm.DB, opts ...Option) *Application {
	a := &Application{appConfig: appConfig, gormDB: db, bus: EventBus.New()}
	for _, opt := range opts {
		opt(a)
	}
	if a.assetHost == nil {
		a.assetHost = assets.NewHTTPHost(appConfig.Assets)
	}
	return a
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Assets() assets.Host {
	return a.assetHost
}

func (a *Application) Cleaner() *assets.Cleaner {
	return a.cleaner
}

func (a *Application) Metrics() *metrics.Store {
	return a.metrics
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

// Init migrates the schema and starts the asset cleaner.
func (a *Application) Init() error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if a.metrics == nil {
		store, err := metrics.New(cfg.System.Workdir)
		if err != nil {
			zap.S().Warn("Failed to initialize metrics:", err)
		} else {
			a.metrics = store
		}
	}

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	a.checkAuthUsers()

	a.cleaner, err = assets.NewCleaner(a.assetHost, cfg.Assets.CleanupWorkers, a.bus)
	if err != nil {
		return err
	}
	return a.subscribeEvents()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// Release releases application resources
func (a *Application) Release() {
	if a.cleaner != nil {
		a.cleaner.Release()
	}
	_ = a.metrics.Close()
	if sqlDB, err := a.gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = zap.L().Sync()
}
