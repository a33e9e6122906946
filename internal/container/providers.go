package container

import (
	"database/sql"
	"fmt"

	"github.com/garyjia/courier-billing/internal/application/dispatcher"
	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/application/service"
	"github.com/garyjia/courier-billing/internal/infrastructure/persistence/repository"
	"github.com/garyjia/courier-billing/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/courier-billing/internal/infrastructure/ratecard"
	"github.com/garyjia/courier-billing/internal/infrastructure/worker"
	"github.com/garyjia/courier-billing/migrations"
	"github.com/garyjia/courier-billing/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups all repositories.
type RepositoryBundle struct {
	Config  port.ConfigRepository
	Invoice port.InvoiceRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Snapshots service.SnapshotProvider
	Rating    service.RatingService
	Invoice   service.InvoiceService
	Importer  *ratecard.Importer
}

// ProvideDatabase opens the database and applies pending migrations when
// cfg.AutoMigrate is set.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		applied, err := database.NewMigrator(db, logger).RunMigrations(migrations.FS)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("Migrations applied", zap.Int("count", applied))
	}

	return &DatabaseBundle{
		SqlDB:          db.DB,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Config:  repository.NewConfigRepository(sqlDB, logger),
		Invoice: repository.NewInvoiceRepository(sqlDB, logger),
	}, nil
}

// ProvideDispatcher creates the event dispatcher with the audit trail subscribed.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	adapter := &zapLoggerAdapter{logger: logger.Named("events")}
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(adapter))
	service.RegisterAuditTrail(d, adapter)
	return d, nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	RatingCfg  *RatingConfig
	Logger     *zap.Logger
}

// ProvideServices creates the application services. Line writes and invoice
// transitions share one set of header locks.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.RatingCfg == nil {
		return nil, fmt.Errorf("rating config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	locks := service.NewHeaderLocks()
	snapshots := service.NewSnapshotProvider(deps.Repos.Config, deps.RatingCfg.SnapshotCacheTTL, serviceLogger)
	lines := service.NewLineGenerator(deps.Repos.Invoice, deps.TxManager, locks, serviceLogger)

	var publisher port.EventPublisher
	if deps.Dispatcher != nil {
		publisher = deps.Dispatcher
	}

	return &ServiceBundle{
		Snapshots: snapshots,
		Rating: service.NewRatingService(
			snapshots,
			lines,
			deps.Repos.Invoice,
			publisher,
			serviceLogger,
			deps.RatingCfg.BulkConcurrency,
		),
		Invoice: service.NewInvoiceService(
			deps.Repos.Invoice,
			deps.TxManager,
			snapshots,
			locks,
			publisher,
			serviceLogger,
		),
		Importer: ratecard.NewImporter(deps.Repos.Config, deps.TxManager, deps.Logger.Named("ratecard")).
			WithInvalidator(snapshots),
	}, nil
}

// WorkerDeps holds dependencies required for creating workers.
type WorkerDeps struct {
	Repos      *RepositoryBundle
	Dispatcher dispatcher.Dispatcher
	WorkerCfg  *WorkerConfig
	Logger     *zap.Logger
}

// ProvideWorkers creates the worker manager and registers enabled workers.
func ProvideWorkers(deps *WorkerDeps) (*worker.Manager, error) {
	if deps == nil || deps.Repos == nil || deps.WorkerCfg == nil || deps.Logger == nil {
		return nil, fmt.Errorf("worker dependencies are incomplete")
	}

	manager := worker.NewManager(deps.Logger)
	if deps.WorkerCfg.ConfigAuditEnabled {
		var publisher port.EventPublisher
		if deps.Dispatcher != nil {
			publisher = deps.Dispatcher
		}
		manager.Register(worker.NewConfigAuditWorker(
			worker.ConfigAuditConfig{Interval: deps.WorkerCfg.ConfigAuditInterval},
			deps.Repos.Config,
			publisher,
			deps.Logger.Named("config-audit"),
		))
	}
	return manager, nil
}
