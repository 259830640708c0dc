package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/stackit/backend/internal/config"
	"github.com/emilythestrangee/stackit/backend/internal/logging"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB

	// Store returns the document store adapter over this connection.
	Store() *store.Store
}

type service struct {
	db     *gorm.DB
	name   string
	logger *slog.Logger
}

// New opens the database selected by cfg.DBDriver.
func New(cfg config.Config, log *slog.Logger) (Service, error) {
	if log == nil {
		log = slog.Default()
	}

	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logging.NewGormLogger(log, level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		return openSQLite(cfg.SQLitePath, gcfg, log)
	case config.DriverPostgres:
		return openPostgres(cfg, gcfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// NewInMemory opens a private in-memory sqlite database and migrates it.
// name must be unique per isolated database.
func NewInMemory(name string) (Service, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	svc, err := openSQLite(dsn, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}, slog.Default())
	if err != nil {
		return nil, err
	}
	if err := svc.Store().Migrate(context.Background()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func openPostgres(cfg config.Config, gcfg *gorm.Config, log *slog.Logger) (*service, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Info("database connected", "driver", config.DriverPostgres, "host", cfg.DBHost, "name", cfg.DBName)
	return &service{db: db, name: cfg.DBName, logger: log}, nil
}

func openSQLite(dsn string, gcfg *gorm.Config, log *slog.Logger) (*service, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	// sqlite allows a single writer; one connection keeps transactions from
	// tripping over "database is locked".
	sqlDB.SetMaxOpenConns(1)

	log.Info("database connected", "driver", config.DriverSQLite, "path", dsn)
	return &service{db: db, name: dsn, logger: log}, nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

func (s *service) Store() *store.Store {
	return store.New(s.db)
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Get underlying SQL DB
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	// Ping the database
	err = sqlDB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	// Database is up
	stats["status"] = "up"
	stats["message"] = "It's healthy"

	// Get database stats
	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.logger.Info("disconnected from database", "name", s.name)
	return sqlDB.Close()
}
