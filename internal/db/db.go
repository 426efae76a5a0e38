package db

import (
	"context"
	"fmt"
	"time"

	"github.com/snnyvrz/library-api/internal/config"
	"github.com/snnyvrz/library-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultMaxAttempts     = 10
	defaultDelayBetweenTry = 2 * time.Second
)

// Dialector picks the GORM driver for the configured backend.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// GormConfig enables error translation so unique violations surface as
// gorm.ErrDuplicatedKey on every driver.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, GormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// ConnectWithRetry keeps trying Open until the database answers or the
// attempts run out.
func ConnectWithRetry(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return connectWithRetry(cfg, logger, defaultMaxAttempts, defaultDelayBetweenTry)
}

func connectWithRetry(cfg *config.Config, logger *zap.Logger, attempts int, delay time.Duration) (*gorm.DB, error) {
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var db *gorm.DB
		db, err = Open(cfg)
		if err == nil {
			logger.Info("database connection OK",
				zap.String("driver", cfg.DBDriver),
				zap.Int("attempt", attempt),
			)
			return db, nil
		}

		logger.Warn("db not ready",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt < attempts {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("could not connect to db after %d attempts: %w", attempts, err)
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate books: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
