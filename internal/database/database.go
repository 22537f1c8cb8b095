// Package database opens the GORM connection and keeps the schema in sync
// with the catalog entities.
package database

import (
	"fmt"
	"time"

	"loja/internal/config"
	"loja/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects using the configured driver and DSN.
func Open(cfg *config.Config) (*gorm.DB, error) {
	return Dial(cfg.DBDriver, cfg.DSN())
}

// Dial connects to dsn with the named driver.
func Dial(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// one connection keeps in-memory databases alive and serializes writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table of the catalog.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Entities()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.")
	return nil
}

// Drop removes every catalog table, dependents first.
func Drop(db *gorm.DB) error {
	entities := models.Entities()
	for i := len(entities) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(entities[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	logrus.Info("Tables dropped.")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
