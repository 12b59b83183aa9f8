package db

import (
	"fmt"

	"wohee/vodtracker/internal/logging"
	gormModels "wohee/vodtracker/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logging.Info("Connected to Postgres via GORM")
	return db, nil
}

// InitSQLiteORM opens a file database, or a private in-memory one for ":memory:".
func InitSQLiteORM(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// sqlite allows a single writer; one connection keeps :memory: shared too
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	logging.Info("Opened SQLite via GORM", "path", path)
	return db, nil
}

// Migrate creates the roster tables. Both static presets share a schema.
func Migrate(db *gorm.DB, staticsTables ...string) error {
	if err := db.AutoMigrate(&gormModels.MemberRow{}, &gormModels.VodTrackingRow{}); err != nil {
		return fmt.Errorf("migrate roster tables: %w", err)
	}
	for _, table := range staticsTables {
		if err := db.Table(table).AutoMigrate(&gormModels.StaticRow{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}
