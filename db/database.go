package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open returns a gorm connection for the given dialect without touching the global DB
func Open(dialect, dsn string, environment string) (*gorm.DB, error) {
	// Determine log level based on environment
	logLevel := logger.Info
	if environment == "production" {
		logLevel = logger.Warn
	}
	if environment == "test" {
		logLevel = logger.Silent
	}

	var dialector gorm.Dialector
	switch dialect {
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres dialect requires DATABASE_URL")
		}
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		// Enable WAL mode for better concurrency support
		dialector = sqlite.Open(dsn + "?_journal_mode=WAL")
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// Initialize sets up the global database connection
func Initialize(dialect, dsn string, environment string) error {
	conn, err := Open(dialect, dsn, environment)
	if err != nil {
		return err
	}
	DB = conn

	log.Printf("Database connection established (%s)", dialectName(dialect))
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(models...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

func dialectName(dialect string) string {
	if dialect == "postgres" {
		return "PostgreSQL"
	}
	return "SQLite, WAL mode enabled"
}
