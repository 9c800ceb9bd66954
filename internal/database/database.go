package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/platefeed/backend/config"
)

// WaitForDB pings the database with a plain connection until it
// answers or the timeout elapses. Run before opening GORM so container
// startup ordering does not matter.
func WaitForDB(dsn string, timeout time.Duration, logger *zap.SugaredLogger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	deadline := time.Now().Add(timeout)
	for {
		if err = db.Ping(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not reachable after %s: %w", timeout, err)
		}
		logger.Infow("waiting for database", "error", err)
		time.Sleep(time.Second)
	}
}

// Connect waits for the database and opens the GORM connection with
// pool settings applied.
func Connect(cfg *config.Config, logger *zap.SugaredLogger) (*gorm.DB, error) {
	dsn := cfg.DSN()
	if err := WaitForDB(dsn, 30*time.Second, logger); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logger.Infow("connected to database", "host", cfg.DBHost, "name", cfg.DBName)
	return db, nil
}
