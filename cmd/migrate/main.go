package main

import (
	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("failed to load configuration", "error", err)
	}

	db, err := database.Connect(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}

	if err := database.Migrate(db); err != nil {
		sugar.Fatalw("migration failed", "error", err)
	}
	sugar.Info("migrations applied")
}
