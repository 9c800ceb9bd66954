package main

import (
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
)

// Loads the ingredient reference data from a JSON file of
// {"name": ..., "measurement_unit": ...} objects. Existing rows are
// left untouched.
func main() {
	path := flag.String("file", "data/ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

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
		sugar.Fatalw("failed to migrate database", "error", err)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		sugar.Fatalw("failed to read ingredients file", "path", *path, "error", err)
	}

	var ingredients []models.Ingredient
	if err := json.Unmarshal(data, &ingredients); err != nil {
		sugar.Fatalw("failed to parse ingredients file", "error", err)
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredients)
	if res.Error != nil {
		sugar.Fatalw("failed to seed ingredients", "error", res.Error)
	}
	sugar.Infow("ingredients seeded", "count", len(ingredients))
}
