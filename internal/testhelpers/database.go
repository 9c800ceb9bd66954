package testhelpers

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
)

// NewTestDB opens a private in-memory SQLite database and applies the
// full schema. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache in-memory databases misbehave with concurrent
	// connections; one is enough for tests.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with generated unique email/username
// derived from the given handle.
func CreateUser(t *testing.T, db *gorm.DB, handle string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        handle + "@example.com",
		Username:     handle,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateIngredient inserts one reference ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// CreateRecipe inserts a recipe with the given (ingredient, amount)
// rows, bypassing validation. Use the service when validation matters.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, ingredients map[*models.Ingredient]int) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "how to cook " + name,
		ImageURL:    "http://localhost/media/recipes/" + name + ".png",
		CookingTime: 10,
	}
	require.NoError(t, db.Create(recipe).Error)
	for ing, amount := range ingredients {
		row := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ing.ID,
			Amount:       amount,
		}
		require.NoError(t, db.Create(&row).Error)
	}
	return recipe
}

// PNGDataURI returns a small valid base64 image payload.
func PNGDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not-really-a-png"))
}

// Ctx is shorthand for the background context used across tests.
func Ctx() context.Context {
	return context.Background()
}
