package integration

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

// setupPostgres starts a throwaway Postgres container and returns a
// migrated connection. Skipped when docker is not available.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postpass",
				"POSTGRES_DB":       "platefeed_test",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf(
		"host=%s port=%s user=postgres password=postpass dbname=platefeed_test sslmode=disable",
		host, port.Port(),
	)

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		return err == nil
	}, 30*time.Second, time.Second)

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, handle string) *models.User {
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

func createRecipe(t *testing.T, db *gorm.DB, author *models.User) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		ImageURL:    "http://localhost/media/recipes/pancakes.png",
		CookingTime: 20,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func TestPostgresUniqueConstraints(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	anna := createUser(t, db, "anna")
	boris := createUser(t, db, "boris")
	recipe := createRecipe(t, db, anna)

	t.Run("favorite pair", func(t *testing.T) {
		favorites := service.NewFavoriteService(db)
		require.NoError(t, favorites.Add(ctx, boris.ID, recipe.ID))

		// Insert the duplicate directly, bypassing the service
		// pre-check, so the database index is what rejects it.
		err := db.Create(&models.FavoriteRecipe{UserID: boris.ID, RecipeID: recipe.ID}).Error
		require.Error(t, err)

		err = favorites.Add(ctx, boris.ID, recipe.ID)
		assert.ErrorIs(t, err, service.ErrAlreadyExists)
	})

	t.Run("subscription pair", func(t *testing.T) {
		subs := service.NewSubscriptionService(db)
		require.NoError(t, subs.Subscribe(ctx, boris.ID, anna.ID))

		err := db.Create(&models.Subscription{UserID: boris.ID, AuthorID: anna.ID}).Error
		require.Error(t, err)
	})

	t.Run("self subscription check constraint", func(t *testing.T) {
		err := db.Create(&models.Subscription{UserID: anna.ID, AuthorID: anna.ID}).Error
		require.Error(t, err)
	})

	t.Run("ingredient name and unit", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Ingredient{Name: "salt", MeasurementUnit: "g"}).Error)
		err := db.Create(&models.Ingredient{Name: "salt", MeasurementUnit: "g"}).Error
		require.Error(t, err)

		// Same name under a different unit is a distinct row.
		require.NoError(t, db.Create(&models.Ingredient{Name: "salt", MeasurementUnit: "tbsp"}).Error)
	})
}

func TestPostgresRecipeLifecycle(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	images := service.NewImageService(service.NewLocalStore(t.TempDir(), "http://localhost:8080"))
	recipes := service.NewRecipeService(db, images, zap.NewNop().Sugar())

	anna := createUser(t, db, "anna")
	flour := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(flour).Error)

	created, err := recipes.Create(ctx, anna.ID, service.RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       "data:image/png;base64,aGVsbG8=",
		CookingTime: 20,
		Ingredients: []service.RecipeIngredientInput{{ID: flour.ID, Amount: 200}},
	})
	require.NoError(t, err)

	fetched, err := recipes.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Ingredients, 1)
	assert.Equal(t, 200, fetched.Ingredients[0].Amount)
	assert.Equal(t, "flour", fetched.Ingredients[0].Ingredient.Name)
}
