package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

func TestSubscriptionService_Subscribe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	anna := testhelpers.CreateUser(t, db, "anna")
	boris := testhelpers.CreateUser(t, db, "boris")

	require.NoError(t, svc.Subscribe(testhelpers.Ctx(), boris.ID, anna.ID))

	ok, err := svc.IsSubscribed(testhelpers.Ctx(), boris.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Following is directed; anna does not automatically follow boris.
	ok, err = svc.IsSubscribed(testhelpers.Ctx(), anna.ID, boris.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Subscribe(testhelpers.Ctx(), boris.ID, anna.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubscriptionService_SelfSubscribe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	anna := testhelpers.CreateUser(t, db, "anna")

	err := svc.Subscribe(testhelpers.Ctx(), anna.ID, anna.ID)
	assert.ErrorIs(t, err, ErrSelfSubscription)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubscriptionService_SubscribeMissingAuthor(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	anna := testhelpers.CreateUser(t, db, "anna")

	err := svc.Subscribe(testhelpers.Ctx(), anna.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	anna := testhelpers.CreateUser(t, db, "anna")
	boris := testhelpers.CreateUser(t, db, "boris")

	require.NoError(t, svc.Subscribe(testhelpers.Ctx(), boris.ID, anna.ID))
	require.NoError(t, svc.Unsubscribe(testhelpers.Ctx(), boris.ID, anna.ID))

	err := svc.Unsubscribe(testhelpers.Ctx(), boris.ID, anna.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionService_List(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	anna := testhelpers.CreateUser(t, db, "anna")
	boris := testhelpers.CreateUser(t, db, "boris")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	for i := 0; i < 8; i++ {
		testhelpers.CreateRecipe(t, db, anna, fmt.Sprintf("Dish %d", i), map[*models.Ingredient]int{flour: 10})
	}
	testhelpers.CreateRecipe(t, db, boris, "Borscht", map[*models.Ingredient]int{flour: 50})

	require.NoError(t, svc.Subscribe(testhelpers.Ctx(), reader.ID, anna.ID))
	require.NoError(t, svc.Subscribe(testhelpers.Ctx(), reader.ID, boris.ID))

	entries, total, err := svc.List(testhelpers.Ctx(), reader.ID, 0, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, entries, 2)

	// Embedded recipes are capped by the default limit while the count
	// reflects everything the author published.
	assert.Equal(t, anna.ID, entries[0].Author.ID)
	assert.Len(t, entries[0].Recipes, DefaultRecipesLimit)
	assert.EqualValues(t, 8, entries[0].RecipeCount)

	assert.Equal(t, boris.ID, entries[1].Author.ID)
	assert.Len(t, entries[1].Recipes, 1)
	assert.EqualValues(t, 1, entries[1].RecipeCount)
}

func TestSubscriptionService_ListRecipesLimit(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	anna := testhelpers.CreateUser(t, db, "anna")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	for i := 0; i < 4; i++ {
		testhelpers.CreateRecipe(t, db, anna, fmt.Sprintf("Dish %d", i), map[*models.Ingredient]int{flour: 10})
	}
	require.NoError(t, svc.Subscribe(testhelpers.Ctx(), reader.ID, anna.ID))

	entries, _, err := svc.List(testhelpers.Ctx(), reader.ID, 2, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Recipes, 2)
	assert.EqualValues(t, 4, entries[0].RecipeCount)
}

func TestSubscriptionService_ListPagination(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewSubscriptionService(db)

	reader := testhelpers.CreateUser(t, db, "reader")
	for i := 0; i < 3; i++ {
		author := testhelpers.CreateUser(t, db, fmt.Sprintf("author%d", i))
		require.NoError(t, svc.Subscribe(testhelpers.Ctx(), reader.ID, author.ID))
	}

	entries, total, err := svc.List(testhelpers.Ctx(), reader.ID, 0, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, entries, 2)

	entries, _, err = svc.List(testhelpers.Ctx(), reader.ID, 0, 2, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
