package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// ShoppingListService renders the user's shopping cart as a plain-text
// document with ingredient quantities merged across recipes.
type ShoppingListService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db, now: time.Now}
}

// ingredientKey groups by name and unit. Two ingredients with the same
// name but different units stay separate on purpose.
type ingredientKey struct {
	Name string
	Unit string
}

// Build collects every recipe in the user's cart, sums ingredient
// amounts by (name, unit) and emits a sorted report. An empty cart
// still produces a well-formed document.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return "", err
	}

	var items []models.ShoppingCartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Recipe.Author").
		Preload("Recipe.Ingredients.Ingredient").
		Order("id").
		Find(&items).Error
	if err != nil {
		return "", err
	}

	var doc strings.Builder
	fmt.Fprintf(&doc, "Shopping list for %s %s (@%s)\n", user.FirstName, user.LastName, user.Username)
	fmt.Fprintf(&doc, "Generated: %s\n\n", s.now().UTC().Format("02 Jan 2006 15:04 MST"))

	if len(items) == 0 {
		doc.WriteString("The shopping list is empty.\n")
		return doc.String(), nil
	}

	totals := make(map[ingredientKey]int)
	doc.WriteString("Recipes:\n")
	for _, item := range items {
		fmt.Fprintf(&doc, "- %s (by @%s)\n", item.Recipe.Name, item.Recipe.Author.Username)
		for _, ri := range item.Recipe.Ingredients {
			key := ingredientKey{Name: ri.Ingredient.Name, Unit: ri.Ingredient.MeasurementUnit}
			totals[key] += ri.Amount
		}
	}

	keys := make([]ingredientKey, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Unit < keys[j].Unit
	})

	doc.WriteString("\nIngredients:\n")
	for _, key := range keys {
		fmt.Fprintf(&doc, "%s - %d (%s)\n", key.Name, totals[key], key.Unit)
	}
	return doc.String(), nil
}
