package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// RecipeInput carries client-supplied recipe fields. The author always
// comes from the authenticated identity, never from the payload.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []RecipeIngredientInput
}

type RecipeIngredientInput struct {
	ID     uint
	Amount int
}

// RecipeFilter narrows recipe listings. FavoritedBy and InCartOf are
// viewer-relative and only set for authenticated callers.
type RecipeFilter struct {
	AuthorID    *uint
	FavoritedBy *uint
	InCartOf    *uint
	Limit       int
	Offset      int
}

// RecipeService validates and persists recipes together with their
// ingredient lists.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
	logger *zap.SugaredLogger
}

func NewRecipeService(db *gorm.DB, images *ImageService, logger *zap.SugaredLogger) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
		logger: logger,
	}
}

func (s *RecipeService) validate(ctx context.Context, in RecipeInput, requireImage bool) error {
	if in.Name == "" {
		return fmt.Errorf("%w: recipe name is required", ErrValidation)
	}
	if in.CookingTime < 1 {
		return fmt.Errorf("%w: cooking time must be at least 1 minute", ErrValidation)
	}
	if len(in.Ingredients) == 0 {
		return fmt.Errorf("%w: recipe must list at least one ingredient", ErrValidation)
	}
	seen := make(map[uint]struct{}, len(in.Ingredients))
	ids := make([]uint, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		if ing.Amount < 1 {
			return fmt.Errorf("%w: ingredient amount must be at least 1", ErrValidation)
		}
		if _, dup := seen[ing.ID]; dup {
			return fmt.Errorf("%w: ingredient %d is listed twice", ErrValidation, ing.ID)
		}
		seen[ing.ID] = struct{}{}
		ids = append(ids, ing.ID)
	}
	if requireImage && in.Image == "" {
		return fmt.Errorf("%w: recipe image is required", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return fmt.Errorf("%w: unknown ingredient id in list", ErrValidation)
	}
	return nil
}

// Create validates the input, stores the embedded image and persists
// the recipe with its ingredient rows in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	if err := s.validate(ctx, in, true); err != nil {
		return nil, err
	}

	imageURL, err := s.images.StoreBase64(ctx, in.Image, "recipes")
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		ImageURL:    imageURL,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return tx.Create(ingredientRows(recipe.ID, in.Ingredients)).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("recipe created", "recipe_id", recipe.ID, "author_id", authorID)
	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe fields and its whole ingredient set.
// The clear+insert runs inside one transaction so a mid-update failure
// leaves the previous set intact.
func (s *RecipeService) Update(ctx context.Context, recipeID uint, actor *types.TokenClaims, in RecipeInput) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actor.UserID && !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only the author may edit this recipe", ErrPermissionDenied)
	}
	if err := s.validate(ctx, in, true); err != nil {
		return nil, err
	}

	imageURL, err := s.images.StoreBase64(ctx, in.Image, "recipes")
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"image_url":    imageURL,
			"cooking_time": in.CookingTime,
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Create(ingredientRows(recipeID, in.Ingredients)).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("recipe updated", "recipe_id", recipeID, "actor_id", actor.UserID)
	return s.Get(ctx, recipeID)
}

// Delete removes the recipe and its association rows. The database
// cascade covers the same rows; the explicit deletes keep the behavior
// identical across drivers.
func (s *RecipeService) Delete(ctx context.Context, recipeID uint, actor *types.TokenClaims) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return err
	}
	if recipe.AuthorID != actor.UserID && !actor.IsAdmin {
		return fmt.Errorf("%w: only the author may delete this recipe", ErrPermissionDenied)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.RecipeIngredient{},
			&models.FavoriteRecipe{},
			&models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipeID).Error
	})
}

// Get returns the recipe with its author and ingredient rows loaded.
func (s *RecipeService) Get(ctx context.Context, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns a page of recipes, newest first, plus the total count
// before paging.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if f.FavoritedBy != nil {
		query = query.Joins("JOIN favorite_recipes fr ON fr.recipe_id = recipes.id AND fr.user_id = ?", *f.FavoritedBy)
	}
	if f.InCartOf != nil {
		query = query.Joins("JOIN shopping_cart_items sc ON sc.recipe_id = recipes.id AND sc.user_id = ?", *f.InCartOf)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	query = query.Preload("Author").Preload("Ingredients.Ingredient").Order("recipes.created_at DESC, recipes.id DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func ingredientRows(recipeID uint, in []RecipeIngredientInput) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, 0, len(in))
	for _, ing := range in {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}
	return rows
}
