package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// FavoriteService manages the per-user favorite set. Add fails when the
// pair already exists, remove fails when it is absent; the composite
// unique index backstops concurrent adds.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

func (s *FavoriteService) Add(ctx context.Context, userID, recipeID uint) error {
	if err := recipeExists(ctx, s.db, recipeID); err != nil {
		return err
	}

	var existing models.FavoriteRecipe
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: recipe is already in favorites", ErrAlreadyExists)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	fav := models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: recipe is already in favorites", ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.FavoriteRecipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe is not in favorites", ErrNotFound)
	}
	return nil
}

func recipeExists(ctx context.Context, db *gorm.DB, recipeID uint) error {
	var recipe models.Recipe
	if err := db.WithContext(ctx).Select("id").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return err
	}
	return nil
}

// isUniqueViolation reports whether err came from a unique index, for
// drivers with and without gorm error translation.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
