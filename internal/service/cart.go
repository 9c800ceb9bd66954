package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// CartService manages the per-user shopping cart set. Same toggle
// contract as favorites, against its own independent association table.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) Add(ctx context.Context, userID, recipeID uint) error {
	if err := recipeExists(ctx, s.db, recipeID); err != nil {
		return err
	}

	var existing models.ShoppingCartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: recipe is already in the shopping cart", ErrAlreadyExists)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	item := models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: recipe is already in the shopping cart", ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (s *CartService) Remove(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe is not in the shopping cart", ErrNotFound)
	}
	return nil
}
