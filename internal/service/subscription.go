package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// DefaultRecipesLimit caps how many of an author's recipes are embedded
// in each subscription entry when the caller does not say otherwise.
const DefaultRecipesLimit = 6

// SubscriptionEntry is one followed author with a slice of their newest
// recipes and the total count.
type SubscriptionEntry struct {
	Author      models.User
	Recipes     []models.Recipe
	RecipeCount int64
}

// SubscriptionService manages follow edges between users.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return fmt.Errorf("%w", ErrSelfSubscription)
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, authorID)
		}
		return err
	}

	var existing models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: already subscribed to this author", ErrAlreadyExists)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: already subscribed to this author", ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: not subscribed to this author", ErrNotFound)
	}
	return nil
}

// IsSubscribed reports whether user follows author. Used for the
// viewer-relative is_subscribed field.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}

// List returns every author the user follows, each with up to
// recipesLimit of their newest recipes and the author's total recipe
// count. The limit applies per entry, not across the result.
func (s *SubscriptionService) List(ctx context.Context, userID uint, recipesLimit, limit, offset int) ([]SubscriptionEntry, int64, error) {
	if recipesLimit <= 0 {
		recipesLimit = DefaultRecipesLimit
	}

	query := s.db.WithContext(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Subscription
	q := query.Preload("Author").Order("id")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]SubscriptionEntry, 0, len(subs))
	for _, sub := range subs {
		var recipes []models.Recipe
		err := s.db.WithContext(ctx).
			Where("author_id = ?", sub.AuthorID).
			Order("created_at DESC, id DESC").
			Limit(recipesLimit).
			Find(&recipes).Error
		if err != nil {
			return nil, 0, err
		}

		var count int64
		err = s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ?", sub.AuthorID).
			Count(&count).Error
		if err != nil {
			return nil, 0, err
		}

		entries = append(entries, SubscriptionEntry{
			Author:      sub.Author,
			Recipes:     recipes,
			RecipeCount: count,
		})
	}
	return entries, total, nil
}
