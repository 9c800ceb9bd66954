package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

const shortLinkCacheTTL = time.Hour

// ShortLinkService resolves /s/{id} aliases to canonical recipe paths.
// The alias carries only the numeric recipe id; there is no hashing or
// expiry. Resolved targets are cached in Redis when a client is wired.
type ShortLinkService struct {
	db      *gorm.DB
	cache   *redis.Client
	baseURL string
}

func NewShortLinkService(db *gorm.DB, cache *redis.Client, baseURL string) *ShortLinkService {
	return &ShortLinkService{
		db:      db,
		cache:   cache,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ShortLink returns the absolute short link for a recipe, checking that
// the recipe exists first.
func (s *ShortLinkService) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	if _, err := s.Resolve(ctx, recipeID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/s/%d", s.baseURL, recipeID), nil
}

// Resolve maps a recipe id to its canonical page path. Same id, same
// path every time; a missing recipe is NotFound. Cache failures fall
// through to the database.
func (s *ShortLinkService) Resolve(ctx context.Context, recipeID uint) (string, error) {
	cacheKey := fmt.Sprintf("shortlink:%d", recipeID)
	if s.cache != nil {
		if target, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			return target, nil
		}
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Select("id").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: recipe %d", ErrNotFound, recipeID)
		}
		return "", err
	}

	target := fmt.Sprintf("/recipes/%d", recipe.ID)
	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, target, shortLinkCacheTTL)
	}
	return target, nil
}
