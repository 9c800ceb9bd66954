package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// UserService reads user profiles and manages avatars.
type UserService struct {
	db     *gorm.DB
	images *ImageService
}

func NewUserService(db *gorm.DB, images *ImageService) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("username")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetAvatar decodes the base64 payload, stores it and updates the
// user's avatar reference. The previous reference is simply replaced.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, payload string) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.images.StoreBase64(ctx, payload, "avatars")
	if err != nil {
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("avatar_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}

// DeleteAvatar clears the avatar reference; it fails with validation
// when the user has no avatar set.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == "" {
		return fmt.Errorf("%w: user has no avatar", ErrValidation)
	}
	return s.db.WithContext(ctx).Model(user).Update("avatar_url", "").Error
}
