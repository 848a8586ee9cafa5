package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// UserService reads the users created by the auth service and manages
// their avatars
type UserService struct {
	db     *gorm.DB
	images IImageService
}

func NewUserService(db *gorm.DB, images IImageService) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SetAvatar stores dataURI as the user's avatar and drops the previous one
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (*models.User, error) {
	if strings.TrimSpace(dataURI) == "" {
		return nil, apperr.Validation(map[string][]string{"avatar": {"this field is required"}})
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.SaveDataURI(ctx, Avatars, dataURI)
	if err != nil {
		return nil, err
	}

	previous := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", url).Error; err != nil {
		s.images.Remove(ctx, url)
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	if previous != "" && previous != url {
		s.images.Remove(ctx, previous)
	}

	logging.Ctx(ctx).Info().Str("user_id", userID.String()).Msg("avatar updated")
	return user, nil
}

// DeleteAvatar clears the user's avatar. Clearing an empty avatar is a no-op.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	previous := user.Avatar
	if previous == "" {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	s.images.Remove(ctx, previous)
	return nil
}
