package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// AuthorRecipes is a followed author with a preview of their recipes
type AuthorRecipes struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// SubscriptionService manages user-to-author follow edges
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes userID follow authorID and returns the author with at most
// recipesLimit of their newest recipes (no limit when <= 0). The preview is
// read in the same transaction so a failed read leaves no subscription behind.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*AuthorRecipes, error) {
	result, err := s.subscribe(ctx, userID, authorID, recipesLimit)
	observeMembership("subscription", "add", err)
	return result, err
}

func (s *SubscriptionService) subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*AuthorRecipes, error) {
	if userID == authorID {
		return nil, apperr.Conflict("you cannot subscribe to yourself")
	}

	var result AuthorRecipes
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author := &result.Author
		if err := tx.First(author, "id = ?", authorID).Error; err != nil {
			if isNotFound(err) {
				return apperr.NotFound("user %s not found", authorID)
			}
			return fmt.Errorf("failed to get author: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Subscription{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("already subscribed to %s", author.Username)
		}

		if err := tx.Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.Conflict("already subscribed to %s", author.Username)
			}
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		return authorPreview(tx, &result, recipesLimit)
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Str("author_id", authorID.String()).
		Msg("subscribed")
	return &result, nil
}

// authorPreview fills in the recipe count and newest recipes of entry.Author
func authorPreview(tx *gorm.DB, entry *AuthorRecipes, recipesLimit int) error {
	if err := tx.Model(&models.Recipe{}).Where("author_id = ?", entry.Author.ID).Count(&entry.RecipesCount).Error; err != nil {
		return fmt.Errorf("failed to count author recipes: %w", err)
	}

	query := tx.Where("author_id = ?", entry.Author.ID).Order("created_at DESC").Order("id")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	entry.Recipes = []models.Recipe{}
	if err := query.Find(&entry.Recipes).Error; err != nil {
		return fmt.Errorf("failed to load author recipes: %w", err)
	}
	return nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.User{}).Where("id = ?", authorID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to get author: %w", err)
		}
		if exists == 0 {
			return apperr.NotFound("user %s not found", authorID)
		}

		res := tx.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Subscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete subscription: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("not subscribed")
		}
		return nil
	})
	observeMembership("subscription", "remove", err)
	return err
}

// ListSubscriptions returns one page of followed authors ordered by username,
// each with at most recipesLimit of their newest recipes (no limit when <= 0).
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uuid.UUID, recipesLimit, limit, offset int) ([]AuthorRecipes, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	query := db.Model(&models.User{}).
		Select("users.*").
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("users.username")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var authors []models.User
	if err := query.Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if len(authors) == 0 {
		return []AuthorRecipes{}, total, nil
	}

	authorIDs := make([]uuid.UUID, 0, len(authors))
	for _, a := range authors {
		authorIDs = append(authorIDs, a.ID)
	}

	var recipes []models.Recipe
	if err := db.Where("author_id IN ?", authorIDs).
		Order("created_at DESC").Order("id").
		Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load author recipes: %w", err)
	}

	byAuthor := make(map[uuid.UUID][]models.Recipe, len(authors))
	for _, r := range recipes {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}

	result := make([]AuthorRecipes, 0, len(authors))
	for _, a := range authors {
		own := byAuthor[a.ID]
		entry := AuthorRecipes{Author: a, RecipesCount: int64(len(own)), Recipes: own}
		if recipesLimit > 0 && len(own) > recipesLimit {
			entry.Recipes = own[:recipesLimit]
		}
		if entry.Recipes == nil {
			entry.Recipes = []models.Recipe{}
		}
		result = append(result, entry)
	}
	return result, total, nil
}

// IsSubscribed reports whether userID follows authorID
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return count > 0, nil
}
