package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// membership describes one user-recipe set (favorites or shopping cart)
type membership struct {
	kind  string
	label string
	model func() interface{}
	entry func(userID, recipeID uuid.UUID) interface{}
}

var (
	favorites = membership{
		kind:  "favorite",
		label: "favorites",
		model: func() interface{} { return &models.Favorite{} },
		entry: func(userID, recipeID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}
	shoppingCart = membership{
		kind:  "shopping_cart",
		label: "the shopping cart",
		model: func() interface{} { return &models.CartEntry{} },
		entry: func(userID, recipeID uuid.UUID) interface{} {
			return &models.CartEntry{UserID: userID, RecipeID: recipeID}
		},
	}
)

// MembershipService toggles recipes in a user's favorites and shopping cart.
// A second add is a conflict; removing an absent entry is not found.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

func (s *MembershipService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.add(ctx, favorites, userID, recipeID)
}

func (s *MembershipService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, favorites, userID, recipeID)
}

func (s *MembershipService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.add(ctx, shoppingCart, userID, recipeID)
}

func (s *MembershipService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, shoppingCart, userID, recipeID)
}

func (s *MembershipService) add(ctx context.Context, m membership, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if isNotFound(err) {
				return apperr.NotFound("recipe %s not found", recipeID)
			}
			return fmt.Errorf("failed to get recipe: %w", err)
		}

		var count int64
		if err := tx.Model(m.model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s: %w", m.kind, err)
		}
		if count > 0 {
			return apperr.Conflict("recipe is already in %s", m.label)
		}

		if err := tx.Create(m.entry(userID, recipeID)).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.Conflict("recipe is already in %s", m.label)
			}
			return fmt.Errorf("failed to add %s: %w", m.kind, err)
		}
		return nil
	})
	observeMembership(m.kind, "add", err)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("kind", m.kind).
		Str("user_id", userID.String()).
		Str("recipe_id", recipeID.String()).
		Msg("membership added")
	return &recipe, nil
}

func (s *MembershipService) remove(ctx context.Context, m membership, userID, recipeID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to get recipe: %w", err)
		}
		if exists == 0 {
			return apperr.NotFound("recipe %s not found", recipeID)
		}

		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(m.model())
		if res.Error != nil {
			return fmt.Errorf("failed to remove %s: %w", m.kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("recipe is not in %s", m.label)
		}
		return nil
	})
	observeMembership(m.kind, "remove", err)
	return err
}

func observeMembership(kind, action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if e, ok := apperr.As(err); ok {
			result = string(e.Kind)
		}
	}
	metrics.MembershipChanges.WithLabelValues(kind, action, result).Inc()
}
