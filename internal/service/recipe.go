package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// RecipeFilter narrows and pages ListRecipes. The membership filters only
// apply when ViewerID is set.
type RecipeFilter struct {
	ViewerID         *uuid.UUID
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

// RecipeService handles recipe operations
type RecipeService struct {
	db        *gorm.DB
	images    IImageService
	validator *RecipeValidator
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images IImageService) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		validator: NewRecipeValidator(),
	}
}

// CreateRecipe validates the request, stores the image and writes the recipe
// with its tags and lines in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.createRecipe(ctx, authorID, req)
	observeRecipeWrite("create", err)
	return recipe, err
}

func (s *RecipeService) createRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	if err := s.validator.Validate(ctx, s.db, req, true); err != nil {
		return nil, err
	}

	imageURL, err := s.images.SaveDataURI(ctx, RecipeImages, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		Image:       imageURL,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Lines").Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return writeRecipeLinks(tx, recipe.ID, req)
	})
	if err != nil {
		s.images.Remove(ctx, imageURL)
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", authorID.String()).
		Msg("recipe created")

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields, tags and lines. Only the author may update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.updateRecipe(ctx, userID, recipeID, req)
	observeRecipeWrite("update", err)
	return recipe, err
}

func (s *RecipeService) updateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	current, err := s.authoredRecipe(ctx, s.db, userID, recipeID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(ctx, s.db, req, false); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         strings.TrimSpace(req.Name),
		"text":         req.Text,
		"cooking_time": req.CookingTime,
	}
	var imageURL string
	if req.Image != "" {
		imageURL, err = s.images.SaveDataURI(ctx, RecipeImages, req.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.authoredRecipe(ctx, tx, userID, recipeID)
		if err != nil {
			return err
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeLine{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe lines: %w", err)
		}
		return writeRecipeLinks(tx, recipeID, req)
	})
	if err != nil {
		if imageURL != "" {
			s.images.Remove(ctx, imageURL)
		}
		return nil, err
	}
	if imageURL != "" && current.Image != "" && current.Image != imageURL {
		s.images.Remove(ctx, current.Image)
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipeID.String()).Msg("recipe updated")
	return s.GetRecipe(ctx, recipeID)
}

// DeleteRecipe removes a recipe and everything attached to it. Only the author may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.authoredRecipe(ctx, tx, userID, recipeID)
		if err != nil {
			return err
		}
		image = recipe.Image

		// Dependents are removed explicitly so SQLite without FK enforcement behaves the same
		for _, dependent := range []interface{}{&models.RecipeLine{}, &models.Favorite{}, &models.CartEntry{}} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe tags: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	observeRecipeWrite("delete", err)
	if err != nil {
		return err
	}
	if image != "" {
		s.images.Remove(ctx, image)
	}

	logging.Ctx(ctx).Info().Str("recipe_id", recipeID.String()).Msg("recipe deleted")
	return nil
}

// GetRecipe retrieves a recipe by ID with author, tags and ingredients loaded
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeDetails(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("recipe %s not found", id)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes, newest first, and the total match count
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)

	scoped := func() *gorm.DB {
		query := db.Model(&models.Recipe{})
		if filter.AuthorID != nil {
			query = query.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			query = query.Where("recipes.id IN (?)", db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if filter.ViewerID != nil && filter.IsFavorited {
			query = query.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", *filter.ViewerID))
		}
		if filter.ViewerID != nil && filter.IsInShoppingCart {
			query = query.Where("recipes.id IN (?)", db.Model(&models.CartEntry{}).
				Select("recipe_id").Where("user_id = ?", *filter.ViewerID))
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := withRecipeDetails(scoped()).Order("recipes.created_at DESC").Order("recipes.id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// RecipeFlags computes the viewer-relative flags for each recipe. A nil
// viewer gets all flags false.
func (s *RecipeService) RecipeFlags(ctx context.Context, viewerID *uuid.UUID, recipes []models.Recipe) (map[uuid.UUID]types.RecipeFlags, error) {
	flags := make(map[uuid.UUID]types.RecipeFlags, len(recipes))
	if viewerID == nil || len(recipes) == 0 {
		return flags, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	db := s.db.WithContext(ctx)
	favorited, err := pluckSet(db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs), "recipe_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	inCart, err := pluckSet(db.Model(&models.CartEntry{}).Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs), "recipe_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	subscribed, err := pluckSet(db.Model(&models.Subscription{}).Where("user_id = ? AND author_id IN ?", *viewerID, authorIDs), "author_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	for _, r := range recipes {
		flags[r.ID] = types.RecipeFlags{
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			AuthorSubscribed: subscribed[r.AuthorID],
		}
	}
	return flags, nil
}

// authoredRecipe loads a recipe and checks that userID wrote it
func (s *RecipeService) authoredRecipe(ctx context.Context, db *gorm.DB, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("recipe %s not found", recipeID)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.AuthorID != userID {
		return nil, apperr.Forbidden("only the author can change this recipe")
	}
	return &recipe, nil
}

func writeRecipeLinks(tx *gorm.DB, recipeID uuid.UUID, req *types.RecipeRequest) error {
	tagRows := make([]map[string]interface{}, 0, len(req.Tags))
	for _, tagID := range req.Tags {
		tagRows = append(tagRows, map[string]interface{}{"recipe_id": recipeID, "tag_id": tagID})
	}
	if err := tx.Table("recipe_tags").Create(tagRows).Error; err != nil {
		return fmt.Errorf("failed to link recipe tags: %w", err)
	}

	lines := make([]models.RecipeLine, 0, len(req.Ingredients))
	for i, in := range req.Ingredients {
		lines = append(lines, models.RecipeLine{
			RecipeID:     recipeID,
			IngredientID: in.ID,
			Amount:       in.Amount,
			Position:     i,
		})
	}
	if err := tx.Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to create recipe lines: %w", err)
	}
	return nil
}

func withRecipeDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_lines.position") }).
		Preload("Lines.Ingredient")
}

// pluckSet collects a uuid column into a set
func pluckSet(query *gorm.DB, column string) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := query.Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func observeRecipeWrite(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if e, ok := apperr.As(err); ok {
			result = string(e.Kind)
		}
	}
	metrics.RecipeWrites.WithLabelValues(operation, result).Inc()
}
