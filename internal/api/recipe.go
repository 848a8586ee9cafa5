package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes      service.IRecipeService
	members      service.IMembershipService
	shoppingList service.IShoppingListService
	auth         middleware.TokenValidator
	rateLimiter  *middleware.RateLimiter
}

func NewRecipeHandler(
	recipes service.IRecipeService,
	members service.IMembershipService,
	shoppingList service.IShoppingListService,
	auth middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		members:      members,
		shoppingList: shoppingList,
		auth:         auth,
		rateLimiter:  rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)
	limitWrites := h.rateLimiter.RateLimitMiddleware()

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.POST("", requireAuth, limitWrites, h.CreateRecipe)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.PATCH("/:id", requireAuth, limitWrites, h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, limitWrites, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromCart)
	}
}

// ListRecipes supports ?page, ?limit, ?tags (repeatable slug), ?author,
// ?is_favorited and ?is_in_shopping_cart
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p, err := parsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter := service.RecipeFilter{
		ViewerID:         viewer(c),
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      boolQuery(c, "is_favorited"),
		IsInShoppingCart: boolQuery(c, "is_in_shopping_cart"),
		Limit:            p.Limit,
		Offset:           p.Offset(),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			_ = c.Error(apperr.Validation(map[string][]string{"author": {"must be a user id"}}))
			return
		}
		filter.AuthorID = &id
	}

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results, err := h.represent(c, recipes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pageResponse(c, p, total, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.members.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.members.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.members.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.members.RemoveFromCart)
}

// DownloadShoppingCart sends the aggregated shopping list as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	body, err := h.shoppingList.Export(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

func (h *RecipeHandler) addMembership(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := add(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.NewShortRecipeResponse(*recipe))
}

func (h *RecipeHandler) removeMembership(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := remove(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	results, err := h.represent(c, []models.Recipe{*recipe})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, results[0])
}

// represent builds the full representation with the caller's flags
func (h *RecipeHandler) represent(c *gin.Context, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	flags, err := h.recipes.RecipeFlags(c.Request.Context(), viewer(c), recipes)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, types.NewRecipeResponse(r, flags[r.ID]))
	}
	return out, nil
}
