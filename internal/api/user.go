package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	auth          middleware.TokenValidator
}

func NewUserHandler(users service.IUserService, subscriptions service.ISubscriptionService, auth middleware.TokenValidator) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		auth:          auth,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth)

	users := router.Group("/users")
	{
		users.GET("/me", requireAuth, h.Me)
		users.GET("/subscriptions", requireAuth, h.ListSubscriptions)
		users.PUT("/me/avatar", requireAuth, h.SetAvatar)
		users.DELETE("/me/avatar", requireAuth, h.DeleteAvatar)
		users.GET("/:id", middleware.OptionalAuth(h.auth), h.GetUser)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(*user, false))
}

// SetAvatar replaces the caller's avatar with a base64 data URI image
func (h *UserHandler) SetAvatar(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.AvatarRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: user.Avatar})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuidParam(c, "id", "user")
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	subscribed := false
	if viewerID := viewer(c); viewerID != nil {
		subscribed, err = h.subscriptions.IsSubscribed(c.Request.Context(), *viewerID, id)
		if err != nil {
			_ = c.Error(err)
			return
		}
	}
	c.JSON(http.StatusOK, types.NewUserResponse(*user, subscribed))
}

// ListSubscriptions pages the authors the caller follows; ?recipes_limit caps each preview
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	p, err := parsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	recipesLimit, err := intQuery(c, "recipes_limit", 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	subs, total, err := h.subscriptions.ListSubscriptions(c.Request.Context(), userID, recipesLimit, p.Limit, p.Offset())
	if err != nil {
		_ = c.Error(err)
		return
	}

	results := make([]types.SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		results = append(results, types.SubscriptionResponse{
			UserResponse: types.NewUserResponse(s.Author, true),
			Recipes:      types.NewShortRecipeList(s.Recipes),
			RecipesCount: s.RecipesCount,
		})
	}
	c.JSON(http.StatusOK, pageResponse(c, p, total, results))
}

// Subscribe follows the author and returns their card with a recipe preview
func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	authorID, err := uuidParam(c, "id", "user")
	if err != nil {
		_ = c.Error(err)
		return
	}
	recipesLimit, err := intQuery(c, "recipes_limit", 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	sub, err := h.subscriptions.Subscribe(c.Request.Context(), userID, authorID, recipesLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, types.SubscriptionResponse{
		UserResponse: types.NewUserResponse(sub.Author, true),
		Recipes:      types.NewShortRecipeList(sub.Recipes),
		RecipesCount: sub.RecipesCount,
	})
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	authorID, err := uuidParam(c, "id", "user")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.subscriptions.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
