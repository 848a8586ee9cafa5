package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"gorm.io/gorm"
)

// Services bundles the dependencies of every handler
type Services struct {
	DB            *gorm.DB
	Auth          middleware.TokenValidator
	Ingredients   service.IIngredientService
	Tags          service.ITagService
	Recipes       service.IRecipeService
	Members       service.IMembershipService
	ShoppingList  service.IShoppingListService
	Subscriptions service.ISubscriptionService
	Users         service.IUserService
	RateLimiter   *middleware.RateLimiter
}

// NewServices wires the default service implementations to db
func NewServices(db *gorm.DB, auth middleware.TokenValidator, images service.IImageService, limiter *middleware.RateLimiter) Services {
	return Services{
		DB:            db,
		Auth:          auth,
		Ingredients:   service.NewIngredientService(db),
		Tags:          service.NewTagService(db),
		Recipes:       service.NewRecipeService(db, images),
		Members:       service.NewMembershipService(db),
		ShoppingList:  service.NewShoppingListService(db),
		Subscriptions: service.NewSubscriptionService(db),
		Users:         service.NewUserService(db, images),
		RateLimiter:   limiter,
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, svc Services) {
	router.GET("/health", HealthCheck(svc.DB))

	api := router.Group("/api")
	NewIngredientHandler(svc.Ingredients).RegisterRoutes(api)
	NewTagHandler(svc.Tags).RegisterRoutes(api)
	NewRecipeHandler(svc.Recipes, svc.Members, svc.ShoppingList, svc.Auth, svc.RateLimiter).RegisterRoutes(api)
	NewUserHandler(svc.Users, svc.Subscriptions, svc.Auth).RegisterRoutes(api)
}

// HealthCheck reports whether the database is reachable
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
