package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for token operations
type IAuthService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IImageService defines the interface for storing uploaded recipe images
type IImageService interface {
	SaveDataURI(ctx context.Context, target ImageTarget, dataURI string) (string, error)
	Remove(ctx context.Context, url string)
}

// IIngredientService defines the interface for the ingredient catalog
type IIngredientService interface {
	Search(ctx context.Context, name string) ([]models.Ingredient, error)
	Get(ctx context.Context, id uint) (*models.Ingredient, error)
}

// ITagService defines the interface for the tag catalog
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Get(ctx context.Context, id uint) (*models.Tag, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error)
	RecipeFlags(ctx context.Context, viewerID *uuid.UUID, recipes []models.Recipe) (map[uuid.UUID]types.RecipeFlags, error)
}

// IMembershipService defines the interface for favorites and the shopping cart
type IMembershipService interface {
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IShoppingListService defines the interface for the shopping list export
type IShoppingListService interface {
	Build(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error)
	Export(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// ISubscriptionService defines the interface for author subscriptions
type ISubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*AuthorRecipes, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	ListSubscriptions(ctx context.Context, userID uuid.UUID, recipesLimit, limit, offset int) ([]AuthorRecipes, int64, error)
	IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
}

// IUserService defines the interface for reading users and their avatars
type IUserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (*models.User, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IImageService        = (*ImageService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ ITagService          = (*TagService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IMembershipService   = (*MembershipService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ImageStore           = (*S3ImageStore)(nil)
	_ ImageStore           = (*FileImageStore)(nil)
)
