package testhelpers

import (
	"fmt"
	"hash/fnv"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// CreateTestUser inserts a user with a unique username and email
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Email:     fmt.Sprintf("%s@example.com", username),
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTag inserts a tag whose color and slug derive from its name
func CreateTestTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))

	tag := &models.Tag{
		Name:  name,
		Color: fmt.Sprintf("#%06X", h.Sum32()&0xffffff),
		Slug:  name,
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// Line is an ingredient and amount for CreateTestRecipe
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateTestRecipe inserts a recipe directly, bypassing validation
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines ...Line) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix everything and cook.",
		Image:       "recipes/images/test.png",
		CookingTime: 10,
	}
	for i, l := range lines {
		recipe.Lines = append(recipe.Lines, models.RecipeLine{
			IngredientID: l.Ingredient.ID,
			Amount:       l.Amount,
			Position:     i,
		})
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}
