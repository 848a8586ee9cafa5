package database_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunMigrationsSQLite(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	// Running again on an up-to-date schema is a no-op
	require.NoError(t, database.RunMigrations(db))

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_lines", "favorites", "cart_entries", "subscriptions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	require.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestPostgresSchemaConstraints(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	ctx := context.Background()

	require.NoError(t, database.HealthCheck(ctx, db))

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "bread", testhelpers.Line{Ingredient: flour, Amount: 500})

	t.Run("duplicate favorite is a duplicated key", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Favorite{UserID: reader.ID, RecipeID: recipe.ID}).Error)
		err := db.Create(&models.Favorite{UserID: reader.ID, RecipeID: recipe.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("duplicate cart entry is a duplicated key", func(t *testing.T) {
		require.NoError(t, db.Create(&models.CartEntry{UserID: reader.ID, RecipeID: recipe.ID}).Error)
		err := db.Create(&models.CartEntry{UserID: reader.ID, RecipeID: recipe.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("duplicate subscription is a duplicated key", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Subscription{UserID: reader.ID, AuthorID: author.ID}).Error)
		err := db.Create(&models.Subscription{UserID: reader.ID, AuthorID: author.ID}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("self subscription is rejected", func(t *testing.T) {
		err := db.Create(&models.Subscription{UserID: author.ID, AuthorID: author.ID}).Error
		assert.Error(t, err)
	})

	t.Run("cooking time must be positive", func(t *testing.T) {
		err := db.Create(&models.Recipe{ID: uuid.New(), AuthorID: author.ID, Name: "raw", Text: "-", Image: "x", CookingTime: 0}).Error
		assert.Error(t, err)
	})

	t.Run("cooking time fits a smallint", func(t *testing.T) {
		err := db.Create(&models.Recipe{ID: uuid.New(), AuthorID: author.ID, Name: "slow", Text: "-", Image: "x", CookingTime: 32768}).Error
		assert.Error(t, err)
	})

	t.Run("ingredient in use cannot be deleted", func(t *testing.T) {
		err := db.Delete(flour).Error
		assert.Error(t, err)
	})

	t.Run("deleting a recipe cascades", func(t *testing.T) {
		require.NoError(t, db.Delete(recipe).Error)

		var lines, favorites int64
		require.NoError(t, db.Model(&models.RecipeLine{}).Where("recipe_id = ?", recipe.ID).Count(&lines).Error)
		require.NoError(t, db.Model(&models.Favorite{}).Where("recipe_id = ?", recipe.ID).Count(&favorites).Error)
		assert.Zero(t, lines)
		assert.Zero(t, favorites)
	})
}
