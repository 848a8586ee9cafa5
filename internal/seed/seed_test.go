package seed_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsIdempotent(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	res, err := seed.Catalog(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Tags), res.Tags)
	assert.Equal(t, len(seed.Ingredients), res.Ingredients)

	res, err = seed.Catalog(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, res.Tags)
	assert.Zero(t, res.Ingredients)

	var tags, ingredients int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	assert.Equal(t, int64(len(seed.Tags)), tags)
	assert.Equal(t, int64(len(seed.Ingredients)), ingredients)
}

func TestCatalogKeepsExistingRows(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	egg := testhelpers.CreateTestIngredient(t, db, "egg", "pc")

	res, err := seed.Catalog(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Ingredients)-1, res.Ingredients)

	var found models.Ingredient
	require.NoError(t, db.Where("name = ? AND measurement_unit = ?", "egg", "pc").First(&found).Error)
	assert.Equal(t, egg.ID, found.ID)
}

func TestDemo(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	first, err := seed.Demo(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "demo", first.Username)

	second, err := seed.Demo(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
