package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMembershipService_Favorites(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	svc := service.NewMembershipService(db)

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "Soup")

	countFavorites := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", reader.ID, recipe.ID).Count(&n).Error)
		return n
	}

	t.Run("remove before add is not found", func(t *testing.T) {
		err := svc.RemoveFavorite(ctx, reader.ID, recipe.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("add returns the recipe", func(t *testing.T) {
		got, err := svc.AddFavorite(ctx, reader.ID, recipe.ID)
		require.NoError(t, err)
		assert.Equal(t, recipe.ID, got.ID)
		assert.Equal(t, "Soup", got.Name)
		assert.Equal(t, int64(1), countFavorites())
	})

	t.Run("second add conflicts", func(t *testing.T) {
		_, err := svc.AddFavorite(ctx, reader.ID, recipe.ID)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		assert.Equal(t, int64(1), countFavorites())
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, svc.RemoveFavorite(ctx, reader.ID, recipe.ID))
		assert.Equal(t, int64(0), countFavorites())

		err := svc.RemoveFavorite(ctx, reader.ID, recipe.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := svc.AddFavorite(ctx, reader.ID, uuid.New())
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		err = svc.RemoveFavorite(ctx, reader.ID, uuid.New())
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestMembershipService_Cart(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	svc := service.NewMembershipService(db)

	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "Stew")

	_, err := svc.AddToCart(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, reader.ID, recipe.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// favorites and cart are independent sets
	_, err = svc.AddFavorite(ctx, reader.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromCart(ctx, reader.ID, recipe.ID))
	err = svc.RemoveFromCart(ctx, reader.ID, recipe.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var favorites int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&favorites).Error)
	assert.Equal(t, int64(1), favorites)
}

// insertBeforeCreate registers a one-shot create hook that writes a competing
// row into table inside the same transaction, just ahead of gorm's insert.
// This reproduces two requests passing the existence check together.
func insertBeforeCreate(t *testing.T, db *gorm.DB, table, columns string, args ...any) {
	t.Helper()
	name := "test:insert_before_" + table
	fired := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		query := fmt.Sprintf("INSERT INTO %s (%s, created_at) VALUES (?, ?, ?)", table, columns)
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(query, append(args, time.Now())...).Error; err != nil {
			_ = tx.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

func TestMembershipService_ConcurrentAddConflicts(t *testing.T) {
	tests := []struct {
		table string
		add   func(*service.MembershipService) func(context.Context, uuid.UUID, uuid.UUID) (*models.Recipe, error)
	}{
		{table: "favorites", add: func(s *service.MembershipService) func(context.Context, uuid.UUID, uuid.UUID) (*models.Recipe, error) {
			return s.AddFavorite
		}},
		{table: "cart_entries", add: func(s *service.MembershipService) func(context.Context, uuid.UUID, uuid.UUID) (*models.Recipe, error) {
			return s.AddToCart
		}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			db := testhelpers.SetupTestDatabase(t)
			ctx := context.Background()
			svc := service.NewMembershipService(db)

			author := testhelpers.CreateTestUser(t, db, "author")
			reader := testhelpers.CreateTestUser(t, db, "reader")
			recipe := testhelpers.CreateTestRecipe(t, db, author, "Soup")

			insertBeforeCreate(t, db, tt.table, "user_id, recipe_id", reader.ID, recipe.ID)

			_, err := tt.add(svc)(ctx, reader.ID, recipe.ID)
			assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

			var rows int64
			require.NoError(t, db.Table(tt.table).Count(&rows).Error)
			assert.Zero(t, rows)

			// the hook fired once; a retry goes through normally
			_, err = tt.add(svc)(ctx, reader.ID, recipe.ID)
			require.NoError(t, err)
		})
	}
}
