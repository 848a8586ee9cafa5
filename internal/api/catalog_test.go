package api_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")
	testhelpers.CreateTestIngredient(t, env.db, "egg", "pc")

	t.Run("search", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/ingredients?name=FLO", nil, "")
		expectStatus(t, w, http.StatusOK)

		var got []types.IngredientResponse
		decode(t, w, &got)
		require.Len(t, got, 1)
		assert.Equal(t, "flour", got[0].Name)
		assert.Equal(t, "g", got[0].MeasurementUnit)
	})

	t.Run("unfiltered", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/ingredients", nil, "")
		expectStatus(t, w, http.StatusOK)

		var got []types.IngredientResponse
		decode(t, w, &got)
		assert.Len(t, got, 2)
	})

	t.Run("detail", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/ingredients/"+strconv.Itoa(int(flour.ID)), nil, "")
		expectStatus(t, w, http.StatusOK)
	})

	t.Run("not found", func(t *testing.T) {
		for _, path := range []string{"/api/ingredients/999", "/api/ingredients/abc"} {
			w := env.do(http.MethodGet, path, nil, "")
			expectStatus(t, w, http.StatusNotFound)
			assert.Equal(t, "not_found", errorKind(t, w))
		}
	})
}

func TestTagEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	dinner := testhelpers.CreateTestTag(t, env.db, "dinner")
	testhelpers.CreateTestTag(t, env.db, "breakfast")

	w := env.do(http.MethodGet, "/api/tags", nil, "")
	expectStatus(t, w, http.StatusOK)

	var tags []types.TagResponse
	decode(t, w, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)

	w = env.do(http.MethodGet, "/api/tags/"+strconv.Itoa(int(dinner.ID)), nil, "")
	expectStatus(t, w, http.StatusOK)

	var tag types.TagResponse
	decode(t, w, &tag)
	assert.Equal(t, dinner.Color, tag.Color)
}

func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/health", nil, "")
	expectStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
