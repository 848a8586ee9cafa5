package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	router.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperr.Conflict("recipe is already in favorites"))
	})
	router.GET("/invalid", func(c *gin.Context) {
		_ = c.Error(apperr.Validation(map[string][]string{"cooking_time": {"must be at least 1"}}))
	})
	router.GET("/empty", func(c *gin.Context) {
		_ = c.Error(apperr.EmptyCart())
	})
	router.GET("/throttled", func(c *gin.Context) {
		middleware.RenderError(c, apperr.RateLimited("rate limit of %d requests per %v exceeded", 2, "1m0s"))
	})
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused"))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tests := []struct {
		path   string
		status int
		kind   apperr.Kind
		fields map[string][]string
	}{
		{path: "/conflict", status: http.StatusConflict, kind: apperr.KindConflict},
		{path: "/invalid", status: http.StatusBadRequest, kind: apperr.KindValidation, fields: map[string][]string{"cooking_time": {"must be at least 1"}}},
		{path: "/empty", status: http.StatusBadRequest, kind: apperr.KindEmptyCart},
		{path: "/throttled", status: http.StatusTooManyRequests, kind: apperr.KindRateLimited},
		{path: "/boom", status: http.StatusInternalServerError, kind: apperr.KindInternal},
		{path: "/panic", status: http.StatusInternalServerError, kind: apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)

			var resp middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Error.Kind)
			assert.NotEmpty(t, resp.Error.Message)
			assert.Equal(t, tt.fields, resp.Error.Fields)
		})
	}

	t.Run("success passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("internal details are not leaked", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}
