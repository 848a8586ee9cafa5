package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("recipe %d not found", 1), http.StatusNotFound},
		{Conflict("already subscribed"), http.StatusConflict},
		{Validation(map[string][]string{"cooking_time": {"must be at least 1"}}), http.StatusBadRequest},
		{Forbidden("not the author"), http.StatusForbidden},
		{Unauthorized("missing token"), http.StatusUnauthorized},
		{EmptyCart(), http.StatusBadRequest},
		{RateLimited("slow down"), http.StatusTooManyRequests},
		{&Error{Kind: KindInternal}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Kind)
	}
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("favorite: %w", Conflict("recipe already in favorites"))

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindConflict))

	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "recipe already in favorites", e.Message)
}
