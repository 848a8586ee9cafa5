package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Kind    apperr.Kind         `json:"kind"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// ErrorResponse wraps ErrorBody under the "error" key
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorHandler renders errors attached with c.Error and recovers panics.
// Handlers report failures with c.Error(err) and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", rec).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
						Kind:    apperr.KindInternal,
						Message: "internal server error",
					}})
				}
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RenderError(c, c.Errors.Last().Err)
	}
}

// RenderError writes err as a JSON error response and aborts the chain
func RenderError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Kind:    apperr.KindInternal,
			Message: "internal server error",
		}})
		return
	}

	c.AbortWithStatusJSON(e.Status(), ErrorResponse{Error: ErrorBody{
		Kind:    e.Kind,
		Message: e.Message,
		Fields:  e.Fields,
	}})
}
