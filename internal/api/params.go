package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type pagination struct {
	Page  int
	Limit int
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePagination reads page and limit query parameters
func parsePagination(c *gin.Context) (pagination, error) {
	p := pagination{Page: 1, Limit: defaultPageSize}
	fields := map[string][]string{}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["page"] = []string{"must be a positive integer"}
		} else {
			p.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["limit"] = []string{"must be a positive integer"}
		} else if n > maxPageSize {
			p.Limit = maxPageSize
		} else {
			p.Limit = n
		}
	}

	if len(fields) > 0 {
		return p, apperr.Validation(fields)
	}
	return p, nil
}

// pageResponse wraps results with the total count and neighbour page links
func pageResponse(c *gin.Context, p pagination, count int64, results any) types.PageResponse {
	resp := types.PageResponse{Count: count, Results: results}
	if int64(p.Page*p.Limit) < count {
		next := pageURL(c, p.Page+1)
		resp.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		resp.Previous = &prev
	}
	return resp
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// uuidParam parses a path parameter; malformed IDs cannot match anything
func uuidParam(c *gin.Context, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound("%s %s not found", what, c.Param(name))
	}
	return id, nil
}

func uintParam(c *gin.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.NotFound("%s %s not found", what, c.Param(name))
	}
	return uint(id), nil
}

// intQuery parses an optional integer query parameter
func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation(map[string][]string{name: {"must be an integer"}})
	}
	return n, nil
}

func boolQuery(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}

// currentUser returns the authenticated user's ID; routes using it sit behind AuthMiddleware
func currentUser(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, apperr.Unauthorized("authentication required")
	}
	return id, nil
}

// viewer returns the caller's ID when a token was sent
func viewer(c *gin.Context) *uuid.UUID {
	id, ok := middleware.UserID(c)
	if !ok {
		return nil
	}
	return &id
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation(map[string][]string{"body": {fmt.Sprintf("malformed JSON: %v", err)}})
	}
	return nil
}
