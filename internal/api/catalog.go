package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientHandler struct {
	ingredients service.IIngredientService
}

func NewIngredientHandler(ingredients service.IIngredientService) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

// ListIngredients filters by ?name= and is not paginated
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	found, err := h.ingredients.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := make([]types.IngredientResponse, 0, len(found))
	for _, i := range found {
		resp = append(resp, types.NewIngredientResponse(i))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, err := uintParam(c, "id", "ingredient")
	if err != nil {
		_ = c.Error(err)
		return
	}

	ingredient, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewIngredientResponse(*ingredient))
}

type TagHandler struct {
	tags service.ITagService
}

func NewTagHandler(tags service.ITagService) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := make([]types.TagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, types.NewTagResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, err := uintParam(c, "id", "tag")
	if err != nil {
		_ = c.Error(err)
		return
	}

	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.NewTagResponse(*tag))
}
