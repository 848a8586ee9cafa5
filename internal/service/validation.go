package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// RecipeValidator checks recipe write requests. Every violation is
// collected into one apperr.Validation keyed by JSON field name.
type RecipeValidator struct {
	validate *validator.Validate
}

func NewRecipeValidator() *RecipeValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RecipeValidator{validate: v}
}

type fieldErrors map[string][]string

func (f fieldErrors) add(field, format string, args ...any) {
	f[field] = append(f[field], fmt.Sprintf(format, args...))
}

// Validate runs the struct rules and then the catalog checks against db.
// requireImage is set on create.
func (v *RecipeValidator) Validate(ctx context.Context, db *gorm.DB, req *types.RecipeRequest, requireImage bool) error {
	fields := fieldErrors{}

	if err := v.validate.StructCtx(ctx, req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate recipe: %w", err)
		}
		for _, fe := range verrs {
			fields.add(topLevelField(fe.Namespace()), "%s", messageFor(fe))
		}
	}

	if requireImage && strings.TrimSpace(req.Image) == "" {
		fields.add("image", "this field is required")
	}

	if err := checkTags(ctx, db, req.Tags, fields); err != nil {
		return err
	}
	if err := checkIngredients(ctx, db, req.Ingredients, fields); err != nil {
		return err
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func checkTags(ctx context.Context, db *gorm.DB, ids []uint, fields fieldErrors) error {
	unique := dedupe(ids, func(id uint) { fields.add("tags", "duplicate tag %d", id) })
	if len(unique) == 0 {
		return nil
	}

	var found []uint
	if err := db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", unique).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to look up tags: %w", err)
	}
	for _, id := range missing(unique, found) {
		fields.add("tags", "tag %d does not exist", id)
	}
	return nil
}

func checkIngredients(ctx context.Context, db *gorm.DB, lines []types.IngredientAmount, fields fieldErrors) error {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if l.ID != 0 {
			ids = append(ids, l.ID)
		}
	}
	unique := dedupe(ids, func(id uint) { fields.add("ingredients", "duplicate ingredient %d", id) })
	if len(unique) == 0 {
		return nil
	}

	var found []uint
	if err := db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", unique).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to look up ingredients: %w", err)
	}
	for _, id := range missing(unique, found) {
		fields.add("ingredients", "ingredient %d does not exist", id)
	}
	return nil
}

// dedupe returns ids in first-seen order, reporting each repeated id once
func dedupe(ids []uint, onDuplicate func(uint)) []uint {
	seen := make(map[uint]int, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		seen[id]++
		switch seen[id] {
		case 1:
			out = append(out, id)
		case 2:
			onDuplicate(id)
		}
	}
	return out
}

func missing(want, found []uint) []uint {
	have := make(map[uint]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var out []uint
	for _, id := range want {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}

// topLevelField maps "RecipeRequest.ingredients[0].amount" to "ingredients"
func topLevelField(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	if i := strings.IndexAny(rest, ".["); i >= 0 {
		return rest[:i]
	}
	return rest
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "id" {
			return "ingredient id is required"
		}
		return "this field is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Int:
			if strings.Contains(fe.Namespace(), "[") {
				return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
			}
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
