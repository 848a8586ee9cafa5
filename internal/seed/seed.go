// Package seed loads the starter catalog used in development.
package seed

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// Tags is the built-in tag catalog
var Tags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	{Name: "Dessert", Color: "#D2477F", Slug: "dessert"},
}

// Ingredients is the built-in ingredient catalog
var Ingredients = []models.Ingredient{
	{Name: "all-purpose flour", MeasurementUnit: "g"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "chicken breast", MeasurementUnit: "g"},
	{Name: "egg", MeasurementUnit: "pc"},
	{Name: "garlic", MeasurementUnit: "clove"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "olive oil", MeasurementUnit: "tbsp"},
	{Name: "onion", MeasurementUnit: "pc"},
	{Name: "rice", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "pinch"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "tomato", MeasurementUnit: "pc"},
}

// DemoUser is the account development tokens are issued for
var DemoUser = models.User{
	Email:     "demo@foodgram.local",
	Username:  "demo",
	FirstName: "Demo",
	LastName:  "Cook",
}

// Result counts the rows a run inserted
type Result struct {
	Tags        int
	Ingredients int
}

// Catalog inserts any missing tags and ingredients. Existing rows are left alone,
// so running it twice is a no-op.
func Catalog(ctx context.Context, db *gorm.DB) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range Tags {
			t := tag
			created := tx.Where(models.Tag{Slug: t.Slug}).Attrs(t).FirstOrCreate(&t)
			if created.Error != nil {
				return fmt.Errorf("failed to seed tag %s: %w", tag.Slug, created.Error)
			}
			res.Tags += int(created.RowsAffected)
		}

		for _, ingredient := range Ingredients {
			in := ingredient
			created := tx.Where(models.Ingredient{Name: in.Name, MeasurementUnit: in.MeasurementUnit}).FirstOrCreate(&in)
			if created.Error != nil {
				return fmt.Errorf("failed to seed ingredient %s: %w", ingredient.Name, created.Error)
			}
			res.Ingredients += int(created.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logging.Info().Int("tags", res.Tags).Int("ingredients", res.Ingredients).Msg("catalog seeded")
	return res, nil
}

// Demo returns the demo user, creating it on first use
func Demo(ctx context.Context, db *gorm.DB) (*models.User, error) {
	user := DemoUser
	if err := db.WithContext(ctx).Where(models.User{Username: user.Username}).Attrs(user).FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to seed demo user: %w", err)
	}
	return &user, nil
}
