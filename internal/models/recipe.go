package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	AuthorID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      User         `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string       `gorm:"size:200;not null" json:"name"`
	Text        string       `gorm:"type:text;not null" json:"text"`
	Image       string       `gorm:"size:255;not null" json:"image"`
	CookingTime int          `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1" json:"cooking_time"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Lines       []RecipeLine `gorm:"constraint:OnDelete:CASCADE" json:"lines"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeLine is one ingredient-amount pair attached to a recipe
type RecipeLine struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_lines_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_lines_recipe_ingredient;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:RESTRICT" json:"ingredient"`
	Amount       int        `gorm:"not null;check:chk_recipe_lines_amount,amount > 0" json:"amount"`
	Position     int        `gorm:"not null;default:0" json:"position"`
}
