package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

const ShoppingListFilename = "shopping_list.txt"

// LineAmount is one recipe line reached through the cart
type LineAmount struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingItem is an aggregated (name, unit) total
type ShoppingItem struct {
	Name  string
	Unit  string
	Total int
}

// Aggregate groups lines by (name, unit) and sums their amounts. Items are
// ordered by name ignoring case, then unit.
func Aggregate(lines []LineAmount) []ShoppingItem {
	type key struct{ name, unit string }

	index := make(map[key]int, len(lines))
	items := make([]ShoppingItem, 0, len(lines))
	for _, l := range lines {
		k := key{l.Name, l.Unit}
		if i, ok := index[k]; ok {
			items[i].Total += l.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, ShoppingItem{Name: l.Name, Unit: l.Unit, Total: l.Amount})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// RenderShoppingList formats items as the plain text download
func RenderShoppingList(items []ShoppingItem) []byte {
	var buf bytes.Buffer
	buf.WriteString("Shopping list\n\n")
	for _, item := range items {
		fmt.Fprintf(&buf, "%s (%s) - %d\n", item.Name, item.Unit, item.Total)
	}
	return buf.Bytes()
}

// ShoppingListService builds the consolidated shopping list of a user's cart
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build aggregates every ingredient of every recipe in the user's cart.
// An empty cart is an apperr.EmptyCart error.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	db := s.db.WithContext(ctx)

	var entries int64
	if err := db.Model(&models.CartEntry{}).Where("user_id = ?", userID).Count(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to count cart entries: %w", err)
	}
	if entries == 0 {
		return nil, apperr.EmptyCart()
	}

	var lines []LineAmount
	err := db.Table("cart_entries").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_lines.amount AS amount").
		Joins("JOIN recipe_lines ON recipe_lines.recipe_id = cart_entries.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_lines.ingredient_id").
		Where("cart_entries.user_id = ?", userID).
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart ingredients: %w", err)
	}

	return Aggregate(lines), nil
}

// Export builds and renders the shopping list
func (s *ShoppingListService) Export(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	items, err := s.Build(ctx, userID)
	if err != nil {
		result := "error"
		if apperr.Is(err, apperr.KindEmptyCart) {
			result = "empty"
		}
		metrics.ShoppingListExports.WithLabelValues(result).Inc()
		return nil, err
	}

	metrics.ShoppingListExports.WithLabelValues("ok").Inc()
	metrics.ShoppingListItems.Observe(float64(len(items)))
	logging.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Int("items", len(items)).
		Msg("shopping list exported")

	return RenderShoppingList(items), nil
}
