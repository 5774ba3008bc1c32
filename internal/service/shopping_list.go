package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// ShoppingListService aggregates the ingredients of every recipe in a user's cart.
// The list is derived on each call and never stored.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts across the cart, grouped by ingredient name
// and measurement unit (not by ingredient id), ordered by name. An empty cart
// gives an empty list.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	items := []types.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_amounts.amount) AS amount").
		Joins("JOIN ingredient_amounts ON ingredient_amounts.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// Sorted here so the order does not depend on the database collation.
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

const shoppingLineFormat = "%s \u2014 %d %s\n"

// Render formats items as the downloadable text file, one line per item.
func (s *ShoppingListService) Render(items []types.ShoppingListItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, shoppingLineFormat, item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

// FileName returns the attachment name for username's list.
func (s *ShoppingListService) FileName(username string) string {
	return fmt.Sprintf("shopping_list_%s.txt", username)
}
