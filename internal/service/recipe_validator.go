package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// IngredientLookup resolves which ingredient ids exist in the catalog.
type IngredientLookup interface {
	ExistingIngredientIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
}

// RecipeValidator checks a recipe write before anything is persisted.
// Rules run in a fixed order and the first failure is returned.
type RecipeValidator struct {
	ingredients IngredientLookup
}

func NewRecipeValidator(ingredients IngredientLookup) *RecipeValidator {
	return &RecipeValidator{ingredients: ingredients}
}

// CheckLines validates the ingredient lines and cooking time.
func (v *RecipeValidator) CheckLines(ctx context.Context, lines []types.IngredientLineRequest, cookingTime int) error {
	if len(lines) == 0 {
		return apperr.Validation(apperr.CodeEmptyIngredients, "ingredients", "at least one ingredient is required")
	}

	seen := make(map[uint]bool, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if seen[line.ID] {
			return apperr.ValidationRef(apperr.CodeDuplicateIngredient, "ingredients", line.ID,
				fmt.Sprintf("ingredient %d is listed more than once", line.ID))
		}
		seen[line.ID] = true
		ids = append(ids, line.ID)
	}

	known, err := v.ingredients.ExistingIngredientIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !known[line.ID] {
			return apperr.ValidationRef(apperr.CodeUnknownIngredient, "ingredients", line.ID,
				fmt.Sprintf("ingredient %d does not exist", line.ID))
		}
	}

	for _, line := range lines {
		if line.Amount < models.MinIngredientAmount || line.Amount > models.MaxIngredientAmount {
			return apperr.ValidationRef(apperr.CodeAmountOutOfRange, "ingredients", line.ID,
				fmt.Sprintf("amount for ingredient %d must be between %d and %d",
					line.ID, models.MinIngredientAmount, models.MaxIngredientAmount))
		}
	}

	if cookingTime < models.MinCookingTime || cookingTime > models.MaxCookingTime {
		return apperr.Validation(apperr.CodeCookingTimeOutOfRange, "cooking_time",
			fmt.Sprintf("cooking time must be between %d and %d", models.MinCookingTime, models.MaxCookingTime))
	}

	return nil
}

// CheckTags rejects repeated tag ids and ids missing from tags, which holds the
// tags loaded for ids.
func (v *RecipeValidator) CheckTags(ids []uint, tags []models.Tag) error {
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperr.ValidationRef(apperr.CodeDuplicateTag, "tags", id, fmt.Sprintf("tag %d is listed more than once", id))
		}
		seen[id] = true
	}

	loaded := make(map[uint]bool, len(tags))
	for _, t := range tags {
		loaded[t.ID] = true
	}
	for _, id := range ids {
		if !loaded[id] {
			return apperr.ValidationRef(apperr.CodeUnknownTag, "tags", id, fmt.Sprintf("tag %d does not exist", id))
		}
	}
	return nil
}

// CheckName rejects a name the author already uses on another recipe.
// excludeID is the recipe being updated, or zero on create.
func (v *RecipeValidator) CheckName(tx *gorm.DB, authorID uint, name string, excludeID uint) error {
	q := tx.Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count > 0 {
		return duplicateName()
	}
	return nil
}

func duplicateName() error {
	return apperr.Validation(apperr.CodeDuplicateRecipeName, "name", "you already have a recipe with this name")
}
