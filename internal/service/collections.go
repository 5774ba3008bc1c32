package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// CollectionService manages a user's favorites and shopping cart.
type CollectionService struct {
	favorites *ToggleSet[models.Favorite]
	cart      *ToggleSet[models.Cart]
	recipes   *RecipeService
}

func NewCollectionService(db *gorm.DB, recipes *RecipeService) *CollectionService {
	return &CollectionService{
		favorites: NewFavorites(db),
		cart:      NewCart(db),
		recipes:   recipes,
	}
}

func (s *CollectionService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	if _, err := s.favorites.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.find(ctx, recipeID)
}

func (s *CollectionService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.favorites.Remove(ctx, userID, recipeID)
}

func (s *CollectionService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	if _, err := s.cart.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.find(ctx, recipeID)
}

func (s *CollectionService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.cart.Remove(ctx, userID, recipeID)
}

// requireRecipe distinguishes a missing recipe from a missing pair on remove.
func (s *CollectionService) requireRecipe(ctx context.Context, recipeID uint) error {
	_, err := s.recipes.find(ctx, recipeID)
	return err
}
