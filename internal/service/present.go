package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// Presenter builds response bodies that depend on who is asking: favorite and
// cart flags on recipes and the subscription flag on authors.
type Presenter struct {
	favorites *ToggleSet[models.Favorite]
	cart      *ToggleSet[models.Cart]
	follows   *ToggleSet[models.Follow]
}

func NewPresenter(db *gorm.DB) *Presenter {
	return &Presenter{
		favorites: NewFavorites(db),
		cart:      NewCart(db),
		follows:   NewFollows(db),
	}
}

func UserResponse(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
		Avatar:       u.Avatar,
	}
}

func ShortRecipe(r *models.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func TagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

// Users renders users for viewer.
func (p *Presenter) Users(ctx context.Context, viewerID uint, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := p.follows.Members(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = UserResponse(&users[i], followed[users[i].ID])
	}
	return out, nil
}

// Recipes renders fully loaded recipes for viewer.
func (p *Presenter) Recipes(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited, err := p.favorites.Members(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.cart.Members(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := p.follows.Members(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]

		tags := make([]types.TagResponse, len(r.Tags))
		for j, t := range r.Tags {
			tags[j] = TagResponse(t)
		}
		lines := make([]types.IngredientLineResponse, len(r.IngredientAmounts))
		for j, a := range r.IngredientAmounts {
			lines[j] = types.IngredientLineResponse{
				ID:              a.IngredientID,
				Name:            a.Ingredient.Name,
				MeasurementUnit: a.Ingredient.MeasurementUnit,
				Amount:          a.Amount,
			}
		}

		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           UserResponse(&r.Author, followed[r.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

// Recipe renders a single recipe for viewer.
func (p *Presenter) Recipe(ctx context.Context, viewerID uint, recipe *models.Recipe) (*types.RecipeResponse, error) {
	out, err := p.Recipes(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}
