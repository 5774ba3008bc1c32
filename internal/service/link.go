package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/speps/go-hashids/v2"
)

// LinkService derives short shareable codes from recipe ids. Codes are a
// reversible hashids encoding, so nothing is stored.
type LinkService struct {
	hash    *hashids.HashID
	recipes *RecipeService
}

func NewLinkService(salt string, minLength int, recipes *RecipeService) (*LinkService, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("failed to configure short links: %w", err)
	}
	return &LinkService{hash: h, recipes: recipes}, nil
}

// Encode returns the short code for a recipe id.
func (s *LinkService) Encode(recipeID uint) (string, error) {
	return s.hash.EncodeInt64([]int64{int64(recipeID)})
}

// ShortLink returns the absolute short URL for an existing recipe.
func (s *LinkService) ShortLink(ctx context.Context, baseURL string, recipeID uint) (string, error) {
	ok, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.NotFound("recipe")
	}
	code, err := s.Encode(recipeID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return fmt.Sprintf("%s/s/%s", baseURL, code), nil
}

// Resolve maps a short code back to an existing recipe id.
func (s *LinkService) Resolve(ctx context.Context, code string) (uint, error) {
	ids, err := s.hash.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 || ids[0] <= 0 {
		return 0, apperr.NotFound("recipe")
	}
	id := uint(ids[0])

	ok, err := s.recipes.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperr.NotFound("recipe")
	}
	return id, nil
}
