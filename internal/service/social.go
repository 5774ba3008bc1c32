package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// SocialService manages follow edges between users.
type SocialService struct {
	db      *gorm.DB
	follows *ToggleSet[models.Follow]
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db, follows: NewFollows(db)}
}

// Follow subscribes userID to authorID and returns the author's subscription card.
func (s *SocialService) Follow(ctx context.Context, userID, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	if _, err := s.follows.Add(ctx, userID, authorID); err != nil {
		return nil, err
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	cards, err := s.cards(ctx, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *SocialService) Unfollow(ctx context.Context, userID, authorID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count == 0 {
		return apperr.NotFound("user")
	}
	return s.follows.Remove(ctx, userID, authorID)
}

func (s *SocialService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.follows.Contains(ctx, userID, authorID)
}

// Subscriptions lists the authors userID follows, each with up to recipesLimit
// of their newest recipes (all when recipesLimit is not positive) and a total
// recipe count.
func (s *SocialService) Subscriptions(ctx context.Context, userID uint, page, limit, recipesLimit int) (*types.Page[types.SubscriptionResponse], error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Where("users.id IN (?)", s.follows.TargetsOf(userID)).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	offset, limit := pageBounds(page, limit)
	var authors []models.User
	if err := q.Order("users.username ASC").Offset(offset).Limit(limit).Find(&authors).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	cards, err := s.cards(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &types.Page[types.SubscriptionResponse]{Count: total, Results: cards}, nil
}

// cards renders followed authors. Every author in the list is followed by the
// caller, so is_subscribed is always true.
func (s *SocialService) cards(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	cards := make([]types.SubscriptionResponse, len(authors))
	if len(authors) == 0 {
		return cards, nil
	}

	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	var counts []struct {
		AuthorID uint
		Total    int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	totals := make(map[uint]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	for i := range authors {
		q := s.db.WithContext(ctx).Where("author_id = ?", authors[i].ID).Order("created_at DESC, id DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, apperr.Internal(err)
		}

		short := make([]types.ShortRecipeResponse, len(recipes))
		for j := range recipes {
			short[j] = ShortRecipe(&recipes[j])
		}
		cards[i] = types.SubscriptionResponse{
			UserResponse: UserResponse(&authors[i], true),
			Recipes:      short,
			RecipesCount: totals[authors[i].ID],
		}
	}
	return cards, nil
}
