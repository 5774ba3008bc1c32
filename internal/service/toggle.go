package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// ToggleSet is a set of unique (owner, target) pairs stored in one table.
// Uniqueness is enforced by the table's unique index, so concurrent adds of the
// same pair yield exactly one success.
type ToggleSet[M any] struct {
	db           *gorm.DB
	label        string
	targetName   string
	targetTable  string
	targetColumn string
	allowSelf    bool
	newRow       func(owner, target uint) *M
}

func NewFavorites(db *gorm.DB) *ToggleSet[models.Favorite] {
	return &ToggleSet[models.Favorite]{
		db:           db,
		label:        "favorites",
		targetName:   "recipe",
		targetTable:  "recipes",
		targetColumn: "recipe_id",
		allowSelf:    true,
		newRow: func(owner, target uint) *models.Favorite {
			return &models.Favorite{UserID: owner, RecipeID: target}
		},
	}
}

func NewCart(db *gorm.DB) *ToggleSet[models.Cart] {
	return &ToggleSet[models.Cart]{
		db:           db,
		label:        "shopping cart",
		targetName:   "recipe",
		targetTable:  "recipes",
		targetColumn: "recipe_id",
		allowSelf:    true,
		newRow: func(owner, target uint) *models.Cart {
			return &models.Cart{UserID: owner, RecipeID: target}
		},
	}
}

func NewFollows(db *gorm.DB) *ToggleSet[models.Follow] {
	return &ToggleSet[models.Follow]{
		db:           db,
		label:        "subscriptions",
		targetName:   "user",
		targetTable:  "users",
		targetColumn: "author_id",
		allowSelf:    false,
		newRow: func(owner, target uint) *models.Follow {
			return &models.Follow{UserID: owner, AuthorID: target}
		},
	}
}

// Add inserts the pair. It fails with SelfReference for a disallowed self pair,
// NotFound when the target does not exist and AlreadyExists when the pair is present.
func (s *ToggleSet[M]) Add(ctx context.Context, owner, target uint) (*M, error) {
	if !s.allowSelf && owner == target {
		return nil, apperr.SelfReference(fmt.Sprintf("cannot add yourself to %s", s.label))
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Table(s.targetTable).Where("id = ?", target).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count == 0 {
		return nil, apperr.NotFound(s.targetName)
	}

	row := s.newRow(owner, target)
	if err := db.Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.AlreadyExists(fmt.Sprintf("%s is already in %s", s.targetName, s.label))
		}
		return nil, apperr.Internal(err)
	}
	return row, nil
}

// Remove deletes the pair, failing with NotFound when it is absent.
func (s *ToggleSet[M]) Remove(ctx context.Context, owner, target uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND "+s.targetColumn+" = ?", owner, target).
		Delete(new(M))
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(fmt.Sprintf("%s in %s", s.targetName, s.label))
	}
	return nil
}

func (s *ToggleSet[M]) Contains(ctx context.Context, owner, target uint) (bool, error) {
	if owner == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(new(M)).
		Where("user_id = ? AND "+s.targetColumn+" = ?", owner, target).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal(err)
	}
	return count > 0, nil
}

// Members reports which of targets are paired with owner.
func (s *ToggleSet[M]) Members(ctx context.Context, owner uint, targets []uint) (map[uint]bool, error) {
	members := make(map[uint]bool)
	if owner == 0 || len(targets) == 0 {
		return members, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(new(M)).
		Where("user_id = ? AND "+s.targetColumn+" IN ?", owner, targets).
		Pluck(s.targetColumn, &ids).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}

// TargetsOf returns a subquery selecting every target paired with owner.
func (s *ToggleSet[M]) TargetsOf(owner uint) *gorm.DB {
	return s.db.Model(new(M)).Select(s.targetColumn).Where("user_id = ?", owner)
}
