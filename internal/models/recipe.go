package models

import (
	"time"
)

const (
	MinCookingTime      = 1
	MaxCookingTime      = 32000
	MinIngredientAmount = 1
	MaxIngredientAmount = 32000
	MaxRecipeNameLength = 256
)

type Recipe struct {
	ID                uint               `gorm:"primarykey" json:"id"`
	CreatedAt         time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Name              string             `gorm:"size:256;not null;uniqueIndex:idx_recipe_author_name" json:"name"`
	AuthorID          uint               `gorm:"not null;uniqueIndex:idx_recipe_author_name" json:"author_id"`
	Author            User               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Image             string             `gorm:"size:512;not null" json:"image"`
	Text              string             `gorm:"type:text;not null" json:"text"`
	CookingTime       int                `gorm:"not null" json:"cooking_time"`
	IngredientAmounts []IngredientAmount `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags              []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
}

// IngredientAmount is one ingredient line of a recipe.
type IngredientAmount struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_amount_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_amount_recipe_ingredient" json:"id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null" json:"amount"`
}
