package models

import (
	"time"
)

// Follow is a directed subscription of a user to an author.
type Follow struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_follow_user_author"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_follow_user_author;index"`
	User      User `gorm:"constraint:OnDelete:CASCADE"`
	Author    User `gorm:"constraint:OnDelete:CASCADE"`
}

type Favorite struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint   `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
}

// Cart is a recipe selected for the shopping list.
type Cart struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint   `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint   `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    Recipe `gorm:"constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string {
	return "shopping_carts"
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&IngredientAmount{},
		&Follow{},
		&Favorite{},
		&Cart{},
	}
}
