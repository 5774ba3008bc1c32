package types

// IngredientLineRequest is one ingredient line of a recipe write.
type IngredientLineRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update calls.
// Image is a data URL; it may be omitted on update.
type RecipeRequest struct {
	Ingredients []IngredientLineRequest `json:"ingredients"`
	Tags        []uint                  `json:"tags"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name" validate:"required,max=256"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

// TagRequest is used by catalog import tooling.
type TagRequest struct {
	Name  string `json:"name" validate:"required,max=16"`
	Color string `json:"color" validate:"required,hexcolor_short"`
	Slug  string `json:"slug" validate:"required,max=16,slug"`
}

// IngredientRequest is used by catalog import tooling.
type IngredientRequest struct {
	Name            string `json:"name" validate:"required,max=150"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=10"`
}
