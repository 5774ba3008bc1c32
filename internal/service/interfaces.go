package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *types.LoginRequest) (*models.User, string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for account operations
type IUserService interface {
	Get(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	SetPassword(ctx context.Context, user *models.User, req *types.SetPasswordRequest) error
	SetAvatar(ctx context.Context, user *models.User, req *types.AvatarRequest) (string, error)
	DeleteAvatar(ctx context.Context, user *models.User) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, author *models.User, req *types.RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, actor *models.User, id uint, req *types.RecipeRequest) (*models.Recipe, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
	Get(ctx context.Context, id uint) (*models.Recipe, error)
	List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error)
}

var (
	_ IAuthService   = (*AuthService)(nil)
	_ IUserService   = (*UserService)(nil)
	_ IRecipeService = (*RecipeService)(nil)
	_ ImageStore     = (*S3ImageStore)(nil)
	_ ImageStore     = (*DiskImageStore)(nil)
)
