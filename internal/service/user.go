package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const avatarFolder = "users/avatars"

type UserService struct {
	db     *gorm.DB
	images ImageStore
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

// List returns one page of users ordered by id and the total user count.
func (s *UserService) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	offset, limit := pageBounds(page, limit)
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

func (s *UserService) SetPassword(ctx context.Context, user *models.User, req *types.SetPasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Validation(apperr.CodeWrongPassword, "current_password", "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", string(hashed)).Error; err != nil {
		return apperr.Internal(err)
	}
	logging.L.Info("password changed", zap.Uint("user_id", user.ID))
	return nil
}

// SetAvatar stores a data URL image as the user's avatar, replacing any previous one.
func (s *UserService) SetAvatar(ctx context.Context, user *models.User, req *types.AvatarRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	img, err := DecodeDataURL("avatar", req.Avatar)
	if err != nil {
		return "", err
	}
	url, err := s.images.Save(ctx, avatarFolder, img)
	if err != nil {
		return "", apperr.Internal(err)
	}

	old := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", url).Error; err != nil {
		discardImage(ctx, s.images, url)
		return "", apperr.Internal(err)
	}
	discardImage(ctx, s.images, old)
	return url, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, user *models.User) error {
	if user.Avatar == "" {
		return nil
	}
	old := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return apperr.Internal(err)
	}
	discardImage(ctx, s.images, old)
	return nil
}
