package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recipeImageFolder = "recipes/images"

// RecipeFilter narrows a recipe listing. ViewerID is zero for anonymous callers.
type RecipeFilter struct {
	ViewerID uint
	AuthorID uint
	// Tags matches recipes carrying any of the slugs.
	Tags []string
	// IsFavorited and IsInShoppingCart are nil when not requested. False
	// excludes the viewer's entries.
	IsFavorited      *bool
	IsInShoppingCart *bool
	Page             int
	Limit            int
}

// RecipeService owns recipes and their ingredient lines.
type RecipeService struct {
	db        *gorm.DB
	catalog   *CatalogService
	validator *RecipeValidator
	images    ImageStore
	favorites *ToggleSet[models.Favorite]
	cart      *ToggleSet[models.Cart]
}

func NewRecipeService(db *gorm.DB, catalog *CatalogService, images ImageStore) *RecipeService {
	return &RecipeService{
		db:        db,
		catalog:   catalog,
		validator: NewRecipeValidator(catalog),
		images:    images,
		favorites: NewFavorites(db),
		cart:      NewCart(db),
	}
}

func toLines(recipeID uint, reqs []types.IngredientLineRequest) []models.IngredientAmount {
	lines := make([]models.IngredientAmount, len(reqs))
	for i, r := range reqs {
		lines[i] = models.IngredientAmount{RecipeID: recipeID, IngredientID: r.ID, Amount: r.Amount}
	}
	return lines
}

// validate runs every check that does not need the write transaction and
// returns the tags referenced by the request.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest) ([]models.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := s.validator.CheckLines(ctx, req.Ingredients, req.CookingTime); err != nil {
		return nil, err
	}
	tags, err := s.catalog.TagsByIDs(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CheckTags(req.Tags, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Create validates and stores a new recipe with its ingredient lines and tags
// in one transaction.
func (s *RecipeService) Create(ctx context.Context, author *models.User, req *types.RecipeRequest) (*models.Recipe, error) {
	tags, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Image == "" {
		return nil, apperr.Validation(apperr.CodeImageRequired, "image", "an image is required")
	}
	img, err := DecodeDataURL("image", req.Image)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.Save(ctx, recipeImageFolder, img)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	recipe := models.Recipe{
		Name:              req.Name,
		AuthorID:          author.ID,
		Image:             imageURL,
		Text:              req.Text,
		CookingTime:       req.CookingTime,
		IngredientAmounts: toLines(0, req.Ingredients),
		Tags:              tags,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validator.CheckName(tx, author.ID, recipe.Name, 0); err != nil {
			return err
		}
		if err := tx.Omit("Tags.*").Create(&recipe).Error; err != nil {
			if isUniqueViolation(err) {
				return duplicateName()
			}
			return err
		}
		return nil
	})
	if err != nil {
		discardImage(ctx, s.images, imageURL)
		return nil, wrapInternal(err)
	}

	logging.L.Info("recipe created", zap.Uint("recipe_id", recipe.ID), zap.Uint("author_id", author.ID))
	return s.Get(ctx, recipe.ID)
}

// Update replaces a recipe's attributes, ingredient lines and tags. Existing lines
// are deleted and the submitted set inserted, all inside one transaction.
func (s *RecipeService) Update(ctx context.Context, actor *models.User, id uint, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(recipe.AuthorID) {
		return nil, apperr.Forbidden("only the author can change this recipe")
	}

	tags, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	var newImage string
	if req.Image != "" {
		img, err := DecodeDataURL("image", req.Image)
		if err != nil {
			return nil, err
		}
		if newImage, err = s.images.Save(ctx, recipeImageFolder, img); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	oldImage := recipe.Image
	updates := map[string]interface{}{
		"name":         req.Name,
		"text":         req.Text,
		"cooking_time": req.CookingTime,
	}
	if newImage != "" {
		updates["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validator.CheckName(tx, recipe.AuthorID, req.Name, recipe.ID); err != nil {
			return err
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return duplicateName()
			}
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		lines := toLines(recipe.ID, req.Ingredients)
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return tx.Model(recipe).Association("Tags").Clear()
		}
		return tx.Model(recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		discardImage(ctx, s.images, newImage)
		return nil, wrapInternal(err)
	}

	if newImage != "" {
		discardImage(ctx, s.images, oldImage)
	}
	logging.L.Info("recipe updated", zap.Uint("recipe_id", recipe.ID), zap.Uint("actor_id", actor.ID))
	return s.Get(ctx, recipe.ID)
}

// Delete removes a recipe together with its lines, tag links, favorites and
// cart entries.
func (s *RecipeService) Delete(ctx context.Context, actor *models.User, id uint) error {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(recipe.AuthorID) {
		return apperr.Forbidden("only the author can delete this recipe")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.IngredientAmount{}, &models.Favorite{}, &models.Cart{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}

	discardImage(ctx, s.images, recipe.Image)
	logging.L.Info("recipe deleted", zap.Uint("recipe_id", recipe.ID), zap.Uint("actor_id", actor.ID))
	return nil
}

func (s *RecipeService) find(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, apperr.Internal(err)
	}
	return &recipe, nil
}

func (s *RecipeService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Author").
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("IngredientAmounts.Ingredient").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") })
}

// Get loads a recipe with author, ingredient lines and tags.
func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.preloaded(ctx).First(&recipe, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, apperr.Internal(err)
	}
	return &recipe, nil
}

// Exists reports whether a recipe with id is stored.
func (s *RecipeService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperr.Internal(err)
	}
	return count > 0, nil
}

// List returns one page of recipes, newest first, and the total match count.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	if (f.IsFavorited != nil || f.IsInShoppingCart != nil) && f.ViewerID == 0 {
		return []models.Recipe{}, 0, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.Tags) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.Tags)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	q = membership(q, f.IsFavorited, s.favorites.TargetsOf(f.ViewerID))
	q = membership(q, f.IsInShoppingCart, s.cart.TargetsOf(f.ViewerID))

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	offset, limit := pageBounds(f.Page, f.Limit)
	var ids []uint
	if err := q.Order("recipes.created_at DESC, recipes.id DESC").Offset(offset).Limit(limit).Pluck("recipes.id", &ids).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if len(ids) == 0 {
		return []models.Recipe{}, total, nil
	}

	var recipes []models.Recipe
	if err := s.preloaded(ctx).Where("id IN ?", ids).Order("created_at DESC, id DESC").Find(&recipes).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return recipes, total, nil
}

// membership keeps or drops recipes found in a viewer's collection.
func membership(q *gorm.DB, want *bool, targets *gorm.DB) *gorm.DB {
	switch {
	case want == nil:
		return q
	case *want:
		return q.Where("recipes.id IN (?)", targets)
	default:
		return q.Where("recipes.id NOT IN (?)", targets)
	}
}

func wrapInternal(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(err)
}
