package service

import (
	"context"
	"strings"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService serves the shared ingredient and tag reference lists.
// Writes happen only through import tooling.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListIngredients returns ingredients whose name starts with prefix, ignoring case.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Order("name ASC, id ASC").Find(&ingredients).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("ingredient")
		}
		return nil, apperr.Internal(err)
	}
	return &ingredient, nil
}

// ExistingIngredientIDs returns the subset of ids present in the catalog.
func (s *CatalogService) ExistingIngredientIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []uint
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("tag")
		}
		return nil, apperr.Internal(err)
	}
	return &tag, nil
}

// TagsByIDs loads the given tags. Missing ids are simply absent from the result.
func (s *CatalogService) TagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tags, nil
}

// CreateTag adds a tag. Colors are stored lowercase so uniqueness ignores case.
func (s *CatalogService) CreateTag(ctx context.Context, req *types.TagRequest) (*models.Tag, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	tag := models.Tag{
		Name:  req.Name,
		Color: models.NormalizeColor(req.Color),
		Slug:  req.Slug,
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.AlreadyExists("tag with this name, color or slug already exists")
		}
		return nil, apperr.Internal(err)
	}
	return &tag, nil
}

// ImportIngredients inserts ingredients that are not yet in the catalog,
// matching on name and unit. It returns the number of rows created.
func (s *CatalogService) ImportIngredients(ctx context.Context, items []types.IngredientRequest) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			item := items[i]
			if err := validation.Struct(&item); err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", item.Name, item.MeasurementUnit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&models.Ingredient{Name: item.Name, MeasurementUnit: item.MeasurementUnit}).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, wrapInternal(err)
	}

	logging.L.Info("imported ingredients", zap.Int("created", created), zap.Int("total", len(items)))
	return created, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
