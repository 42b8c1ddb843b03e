package repository

import (
	"context"
	"errors"

	"github.com/reviewloop/reviewloop/models"
	"gorm.io/gorm"
)

// MarketplaceRepositoryImpl implements MarketplaceRepository
type MarketplaceRepositoryImpl struct {
	*BaseRepository[models.Marketplace, models.MarketplaceFilter]
}

func NewMarketplaceRepository(db *gorm.DB) MarketplaceRepository {
	return &MarketplaceRepositoryImpl{BaseRepository: NewBaseRepository[models.Marketplace, models.MarketplaceFilter](db)}
}

func (r *MarketplaceRepositoryImpl) ByNaturalKey(ctx context.Context, naturalKey string) (*models.Marketplace, error) {
	filter := models.MarketplaceFilter{NaturalKey: &naturalKey}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindOrCreate returns the marketplace with the given natural key, inserting it
// when missing. The natural key's unique index backstops concurrent seeding.
func (r *MarketplaceRepositoryImpl) FindOrCreate(ctx context.Context, marketplace *models.Marketplace) (*models.Marketplace, error) {
	existing, err := r.ByNaturalKey(ctx, marketplace.NaturalKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := r.Save(ctx, marketplace); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.ByNaturalKey(ctx, marketplace.NaturalKey)
		}
		return nil, err
	}
	return marketplace, nil
}

func (r *MarketplaceRepositoryImpl) applyFilter(db *gorm.DB, f models.MarketplaceFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.NaturalKey != nil {
		db = db.Where("natural_key = ?", *f.NaturalKey)
	}
	if f.Platform != nil {
		db = db.Where("platform = ?", *f.Platform)
	}
	if f.Code != nil {
		db = db.Where("code = ?", *f.Code)
	}
	return db
}

func (r *MarketplaceRepositoryImpl) ByFilter(ctx context.Context, filter models.MarketplaceFilter, orderBy string, limit, offset int) ([]*models.Marketplace, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Marketplace{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Marketplace
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MarketplaceRepositoryImpl) Count(ctx context.Context, filter models.MarketplaceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Marketplace{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MarketplaceRepositoryImpl) Exists(ctx context.Context, filter models.MarketplaceFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
