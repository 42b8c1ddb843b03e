package repository

import (
	"context"
	"errors"

	"github.com/reviewloop/reviewloop/models"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements CampaignRepository
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db)}
}

func (r *CampaignRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	filter := models.CampaignFilter{Slug: &slug}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// BySlugWithRelations loads a campaign with its marketplace and targets,
// which is everything the landing page and redirect dispatcher need
func (r *CampaignRepositoryImpl) BySlugWithRelations(ctx context.Context, slug string) (*models.Campaign, error) {
	db := r.getDB(ctx)
	var row models.Campaign
	err := db.Preload("Marketplace").Preload("Targets").
		Where("slug = ?", slug).
		Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// FindOrCreateBySlug returns the campaign with the given slug, inserting it
// when missing. Slug uniqueness is backstopped by the unique index.
func (r *CampaignRepositoryImpl) FindOrCreateBySlug(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	existing, err := r.BySlug(ctx, campaign.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := r.Save(ctx, campaign); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.BySlug(ctx, campaign.Slug)
		}
		return nil, err
	}
	return campaign, nil
}

func (r *CampaignRepositoryImpl) ListWithMarketplace(ctx context.Context, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Campaign{}).Preload("Marketplace").Preload("Targets").Preload("ShortLinks").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Campaign
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, f models.CampaignFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.MarketplaceID != nil {
		db = db.Where("marketplace_id = ?", *f.MarketplaceID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Campaign
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
