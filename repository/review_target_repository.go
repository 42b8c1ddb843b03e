package repository

import (
	"context"
	"errors"

	"github.com/reviewloop/reviewloop/models"
	"gorm.io/gorm"
)

// ReviewTargetRepositoryImpl implements ReviewTargetRepository
type ReviewTargetRepositoryImpl struct {
	*BaseRepository[models.ReviewTarget, models.ReviewTargetFilter]
}

func NewReviewTargetRepository(db *gorm.DB) ReviewTargetRepository {
	return &ReviewTargetRepositoryImpl{BaseRepository: NewBaseRepository[models.ReviewTarget, models.ReviewTargetFilter](db)}
}

func (r *ReviewTargetRepositoryImpl) ByNaturalKey(ctx context.Context, naturalKey string) (*models.ReviewTarget, error) {
	filter := models.ReviewTargetFilter{NaturalKey: &naturalKey}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FindOrCreate returns the target with the given natural key, inserting it when missing
func (r *ReviewTargetRepositoryImpl) FindOrCreate(ctx context.Context, target *models.ReviewTarget) (*models.ReviewTarget, error) {
	existing, err := r.ByNaturalKey(ctx, target.NaturalKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := r.Save(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.ByNaturalKey(ctx, target.NaturalKey)
		}
		return nil, err
	}
	return target, nil
}

func (r *ReviewTargetRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint) ([]*models.ReviewTarget, error) {
	filter := models.ReviewTargetFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "is_primary DESC, id ASC", 0, 0)
}

func (r *ReviewTargetRepositoryImpl) applyFilter(db *gorm.DB, f models.ReviewTargetFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.NaturalKey != nil {
		db = db.Where("natural_key = ?", *f.NaturalKey)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.Platform != nil {
		db = db.Where("platform = ?", *f.Platform)
	}
	if f.IsPrimary != nil {
		db = db.Where("is_primary = ?", *f.IsPrimary)
	}
	return db
}

func (r *ReviewTargetRepositoryImpl) ByFilter(ctx context.Context, filter models.ReviewTargetFilter, orderBy string, limit, offset int) ([]*models.ReviewTarget, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ReviewTarget{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ReviewTarget
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReviewTargetRepositoryImpl) Count(ctx context.Context, filter models.ReviewTargetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ReviewTarget{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReviewTargetRepositoryImpl) Exists(ctx context.Context, filter models.ReviewTargetFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
