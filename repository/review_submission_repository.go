package repository

import (
	"context"

	"github.com/reviewloop/reviewloop/models"
	"gorm.io/gorm"
)

// ReviewSubmissionRepositoryImpl implements ReviewSubmissionRepository
type ReviewSubmissionRepositoryImpl struct {
	*BaseRepository[models.ReviewSubmission, models.ReviewSubmissionFilter]
}

func NewReviewSubmissionRepository(db *gorm.DB) ReviewSubmissionRepository {
	return &ReviewSubmissionRepositoryImpl{BaseRepository: NewBaseRepository[models.ReviewSubmission, models.ReviewSubmissionFilter](db)}
}

// ByCampaignAndOrder looks up a prior submission for the duplicate pre-check
func (r *ReviewSubmissionRepositoryImpl) ByCampaignAndOrder(ctx context.Context, campaignID uint, orderNumber string) (*models.ReviewSubmission, error) {
	filter := models.ReviewSubmissionFilter{CampaignID: &campaignID, OrderNumber: &orderNumber}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ReviewSubmissionRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, orderBy string) ([]*models.ReviewSubmission, error) {
	filter := models.ReviewSubmissionFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, orderBy, 0, 0)
}

func (r *ReviewSubmissionRepositoryImpl) applyFilter(db *gorm.DB, f models.ReviewSubmissionFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.CampaignID != nil {
		db = db.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.OrderNumber != nil {
		db = db.Where("order_number = ?", *f.OrderNumber)
	}
	if f.Rating != nil {
		db = db.Where("rating = ?", *f.Rating)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ReviewSubmissionRepositoryImpl) ByFilter(ctx context.Context, filter models.ReviewSubmissionFilter, orderBy string, limit, offset int) ([]*models.ReviewSubmission, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ReviewSubmission{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ReviewSubmission
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReviewSubmissionRepositoryImpl) Count(ctx context.Context, filter models.ReviewSubmissionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ReviewSubmission{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReviewSubmissionRepositoryImpl) Exists(ctx context.Context, filter models.ReviewSubmissionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
