package repository

import (
	"context"

	"github.com/reviewloop/reviewloop/models"
	"gorm.io/gorm"
)

// ScanEventRepositoryImpl implements ScanEventRepository
// Scan events are append-only; there are no update or delete operations
type ScanEventRepositoryImpl struct {
	*BaseRepository[models.ScanEvent, models.ScanEventFilter]
}

func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &ScanEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ScanEvent, models.ScanEventFilter](db)}
}

// ListByCampaign returns scan events for every short link of a campaign
func (r *ScanEventRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, orderBy string) ([]*models.ScanEvent, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ScanEvent{}).
		Joins("JOIN short_links ON short_links.id = scan_events.short_link_id").
		Where("short_links.campaign_id = ?", campaignID)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	var rows []*models.ScanEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScanEventRepositoryImpl) CountByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.ScanEvent{}).
		Joins("JOIN short_links ON short_links.id = scan_events.short_link_id").
		Where("short_links.campaign_id = ?", campaignID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScanEventRepositoryImpl) applyFilter(db *gorm.DB, f models.ScanEventFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ShortLinkID != nil {
		db = db.Where("short_link_id = ?", *f.ShortLinkID)
	}
	if f.IPHash != nil {
		db = db.Where("ip_hash = ?", *f.IPHash)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ScanEventRepositoryImpl) ByFilter(ctx context.Context, filter models.ScanEventFilter, orderBy string, limit, offset int) ([]*models.ScanEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ScanEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScanEventRepositoryImpl) Count(ctx context.Context, filter models.ScanEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScanEventRepositoryImpl) Exists(ctx context.Context, filter models.ScanEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
