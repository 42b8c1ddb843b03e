// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/reviewloop/reviewloop/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// MarketplaceRepository defines operations for marketplaces
type MarketplaceRepository interface {
	Repository[models.Marketplace, models.MarketplaceFilter]
	ByNaturalKey(ctx context.Context, naturalKey string) (*models.Marketplace, error)
	FindOrCreate(ctx context.Context, marketplace *models.Marketplace) (*models.Marketplace, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	BySlug(ctx context.Context, slug string) (*models.Campaign, error)
	BySlugWithRelations(ctx context.Context, slug string) (*models.Campaign, error)
	FindOrCreateBySlug(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	ListWithMarketplace(ctx context.Context, limit, offset int) ([]*models.Campaign, error)
}

// ReviewTargetRepository defines operations for review targets
type ReviewTargetRepository interface {
	Repository[models.ReviewTarget, models.ReviewTargetFilter]
	ByNaturalKey(ctx context.Context, naturalKey string) (*models.ReviewTarget, error)
	FindOrCreate(ctx context.Context, target *models.ReviewTarget) (*models.ReviewTarget, error)
	ListByCampaign(ctx context.Context, campaignID uint) ([]*models.ReviewTarget, error)
}

// ShortLinkRepository defines operations for short links
type ShortLinkRepository interface {
	Repository[models.ShortLink, models.ShortLinkFilter]
	BySlug(ctx context.Context, slug string) (*models.ShortLink, error)
	BySlugWithCampaign(ctx context.Context, slug string) (*models.ShortLink, error)
	FindOrCreateBySlug(ctx context.Context, link *models.ShortLink) (*models.ShortLink, error)
}

// ScanEventRepository defines operations for scan events
type ScanEventRepository interface {
	Repository[models.ScanEvent, models.ScanEventFilter]
	ListByCampaign(ctx context.Context, campaignID uint, orderBy string) ([]*models.ScanEvent, error)
	CountByCampaign(ctx context.Context, campaignID uint) (int64, error)
}

// ReviewSubmissionRepository defines operations for review submissions
type ReviewSubmissionRepository interface {
	Repository[models.ReviewSubmission, models.ReviewSubmissionFilter]
	ByCampaignAndOrder(ctx context.Context, campaignID uint, orderNumber string) (*models.ReviewSubmission, error)
	ListByCampaign(ctx context.Context, campaignID uint, orderBy string) ([]*models.ReviewSubmission, error)
}

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint) error
}
