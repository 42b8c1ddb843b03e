package funnel

import (
	"context"
	"strings"

	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/utils"
)

// Seed fixture natural keys
const (
	seedMarketplaceKey = "mkt-amazon-uk"
	seedCampaignSlug   = "amz-uk-sept"
	seedTargetKey      = "target-B0ABCDEFGH"
	seedShortLinkSlug  = "amz-sept-1"
)

// SeedFlow reconciles demo/setup data into the store. Every entity is keyed by
// a stable natural identifier and created only when missing, so the routine is
// idempotent: running it twice leaves the store unchanged.
type SeedFlow interface {
	Reconcile(ctx context.Context) (*SeedResult, error)
	Status(ctx context.Context) (*dto.SeedStatusResponse, error)
}

// SeedResult reports what the reconciliation found or created
type SeedResult struct {
	MarketplaceID uint   `json:"marketplace_id"`
	CampaignID    uint   `json:"campaign_id"`
	CampaignSlug  string `json:"campaign_slug"`
	TargetID      uint   `json:"target_id"`
	ShortLinkSlug string `json:"short_link_slug"`
}

type SeedFlowImpl struct {
	marketplaceRepo repository.MarketplaceRepository
	campaignRepo    repository.CampaignRepository
	targetRepo      repository.ReviewTargetRepository
	shortLinkRepo   repository.ShortLinkRepository
	publicBaseURL   string
}

func NewSeedFlow(
	marketplaceRepo repository.MarketplaceRepository,
	campaignRepo repository.CampaignRepository,
	targetRepo repository.ReviewTargetRepository,
	shortLinkRepo repository.ShortLinkRepository,
	publicBaseURL string,
) SeedFlow {
	return &SeedFlowImpl{
		marketplaceRepo: marketplaceRepo,
		campaignRepo:    campaignRepo,
		targetRepo:      targetRepo,
		shortLinkRepo:   shortLinkRepo,
		publicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
	}
}

func (f *SeedFlowImpl) Reconcile(ctx context.Context) (*SeedResult, error) {
	marketplace, err := f.marketplaceRepo.FindOrCreate(ctx, &models.Marketplace{
		NaturalKey: seedMarketplaceKey,
		Platform:   models.PlatformAmazon,
		Code:       "UK",
		TLD:        utils.ToPtr("co.uk"),
	})
	if err != nil {
		return nil, NewBusinessError("SEED_MARKETPLACE_FAILED", "Failed to reconcile marketplace", err)
	}

	campaign, err := f.campaignRepo.FindOrCreateBySlug(ctx, &models.Campaign{
		Name:          "Amazon UK – Sept",
		Slug:          seedCampaignSlug,
		MarketplaceID: marketplace.ID,
	})
	if err != nil {
		return nil, NewBusinessError("SEED_CAMPAIGN_FAILED", "Failed to reconcile campaign", err)
	}

	target, err := f.targetRepo.FindOrCreate(ctx, &models.ReviewTarget{
		NaturalKey: seedTargetKey,
		CampaignID: campaign.ID,
		Platform:   models.PlatformAmazon,
		ASIN:       utils.ToPtr("B0ABCDEFGH"),
		Title:      utils.ToPtr("Amazon Product B0ABCDEFGH"),
		IsPrimary:  true,
	})
	if err != nil {
		return nil, NewBusinessError("SEED_TARGET_FAILED", "Failed to reconcile review target", err)
	}

	link, err := f.shortLinkRepo.FindOrCreateBySlug(ctx, &models.ShortLink{
		Slug:       seedShortLinkSlug,
		CampaignID: campaign.ID,
	})
	if err != nil {
		return nil, NewBusinessError("SEED_SHORT_LINK_FAILED", "Failed to reconcile short link", err)
	}

	return &SeedResult{
		MarketplaceID: marketplace.ID,
		CampaignID:    campaign.ID,
		CampaignSlug:  campaign.Slug,
		TargetID:      target.ID,
		ShortLinkSlug: link.Slug,
	}, nil
}

// Status reports whether the seed fixtures are present without creating them
func (f *SeedFlowImpl) Status(ctx context.Context) (*dto.SeedStatusResponse, error) {
	link, err := f.shortLinkRepo.BySlugWithCampaign(ctx, seedShortLinkSlug)
	if err != nil {
		return nil, NewBusinessError("SEED_STATUS_FAILED", "Failed to check seed fixtures", err)
	}
	if link == nil || link.Campaign == nil {
		return &dto.SeedStatusResponse{Seeded: false}, nil
	}

	return &dto.SeedStatusResponse{
		Seeded:        true,
		CampaignSlug:  link.Campaign.Slug,
		ShortLinkSlug: link.Slug,
		ScanURL:       f.publicBaseURL + "/c/" + link.Slug,
	}, nil
}
