package funnel

import (
	"context"

	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/utils"
)

// LandingFlow assembles the campaign payload the landing page hands to the
// submission wizard: marketplace descriptor plus every target with its
// pre-resolved review URL. Public flow, no authentication required.
type LandingFlow interface {
	Landing(ctx context.Context, campaignSlug string) (*dto.LandingPageResponse, error)
}

type LandingFlowImpl struct {
	campaignRepo repository.CampaignRepository
}

func NewLandingFlow(campaignRepo repository.CampaignRepository) LandingFlow {
	return &LandingFlowImpl{campaignRepo: campaignRepo}
}

func (f *LandingFlowImpl) Landing(ctx context.Context, campaignSlug string) (*dto.LandingPageResponse, error) {
	campaign, err := f.campaignRepo.BySlugWithRelations(ctx, campaignSlug)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	resp := &dto.LandingPageResponse{
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		CampaignSlug: campaign.Slug,
		Targets:      make([]dto.LandingTarget, 0, len(campaign.Targets)),
	}
	if campaign.Marketplace != nil {
		resp.Marketplace = dto.MarketplaceDescriptor{
			Platform: campaign.Marketplace.Platform,
			Code:     campaign.Marketplace.Code,
			TLD:      utils.Deref(campaign.Marketplace.TLD),
		}
		if resp.Marketplace.TLD == "" {
			resp.Marketplace.TLD = utils.DefaultMarketplaceTLD
		}
	}

	for i := range campaign.Targets {
		t := &campaign.Targets[i]
		resp.Targets = append(resp.Targets, dto.LandingTarget{
			Platform:  t.Platform,
			ASIN:      t.ASIN,
			ItemID:    t.ItemID,
			PlaceID:   t.PlaceID,
			URL:       t.URL,
			Title:     t.Title,
			Image:     t.Image,
			IsPrimary: t.IsPrimary,
			ReviewURL: BuildReviewURL(ReviewLinkInputForTarget(t, campaign.Marketplace)),
		})
	}

	return resp, nil
}
