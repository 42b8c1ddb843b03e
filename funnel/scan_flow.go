package funnel

import (
	"context"
	"strings"

	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/utils"
)

// ScanFlow resolves a short link scan: it records the scan event and computes
// the redirect destination. The event insert completes before a destination is
// returned, so every issued redirect corresponds to a recorded scan; a failed
// insert aborts the redirect (fail-closed).
// Public flow, no authentication required.
type ScanFlow interface {
	Visit(ctx context.Context, slug string, metadata *ClientMetadata) (*ScanResult, error)
	// ScanURL returns the public scan URL for an existing short link without
	// recording an event; used for QR rendering
	ScanURL(ctx context.Context, slug string, metadata *ClientMetadata) (string, error)
}

// ScanResult is the computed redirect destination for one scan
type ScanResult struct {
	RedirectURL  string `json:"redirect_url"`
	External     bool   `json:"external"`
	CampaignSlug string `json:"campaign_slug"`
}

type ScanFlowImpl struct {
	shortLinkRepo repository.ShortLinkRepository
	scanRepo      repository.ScanEventRepository
	publicBaseURL string
}

// NewScanFlow creates a scan flow. publicBaseURL overrides the request origin
// when building internal landing URLs (for deployments behind a proxy); empty
// means trust the inbound origin.
func NewScanFlow(shortLinkRepo repository.ShortLinkRepository, scanRepo repository.ScanEventRepository, publicBaseURL string) ScanFlow {
	return &ScanFlowImpl{
		shortLinkRepo: shortLinkRepo,
		scanRepo:      scanRepo,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (f *ScanFlowImpl) Visit(ctx context.Context, slug string, metadata *ClientMetadata) (*ScanResult, error) {
	link, err := f.shortLinkRepo.BySlugWithCampaign(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		// No event is recorded for unknown slugs
		return nil, ErrShortLinkNotFound
	}

	event := &models.ScanEvent{
		ShortLinkID: link.ID,
		IPHash:      utils.HashIP(metadata.IPAddress),
	}
	if ua := strings.TrimSpace(metadata.UserAgent); ua != "" {
		event.UserAgent = &ua
	}
	if err := f.scanRepo.Save(ctx, event); err != nil {
		return nil, NewBusinessError("SCAN_RECORD_FAILED", "Failed to record scan event", err)
	}

	campaign := link.Campaign
	if campaign == nil {
		// Orphaned short link rows degrade to the application root
		return &ScanResult{RedirectURL: f.baseURL(metadata) + "/"}, nil
	}

	if target := campaign.PrimaryTarget(); target != nil {
		if reviewURL := BuildReviewURL(ReviewLinkInputForTarget(target, campaign.Marketplace)); reviewURL != nil {
			return &ScanResult{
				RedirectURL:  *reviewURL,
				External:     true,
				CampaignSlug: campaign.Slug,
			}, nil
		}
	}

	// Multi-target or unresolvable: fall back to the internal landing page
	return &ScanResult{
		RedirectURL:  f.baseURL(metadata) + "/r/" + campaign.Slug,
		CampaignSlug: campaign.Slug,
	}, nil
}

func (f *ScanFlowImpl) ScanURL(ctx context.Context, slug string, metadata *ClientMetadata) (string, error) {
	link, err := f.shortLinkRepo.BySlug(ctx, slug)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		return "", ErrShortLinkNotFound
	}
	return f.baseURL(metadata) + "/c/" + link.Slug, nil
}

func (f *ScanFlowImpl) baseURL(metadata *ClientMetadata) string {
	if f.publicBaseURL != "" {
		return f.publicBaseURL
	}
	return strings.TrimRight(metadata.Origin, "/")
}
