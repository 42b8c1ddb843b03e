package funnel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"gorm.io/gorm"
)

// AdminCatalogFlow covers the admin CRUD surface: marketplaces, campaigns,
// review targets, and short links
type AdminCatalogFlow interface {
	CreateMarketplace(ctx context.Context, req *dto.CreateMarketplaceRequest) (*dto.MarketplaceDTO, error)
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignSummary, error)
	CreateTarget(ctx context.Context, req *dto.CreateReviewTargetRequest) (*dto.ReviewTargetDTO, error)
	CreateShortLink(ctx context.Context, req *dto.CreateShortLinkRequest) (*dto.ShortLinkDTO, error)
	ListCampaigns(ctx context.Context, limit, offset int) ([]*dto.CampaignSummary, error)
}

type AdminCatalogFlowImpl struct {
	marketplaceRepo repository.MarketplaceRepository
	campaignRepo    repository.CampaignRepository
	targetRepo      repository.ReviewTargetRepository
	shortLinkRepo   repository.ShortLinkRepository
	scanRepo        repository.ScanEventRepository
	submissionRepo  repository.ReviewSubmissionRepository
	publicBaseURL   string
}

func NewAdminCatalogFlow(
	marketplaceRepo repository.MarketplaceRepository,
	campaignRepo repository.CampaignRepository,
	targetRepo repository.ReviewTargetRepository,
	shortLinkRepo repository.ShortLinkRepository,
	scanRepo repository.ScanEventRepository,
	submissionRepo repository.ReviewSubmissionRepository,
	publicBaseURL string,
) AdminCatalogFlow {
	return &AdminCatalogFlowImpl{
		marketplaceRepo: marketplaceRepo,
		campaignRepo:    campaignRepo,
		targetRepo:      targetRepo,
		shortLinkRepo:   shortLinkRepo,
		scanRepo:        scanRepo,
		submissionRepo:  submissionRepo,
		publicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
	}
}

func (f *AdminCatalogFlowImpl) CreateMarketplace(ctx context.Context, req *dto.CreateMarketplaceRequest) (*dto.MarketplaceDTO, error) {
	exists, err := f.marketplaceRepo.Exists(ctx, models.MarketplaceFilter{NaturalKey: &req.NaturalKey})
	if err != nil {
		return nil, NewBusinessError("MARKETPLACE_LOOKUP_FAILED", "Failed to check marketplace", err)
	}
	if exists {
		return nil, NewBusinessError("MARKETPLACE_ALREADY_EXISTS", "Marketplace natural key already exists", ErrSlugAlreadyExists)
	}

	marketplace := &models.Marketplace{
		NaturalKey: strings.TrimSpace(req.NaturalKey),
		Platform:   req.Platform,
		Code:       strings.TrimSpace(req.Code),
		TLD:        req.TLD,
		ExternalID: req.ExternalID,
	}
	if err := f.marketplaceRepo.Save(ctx, marketplace); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("MARKETPLACE_ALREADY_EXISTS", "Marketplace natural key already exists", ErrSlugAlreadyExists)
		}
		return nil, NewBusinessError("MARKETPLACE_CREATE_FAILED", "Failed to create marketplace", err)
	}

	return toMarketplaceDTO(marketplace), nil
}

func (f *AdminCatalogFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignSummary, error) {
	marketplace, err := f.marketplaceRepo.ByID(ctx, req.MarketplaceID)
	if err != nil {
		return nil, NewBusinessError("MARKETPLACE_LOOKUP_FAILED", "Failed to lookup marketplace", err)
	}
	if marketplace == nil {
		return nil, NewBusinessError("MARKETPLACE_NOT_FOUND", "Marketplace not found", ErrMarketplaceNotFound)
	}

	slug := strings.TrimSpace(req.Slug)
	exists, err := f.campaignRepo.Exists(ctx, models.CampaignFilter{Slug: &slug})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to check campaign slug", err)
	}
	if exists {
		return nil, NewBusinessError("CAMPAIGN_SLUG_EXISTS", "Campaign slug already exists", ErrSlugAlreadyExists)
	}

	campaign := &models.Campaign{
		Name:          strings.TrimSpace(req.Name),
		Slug:          slug,
		MarketplaceID: marketplace.ID,
	}
	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("CAMPAIGN_SLUG_EXISTS", "Campaign slug already exists", ErrSlugAlreadyExists)
		}
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "Failed to create campaign", err)
	}

	campaign.Marketplace = marketplace
	return f.toCampaignSummary(ctx, campaign)
}

func (f *AdminCatalogFlowImpl) CreateTarget(ctx context.Context, req *dto.CreateReviewTargetRequest) (*dto.ReviewTargetDTO, error) {
	campaign, err := f.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	target := &models.ReviewTarget{
		NaturalKey: strings.TrimSpace(req.NaturalKey),
		CampaignID: campaign.ID,
		Platform:   req.Platform,
		ASIN:       req.ASIN,
		ItemID:     req.ItemID,
		PlaceID:    req.PlaceID,
		URL:        req.URL,
		Title:      req.Title,
		Image:      req.Image,
		IsPrimary:  req.IsPrimary,
	}
	if !target.HasIdentifier() {
		return nil, NewBusinessError("TARGET_NOT_RESOLVABLE", "Target needs an ASIN, item ID, place ID, or URL", ErrTargetNotResolvable)
	}

	exists, err := f.targetRepo.Exists(ctx, models.ReviewTargetFilter{NaturalKey: &target.NaturalKey})
	if err != nil {
		return nil, NewBusinessError("TARGET_LOOKUP_FAILED", "Failed to check review target", err)
	}
	if exists {
		return nil, NewBusinessError("TARGET_ALREADY_EXISTS", "Review target natural key already exists", ErrSlugAlreadyExists)
	}

	if err := f.targetRepo.Save(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("TARGET_ALREADY_EXISTS", "Review target natural key already exists", ErrSlugAlreadyExists)
		}
		return nil, NewBusinessError("TARGET_CREATE_FAILED", "Failed to create review target", err)
	}

	marketplace, _ := f.marketplaceRepo.ByID(ctx, campaign.MarketplaceID)
	return toReviewTargetDTO(target, marketplace), nil
}

func (f *AdminCatalogFlowImpl) CreateShortLink(ctx context.Context, req *dto.CreateShortLinkRequest) (*dto.ShortLinkDTO, error) {
	campaign, err := f.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	slug := strings.TrimSpace(req.Slug)
	exists, err := f.shortLinkRepo.Exists(ctx, models.ShortLinkFilter{Slug: &slug})
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to check short link slug", err)
	}
	if exists {
		return nil, NewBusinessError("SHORT_LINK_SLUG_EXISTS", "Short link slug already exists", ErrSlugAlreadyExists)
	}

	link := &models.ShortLink{
		Slug:       slug,
		CampaignID: campaign.ID,
	}
	if err := f.shortLinkRepo.Save(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("SHORT_LINK_SLUG_EXISTS", "Short link slug already exists", ErrSlugAlreadyExists)
		}
		return nil, NewBusinessError("SHORT_LINK_CREATE_FAILED", "Failed to create short link", err)
	}

	return f.toShortLinkDTO(link), nil
}

func (f *AdminCatalogFlowImpl) ListCampaigns(ctx context.Context, limit, offset int) ([]*dto.CampaignSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	campaigns, err := f.campaignRepo.ListWithMarketplace(ctx, limit, offset)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	summaries := make([]*dto.CampaignSummary, 0, len(campaigns))
	for _, campaign := range campaigns {
		summary, err := f.toCampaignSummary(ctx, campaign)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (f *AdminCatalogFlowImpl) toCampaignSummary(ctx context.Context, campaign *models.Campaign) (*dto.CampaignSummary, error) {
	targets, err := f.targetRepo.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("TARGET_LIST_FAILED", "Failed to list review targets", err)
	}

	links, err := f.shortLinkRepo.ByFilter(ctx, models.ShortLinkFilter{CampaignID: &campaign.ID}, "id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LIST_FAILED", "Failed to list short links", err)
	}

	scanCount, err := f.scanRepo.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("SCAN_COUNT_FAILED", "Failed to count scans", err)
	}

	submissionCount, err := f.submissionRepo.Count(ctx, models.ReviewSubmissionFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("SUBMISSION_COUNT_FAILED", "Failed to count submissions", err)
	}

	summary := &dto.CampaignSummary{
		ID:              campaign.ID,
		Name:            campaign.Name,
		Slug:            campaign.Slug,
		ScanCount:       scanCount,
		SubmissionCount: submissionCount,
		CreatedAt:       campaign.CreatedAt.Format(time.RFC3339),
	}
	if campaign.Marketplace != nil {
		summary.Marketplace = *toMarketplaceDTO(campaign.Marketplace)
	}
	for _, target := range targets {
		summary.Targets = append(summary.Targets, *toReviewTargetDTO(target, campaign.Marketplace))
	}
	for _, link := range links {
		summary.ShortLinks = append(summary.ShortLinks, *f.toShortLinkDTO(link))
	}
	return summary, nil
}

func (f *AdminCatalogFlowImpl) toShortLinkDTO(link *models.ShortLink) *dto.ShortLinkDTO {
	return &dto.ShortLinkDTO{
		ID:         link.ID,
		Slug:       link.Slug,
		CampaignID: link.CampaignID,
		ScanURL:    f.publicBaseURL + "/c/" + link.Slug,
		CreatedAt:  link.CreatedAt.Format(time.RFC3339),
	}
}

func toMarketplaceDTO(m *models.Marketplace) *dto.MarketplaceDTO {
	return &dto.MarketplaceDTO{
		ID:         m.ID,
		NaturalKey: m.NaturalKey,
		Platform:   m.Platform,
		Code:       m.Code,
		TLD:        m.TLD,
		ExternalID: m.ExternalID,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

func toReviewTargetDTO(t *models.ReviewTarget, marketplace *models.Marketplace) *dto.ReviewTargetDTO {
	return &dto.ReviewTargetDTO{
		ID:         t.ID,
		NaturalKey: t.NaturalKey,
		CampaignID: t.CampaignID,
		Platform:   t.Platform,
		ASIN:       t.ASIN,
		ItemID:     t.ItemID,
		PlaceID:    t.PlaceID,
		URL:        t.URL,
		Title:      t.Title,
		Image:      t.Image,
		IsPrimary:  t.IsPrimary,
		ReviewURL:  BuildReviewURL(ReviewLinkInputForTarget(t, marketplace)),
	}
}
