package funnel

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/xuri/excelize/v2"
)

// StatsFlow exposes aggregate counts and per-campaign Excel exports for the
// admin reporting surface
type StatsFlow interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	DownloadScansExcel(ctx context.Context, campaignSlug string) (string, []byte, error)
	DownloadSubmissionsExcel(ctx context.Context, campaignSlug string) (string, []byte, error)
}

type StatsFlowImpl struct {
	marketplaceRepo repository.MarketplaceRepository
	campaignRepo    repository.CampaignRepository
	targetRepo      repository.ReviewTargetRepository
	shortLinkRepo   repository.ShortLinkRepository
	scanRepo        repository.ScanEventRepository
	submissionRepo  repository.ReviewSubmissionRepository
}

func NewStatsFlow(
	marketplaceRepo repository.MarketplaceRepository,
	campaignRepo repository.CampaignRepository,
	targetRepo repository.ReviewTargetRepository,
	shortLinkRepo repository.ShortLinkRepository,
	scanRepo repository.ScanEventRepository,
	submissionRepo repository.ReviewSubmissionRepository,
) StatsFlow {
	return &StatsFlowImpl{
		marketplaceRepo: marketplaceRepo,
		campaignRepo:    campaignRepo,
		targetRepo:      targetRepo,
		shortLinkRepo:   shortLinkRepo,
		scanRepo:        scanRepo,
		submissionRepo:  submissionRepo,
	}
}

func (f *StatsFlowImpl) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	marketplaces, err := f.marketplaceRepo.Count(ctx, models.MarketplaceFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count marketplaces", err)
	}
	campaigns, err := f.campaignRepo.Count(ctx, models.CampaignFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count campaigns", err)
	}
	targets, err := f.targetRepo.Count(ctx, models.ReviewTargetFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count review targets", err)
	}
	links, err := f.shortLinkRepo.Count(ctx, models.ShortLinkFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count short links", err)
	}
	scans, err := f.scanRepo.Count(ctx, models.ScanEventFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count scan events", err)
	}
	submissions, err := f.submissionRepo.Count(ctx, models.ReviewSubmissionFilter{})
	if err != nil {
		return nil, NewBusinessError("STATS_FAILED", "Failed to count submissions", err)
	}

	return &dto.StatsResponse{
		Marketplaces: marketplaces,
		Campaigns:    campaigns,
		Targets:      targets,
		ShortLinks:   links,
		Scans:        scans,
		Submissions:  submissions,
	}, nil
}

func (f *StatsFlowImpl) DownloadScansExcel(ctx context.Context, campaignSlug string) (string, []byte, error) {
	campaign, err := f.campaignBySlug(ctx, campaignSlug)
	if err != nil {
		return "", nil, err
	}

	scans, err := f.scanRepo.ListByCampaign(ctx, campaign.ID, "scan_events.created_at ASC")
	if err != nil {
		return "", nil, NewBusinessError("FETCH_SCANS_FAILED", "Failed to fetch scan events", err)
	}

	links, err := f.shortLinkRepo.ByFilter(ctx, models.ShortLinkFilter{CampaignID: &campaign.ID}, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_SHORT_LINKS_FAILED", "Failed to fetch short links", err)
	}
	slugByLinkID := make(map[uint]string, len(links))
	for _, l := range links {
		slugByLinkID[l.ID] = l.Slug
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := sanitizeSheetName(campaign.Slug + "_scans")
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "short_link_slug", "ip_hash", "user_agent", "scanned_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, s := range scans {
		record := []string{
			strconv.FormatUint(uint64(s.ID), 10),
			slugByLinkID[s.ShortLinkID],
			s.IPHash,
			utils.Deref(s.UserAgent),
			s.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("scans_%s.xlsx", campaign.Slug)
	return filename, buf.Bytes(), nil
}

func (f *StatsFlowImpl) DownloadSubmissionsExcel(ctx context.Context, campaignSlug string) (string, []byte, error) {
	campaign, err := f.campaignBySlug(ctx, campaignSlug)
	if err != nil {
		return "", nil, err
	}

	submissions, err := f.submissionRepo.ListByCampaign(ctx, campaign.ID, "created_at ASC")
	if err != nil {
		return "", nil, NewBusinessError("FETCH_SUBMISSIONS_FAILED", "Failed to fetch submissions", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := sanitizeSheetName(campaign.Slug + "_submissions")
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "uuid", "order_number", "used_7_days", "rating", "review_text", "email", "marketing_opt_in", "target_platform", "target_url", "submitted_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, s := range submissions {
		record := []string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.UUID.String(),
			s.OrderNumber,
			strconv.FormatBool(s.Used7Days),
			strconv.Itoa(s.Rating),
			s.ReviewText,
			utils.Deref(s.Email),
			strconv.FormatBool(s.MarketingOptIn),
			utils.Deref(s.TargetPlatform),
			utils.Deref(s.TargetURL),
			s.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("submissions_%s.xlsx", campaign.Slug)
	return filename, buf.Bytes(), nil
}

func (f *StatsFlowImpl) campaignBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "campaign slug must not be empty", nil)
	}
	campaign, err := f.campaignRepo.BySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	return campaign, nil
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := strings.TrimSpace(replacer.Replace(name))
	if len(safe) > 31 {
		safe = safe[:31]
	}
	if safe == "" {
		return "Sheet"
	}
	return safe
}
