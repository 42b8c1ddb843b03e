package funnel

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/utils"
	"gorm.io/gorm"
)

// SubmissionFlow persists wizard review submissions after the handler has
// schema-validated the payload. Business checks run in order: the campaign
// must exist, then no prior submission for (campaign, order number) may exist.
// The composite unique index is the backstop for duplicate races.
type SubmissionFlow interface {
	Submit(ctx context.Context, req *dto.SubmitReviewRequest, metadata *ClientMetadata) (*SubmissionResult, error)
}

// SubmissionResult carries the reference id handed back to the wizard
type SubmissionResult struct {
	ID string `json:"id"`
}

type SubmissionFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	submissionRepo repository.ReviewSubmissionRepository
}

func NewSubmissionFlow(campaignRepo repository.CampaignRepository, submissionRepo repository.ReviewSubmissionRepository) SubmissionFlow {
	return &SubmissionFlowImpl{campaignRepo: campaignRepo, submissionRepo: submissionRepo}
}

func (f *SubmissionFlowImpl) Submit(ctx context.Context, req *dto.SubmitReviewRequest, metadata *ClientMetadata) (*SubmissionResult, error) {
	campaign, err := f.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	existing, err := f.submissionRepo.ByCampaignAndOrder(ctx, req.CampaignID, req.OrderNumber)
	if err != nil {
		return nil, NewBusinessError("SUBMISSION_LOOKUP_FAILED", "Failed to check for prior submission", err)
	}
	if existing != nil {
		return nil, ErrDuplicateSubmission
	}

	submission := &models.ReviewSubmission{
		UUID:           uuid.New(),
		CampaignID:     req.CampaignID,
		CampaignName:   req.CampaignName,
		ProductName:    req.ProductName,
		OrderNumber:    req.OrderNumber,
		Used7Days:      req.Used7Days,
		Rating:         req.Rating,
		ReviewText:     req.ReviewText,
		MarketingOptIn: req.MarketingOptIn,
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		submission.Email = utils.ToPtr(strings.TrimSpace(*req.Email))
	}
	if req.Target != nil {
		submission.TargetPlatform = utils.ToPtr(req.Target.Platform)
		submission.TargetIdentifier = firstIdentifier(req.Target)
		submission.TargetURL = BuildReviewURL(ReviewLinkInput{
			Platform: req.Target.Platform,
			ASIN:     req.Target.ASIN,
			ItemID:   req.Target.ItemID,
			PlaceID:  req.Target.PlaceID,
			URL:      req.Target.URL,
			TLD:      utils.ToPtr(req.Marketplace.TLD),
		})
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			submission.IPHash = utils.ToPtr(utils.HashIP(metadata.IPAddress))
		}
		if ua := strings.TrimSpace(metadata.UserAgent); ua != "" {
			submission.UserAgent = &ua
		}
	}

	if err := f.submissionRepo.Save(ctx, submission); err != nil {
		// A concurrent submission may have slipped past the pre-check
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSubmission
		}
		return nil, NewBusinessError("SUBMISSION_SAVE_FAILED", "Failed to persist review submission", err)
	}

	return &SubmissionResult{ID: submission.UUID.String()}, nil
}

func firstIdentifier(t *dto.TargetDescriptor) *string {
	switch {
	case t.ASIN != nil:
		return t.ASIN
	case t.ItemID != nil:
		return t.ItemID
	case t.PlaceID != nil:
		return t.PlaceID
	default:
		return nil
	}
}
