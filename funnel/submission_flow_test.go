package funnel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	testingutil "github.com/reviewloop/reviewloop/testing"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionRequest(campaign *models.Campaign, orderNumber string) *dto.SubmitReviewRequest {
	return &dto.SubmitReviewRequest{
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		Marketplace: dto.MarketplaceDescriptor{
			Platform: "AMAZON",
			Code:     "UK",
			TLD:      "co.uk",
		},
		ProductName: "Test Product",
		OrderNumber: orderNumber,
		Used7Days:   true,
		Rating:      5,
		ReviewText:  "Solid construction, easy setup, and it still works perfectly after weeks of use.",
		Target: &dto.TargetDescriptor{
			Platform: "AMAZON",
			ASIN:     utils.ToPtr("B0TESTASIN"),
		},
	}
}

func TestSubmissionFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		submissionRepo := repository.NewReviewSubmissionRepository(testDB.DB)
		flow := NewSubmissionFlow(campaignRepo, submissionRepo)

		campaign, _, err := fixtures.CreateTestFunnel()
		require.NoError(t, err)

		t.Run("SuccessfulSubmission", func(t *testing.T) {
			req := submissionRequest(campaign, "111-1234567-1234567")
			metadata := NewClientMetadata("203.0.113.10", "test-agent/1.0")

			result, err := flow.Submit(ctx, req, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			id, err := uuid.Parse(result.ID)
			require.NoError(t, err)

			var stored models.ReviewSubmission
			require.NoError(t, testDB.DB.Where("uuid = ?", id).First(&stored).Error)
			assert.Equal(t, campaign.ID, stored.CampaignID)
			assert.Equal(t, "111-1234567-1234567", stored.OrderNumber)
			assert.Equal(t, 5, stored.Rating)

			// Target snapshot resolved at submission time
			require.NotNil(t, stored.TargetPlatform)
			assert.Equal(t, "AMAZON", *stored.TargetPlatform)
			require.NotNil(t, stored.TargetIdentifier)
			assert.Equal(t, "B0TESTASIN", *stored.TargetIdentifier)
			require.NotNil(t, stored.TargetURL)
			assert.Equal(t, "https://www.amazon.co.uk/review/create-review?asin=B0TESTASIN", *stored.TargetURL)

			// Client metadata is hashed, not stored raw
			require.NotNil(t, stored.IPHash)
			assert.Equal(t, utils.HashIP("203.0.113.10"), *stored.IPHash)
		})

		t.Run("DuplicateOrderRejected", func(t *testing.T) {
			req := submissionRequest(campaign, "222-1234567-1234567")
			_, err := flow.Submit(ctx, req, nil)
			require.NoError(t, err)

			_, err = flow.Submit(ctx, req, nil)
			assert.ErrorIs(t, err, ErrDuplicateSubmission)
		})

		t.Run("SameOrderDifferentCampaignAllowed", func(t *testing.T) {
			other, _, err := fixtures.CreateTestFunnel()
			require.NoError(t, err)

			first := submissionRequest(campaign, "333-1234567-1234567")
			_, err = flow.Submit(ctx, first, nil)
			require.NoError(t, err)

			second := submissionRequest(other, "333-1234567-1234567")
			_, err = flow.Submit(ctx, second, nil)
			assert.NoError(t, err)
		})

		t.Run("UnknownCampaign", func(t *testing.T) {
			req := submissionRequest(campaign, "444-1234567-1234567")
			req.CampaignID = 999999

			_, err := flow.Submit(ctx, req, nil)
			assert.ErrorIs(t, err, ErrCampaignNotFound)
		})

		t.Run("BlankEmailStoredAsNull", func(t *testing.T) {
			req := submissionRequest(campaign, "555-1234567-1234567")
			req.Email = utils.ToPtr("   ")

			result, err := flow.Submit(ctx, req, nil)
			require.NoError(t, err)

			var stored models.ReviewSubmission
			require.NoError(t, testDB.DB.Where("uuid = ?", result.ID).First(&stored).Error)
			assert.Nil(t, stored.Email)
		})

		return nil
	})
	require.NoError(t, err)
}
