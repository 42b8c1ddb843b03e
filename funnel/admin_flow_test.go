package funnel

import (
	"testing"

	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/repository"
	testingutil "github.com/reviewloop/reviewloop/testing"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFlow(testDB *testingutil.TestDB) AdminCatalogFlow {
	return NewAdminCatalogFlow(
		repository.NewMarketplaceRepository(testDB.DB),
		repository.NewCampaignRepository(testDB.DB),
		repository.NewReviewTargetRepository(testDB.DB),
		repository.NewShortLinkRepository(testDB.DB),
		repository.NewScanEventRepository(testDB.DB),
		repository.NewReviewSubmissionRepository(testDB.DB),
		"https://go.example.com",
	)
}

func TestAdminCatalogFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		flow := newCatalogFlow(testDB)

		marketplace, err := flow.CreateMarketplace(ctx, &dto.CreateMarketplaceRequest{
			NaturalKey: "mkt-amazon-de",
			Platform:   "AMAZON",
			Code:       "DE",
			TLD:        utils.ToPtr("de"),
		})
		require.NoError(t, err)
		require.NotZero(t, marketplace.ID)

		t.Run("DuplicateMarketplaceKeyRejected", func(t *testing.T) {
			_, err := flow.CreateMarketplace(ctx, &dto.CreateMarketplaceRequest{
				NaturalKey: "mkt-amazon-de",
				Platform:   "AMAZON",
				Code:       "DE",
			})
			assert.ErrorIs(t, err, ErrSlugAlreadyExists)
		})

		campaign, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
			Name:          "Amazon DE Launch",
			Slug:          "amz-de-launch",
			MarketplaceID: marketplace.ID,
		})
		require.NoError(t, err)

		t.Run("DuplicateCampaignSlugRejected", func(t *testing.T) {
			_, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
				Name:          "Another",
				Slug:          "amz-de-launch",
				MarketplaceID: marketplace.ID,
			})
			assert.ErrorIs(t, err, ErrSlugAlreadyExists)
		})

		t.Run("CampaignRequiresExistingMarketplace", func(t *testing.T) {
			_, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
				Name:          "Orphan",
				Slug:          "orphan-campaign",
				MarketplaceID: 999999,
			})
			assert.ErrorIs(t, err, ErrMarketplaceNotFound)
		})

		t.Run("CreateTargetResolvesReviewURL", func(t *testing.T) {
			target, err := flow.CreateTarget(ctx, &dto.CreateReviewTargetRequest{
				NaturalKey: "target-de-kettle",
				CampaignID: campaign.ID,
				Platform:   "AMAZON",
				ASIN:       utils.ToPtr("B0DEKETTLE"),
				Title:      utils.ToPtr("Wasserkocher"),
				IsPrimary:  true,
			})
			require.NoError(t, err)
			require.NotNil(t, target.ReviewURL)
			assert.Equal(t, "https://www.amazon.de/review/create-review?asin=B0DEKETTLE", *target.ReviewURL)
		})

		t.Run("TargetWithoutIdentifierRejected", func(t *testing.T) {
			_, err := flow.CreateTarget(ctx, &dto.CreateReviewTargetRequest{
				NaturalKey: "target-de-empty",
				CampaignID: campaign.ID,
				Platform:   "AMAZON",
			})
			assert.ErrorIs(t, err, ErrTargetNotResolvable)
		})

		t.Run("CreateShortLinkBuildsScanURL", func(t *testing.T) {
			link, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				Slug:       "amz-de-1",
				CampaignID: campaign.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, "https://go.example.com/c/amz-de-1", link.ScanURL)

			_, err = flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				Slug:       "amz-de-1",
				CampaignID: campaign.ID,
			})
			assert.ErrorIs(t, err, ErrSlugAlreadyExists)
		})

		t.Run("ListCampaignsWithCounts", func(t *testing.T) {
			summaries, err := flow.ListCampaigns(ctx, 50, 0)
			require.NoError(t, err)
			require.NotEmpty(t, summaries)

			var found bool
			for _, s := range summaries {
				if s.Slug == "amz-de-launch" {
					found = true
					assert.Equal(t, 1, len(s.Targets))
					assert.Equal(t, 1, len(s.ShortLinks))
					assert.Zero(t, s.ScanCount)
					assert.Zero(t, s.SubmissionCount)
				}
			}
			assert.True(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSeedFlowIdempotent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()

		flow := NewSeedFlow(
			repository.NewMarketplaceRepository(testDB.DB),
			repository.NewCampaignRepository(testDB.DB),
			repository.NewReviewTargetRepository(testDB.DB),
			repository.NewShortLinkRepository(testDB.DB),
			"https://go.example.com",
		)

		t.Run("StatusBeforeSeeding", func(t *testing.T) {
			status, err := flow.Status(ctx)
			require.NoError(t, err)
			assert.False(t, status.Seeded)
		})

		first, err := flow.Reconcile(ctx)
		require.NoError(t, err)
		require.NotZero(t, first.CampaignID)

		second, err := flow.Reconcile(ctx)
		require.NoError(t, err)

		t.Run("ReconcileReturnsSameRows", func(t *testing.T) {
			assert.Equal(t, first.MarketplaceID, second.MarketplaceID)
			assert.Equal(t, first.CampaignID, second.CampaignID)
			assert.Equal(t, first.TargetID, second.TargetID)
			assert.Equal(t, first.CampaignSlug, second.CampaignSlug)
		})

		t.Run("StatusAfterSeeding", func(t *testing.T) {
			status, err := flow.Status(ctx)
			require.NoError(t, err)
			assert.True(t, status.Seeded)
			assert.Equal(t, first.CampaignSlug, status.CampaignSlug)
			assert.Equal(t, "https://go.example.com/c/"+first.ShortLinkSlug, status.ScanURL)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestStatsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		flow := NewStatsFlow(
			repository.NewMarketplaceRepository(testDB.DB),
			repository.NewCampaignRepository(testDB.DB),
			repository.NewReviewTargetRepository(testDB.DB),
			repository.NewShortLinkRepository(testDB.DB),
			repository.NewScanEventRepository(testDB.DB),
			repository.NewReviewSubmissionRepository(testDB.DB),
		)

		campaign, link, err := fixtures.CreateTestFunnel()
		require.NoError(t, err)

		_, err = fixtures.CreateTestScanEvent(link.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSubmission(campaign, testingutil.GenerateTestOrderNumber())
		require.NoError(t, err)

		t.Run("Counts", func(t *testing.T) {
			stats, err := flow.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.Marketplaces)
			assert.Equal(t, int64(1), stats.Campaigns)
			assert.Equal(t, int64(1), stats.Targets)
			assert.Equal(t, int64(1), stats.ShortLinks)
			assert.Equal(t, int64(1), stats.Scans)
			assert.Equal(t, int64(1), stats.Submissions)
		})

		t.Run("ScansExport", func(t *testing.T) {
			filename, payload, err := flow.DownloadScansExcel(ctx, campaign.Slug)
			require.NoError(t, err)
			assert.Contains(t, filename, campaign.Slug)
			assert.Contains(t, filename, ".xlsx")
			assert.NotEmpty(t, payload)
			// xlsx containers are zip archives
			assert.Equal(t, []byte{'P', 'K'}, payload[:2])
		})

		t.Run("SubmissionsExport", func(t *testing.T) {
			filename, payload, err := flow.DownloadSubmissionsExcel(ctx, campaign.Slug)
			require.NoError(t, err)
			assert.Contains(t, filename, ".xlsx")
			assert.NotEmpty(t, payload)
		})

		t.Run("UnknownCampaignSlug", func(t *testing.T) {
			_, _, err := flow.DownloadScansExcel(ctx, "missing-slug")
			assert.ErrorIs(t, err, ErrCampaignNotFound)
		})

		return nil
	})
	require.NoError(t, err)
}
