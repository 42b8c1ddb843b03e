package funnel

import (
	"testing"

	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	testingutil "github.com/reviewloop/reviewloop/testing"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFlowVisit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		shortLinkRepo := repository.NewShortLinkRepository(testDB.DB)
		scanRepo := repository.NewScanEventRepository(testDB.DB)
		flow := NewScanFlow(shortLinkRepo, scanRepo, "https://go.example.com")

		campaign, link, err := fixtures.CreateTestFunnel()
		require.NoError(t, err)

		t.Run("ExternalRedirectForResolvableTarget", func(t *testing.T) {
			metadata := NewClientMetadata("203.0.113.10", "test-agent/1.0")

			result, err := flow.Visit(ctx, link.Slug, metadata)
			require.NoError(t, err)
			assert.True(t, result.External)
			assert.Equal(t, campaign.Slug, result.CampaignSlug)
			assert.Equal(t, "https://www.amazon.co.uk/review/create-review?asin=B0TESTASIN", result.RedirectURL)

			// The scan event is recorded with a hashed IP, never the raw one
			var events []models.ScanEvent
			require.NoError(t, testDB.DB.Where("short_link_id = ?", link.ID).Find(&events).Error)
			require.Len(t, events, 1)
			assert.Equal(t, utils.HashIP("203.0.113.10"), events[0].IPHash)
			assert.NotContains(t, events[0].IPHash, "203.0.113.10")
			require.NotNil(t, events[0].UserAgent)
			assert.Equal(t, "test-agent/1.0", *events[0].UserAgent)
		})

		t.Run("LandingFallbackForMultiTarget", func(t *testing.T) {
			// A second target without a primary flag makes the campaign ambiguous
			second := &models.ReviewTarget{
				NaturalKey: "target-second-ambiguous",
				CampaignID: campaign.ID,
				Platform:   models.PlatformAmazon,
				ASIN:       utils.ToPtr("B0SECONDID"),
			}
			require.NoError(t, testDB.DB.Create(second).Error)
			require.NoError(t, testDB.DB.Model(&models.ReviewTarget{}).
				Where("campaign_id = ?", campaign.ID).
				Update("is_primary", false).Error)

			result, err := flow.Visit(ctx, link.Slug, NewClientMetadata("203.0.113.11", ""))
			require.NoError(t, err)
			assert.False(t, result.External)
			assert.Equal(t, "https://go.example.com/r/"+campaign.Slug, result.RedirectURL)
		})

		t.Run("UnknownSlugRecordsNothing", func(t *testing.T) {
			var before int64
			require.NoError(t, testDB.DB.Model(&models.ScanEvent{}).Count(&before).Error)

			_, err := flow.Visit(ctx, "no-such-slug", NewClientMetadata("203.0.113.12", ""))
			assert.ErrorIs(t, err, ErrShortLinkNotFound)

			var after int64
			require.NoError(t, testDB.DB.Model(&models.ScanEvent{}).Count(&after).Error)
			assert.Equal(t, before, after)
		})

		t.Run("EmptyUserAgentStoredAsNull", func(t *testing.T) {
			_, err := flow.Visit(ctx, link.Slug, NewClientMetadata("203.0.113.13", "   "))
			require.NoError(t, err)

			var event models.ScanEvent
			require.NoError(t, testDB.DB.
				Where("short_link_id = ? AND ip_hash = ?", link.ID, utils.HashIP("203.0.113.13")).
				First(&event).Error)
			assert.Nil(t, event.UserAgent)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestScanFlowScanURL(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		shortLinkRepo := repository.NewShortLinkRepository(testDB.DB)
		scanRepo := repository.NewScanEventRepository(testDB.DB)

		_, link, err := fixtures.CreateTestFunnel()
		require.NoError(t, err)

		t.Run("ConfiguredBaseURLWins", func(t *testing.T) {
			flow := NewScanFlow(shortLinkRepo, scanRepo, "https://go.example.com/")

			url, err := flow.ScanURL(ctx, link.Slug, NewClientMetadata("203.0.113.10", ""))
			require.NoError(t, err)
			assert.Equal(t, "https://go.example.com/c/"+link.Slug, url)
		})

		t.Run("FallsBackToRequestOrigin", func(t *testing.T) {
			flow := NewScanFlow(shortLinkRepo, scanRepo, "")
			metadata := NewClientMetadata("203.0.113.10", "")
			metadata.SetOrigin("https://origin.example.com")

			url, err := flow.ScanURL(ctx, link.Slug, metadata)
			require.NoError(t, err)
			assert.Equal(t, "https://origin.example.com/c/"+link.Slug, url)
		})

		t.Run("NoEventRecorded", func(t *testing.T) {
			flow := NewScanFlow(shortLinkRepo, scanRepo, "https://go.example.com")
			var before int64
			require.NoError(t, testDB.DB.Model(&models.ScanEvent{}).Count(&before).Error)

			_, err := flow.ScanURL(ctx, link.Slug, NewClientMetadata("203.0.113.10", ""))
			require.NoError(t, err)

			var after int64
			require.NoError(t, testDB.DB.Model(&models.ScanEvent{}).Count(&after).Error)
			assert.Equal(t, before, after)
		})

		t.Run("UnknownSlug", func(t *testing.T) {
			flow := NewScanFlow(shortLinkRepo, scanRepo, "https://go.example.com")
			_, err := flow.ScanURL(ctx, "missing", NewClientMetadata("203.0.113.10", ""))
			assert.ErrorIs(t, err, ErrShortLinkNotFound)
		})

		return nil
	})
	require.NoError(t, err)
}
