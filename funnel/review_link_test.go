package funnel

import (
	"testing"

	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReviewURL(t *testing.T) {
	t.Run("AmazonASINWithTLD", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "AMAZON",
			ASIN:     utils.ToPtr("B0ABCDEFGH"),
			TLD:      utils.ToPtr("co.uk"),
		})
		require.NotNil(t, got)
		assert.Equal(t, "https://www.amazon.co.uk/review/create-review?asin=B0ABCDEFGH", *got)
	})

	t.Run("AmazonDefaultsTLD", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "amazon",
			ASIN:     utils.ToPtr("B0ABCDEFGH"),
		})
		require.NotNil(t, got)
		assert.Equal(t, "https://www.amazon.co.uk/review/create-review?asin=B0ABCDEFGH", *got)
	})

	t.Run("AmazonShortASINUnresolvable", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "AMAZON",
			ASIN:     utils.ToPtr("B0SHORT"),
		})
		assert.Nil(t, got)
	})

	t.Run("AmazonASINIsQueryEscaped", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "AMAZON",
			ASIN:     utils.ToPtr("B0ABC&EF=GH"),
		})
		require.NotNil(t, got)
		assert.Equal(t, "https://www.amazon.co.uk/review/create-review?asin=B0ABC%26EF%3DGH", *got)
	})

	t.Run("DirectURLWins", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "AMAZON",
			ASIN:     utils.ToPtr("B0ABCDEFGH"),
			URL:      utils.ToPtr("https://example.com/reviews/new"),
		})
		require.NotNil(t, got)
		assert.Equal(t, "https://example.com/reviews/new", *got)
	})

	t.Run("GooglePlaceID", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "GOOGLE",
			PlaceID:  utils.ToPtr("ChIJN1t_tDeuEmsRUsoyG83frY4"),
		})
		require.NotNil(t, got)
		assert.Equal(t, "https://search.google.com/local/writereview?placeid=ChIJN1t_tDeuEmsRUsoyG83frY4", *got)
	})

	t.Run("EbayItemID", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "EBAY",
			ItemID:   utils.ToPtr("123456789012"),
		})
		require.NotNil(t, got)
		assert.Equal(t, "https://www.ebay.co.uk/itm/123456789012", *got)
	})

	t.Run("UnknownPlatformUnresolvable", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "SHOPIFY",
			ASIN:     utils.ToPtr("B0ABCDEFGH"),
		})
		assert.Nil(t, got)
	})

	t.Run("MissingIdentifierUnresolvable", func(t *testing.T) {
		assert.Nil(t, BuildReviewURL(ReviewLinkInput{Platform: "AMAZON"}))
		assert.Nil(t, BuildReviewURL(ReviewLinkInput{Platform: "GOOGLE"}))
		assert.Nil(t, BuildReviewURL(ReviewLinkInput{Platform: "EBAY"}))
	})

	t.Run("WhitespaceIdentifiersIgnored", func(t *testing.T) {
		got := BuildReviewURL(ReviewLinkInput{
			Platform: "AMAZON",
			ASIN:     utils.ToPtr("   "),
			URL:      utils.ToPtr("  "),
		})
		assert.Nil(t, got)
	})
}

func TestReviewLinkInputForTarget(t *testing.T) {
	t.Run("MarketplaceFillsPlatformAndTLD", func(t *testing.T) {
		target := &models.ReviewTarget{
			ASIN: utils.ToPtr("B0ABCDEFGH"),
		}
		marketplace := &models.Marketplace{
			Platform: models.PlatformAmazon,
			TLD:      utils.ToPtr("de"),
		}

		in := ReviewLinkInputForTarget(target, marketplace)
		assert.Equal(t, models.PlatformAmazon, in.Platform)
		require.NotNil(t, in.TLD)
		assert.Equal(t, "de", *in.TLD)

		got := BuildReviewURL(in)
		require.NotNil(t, got)
		assert.Equal(t, "https://www.amazon.de/review/create-review?asin=B0ABCDEFGH", *got)
	})

	t.Run("TargetPlatformWins", func(t *testing.T) {
		target := &models.ReviewTarget{
			Platform: models.PlatformGoogle,
			PlaceID:  utils.ToPtr("place-1"),
		}
		marketplace := &models.Marketplace{Platform: models.PlatformAmazon}

		in := ReviewLinkInputForTarget(target, marketplace)
		assert.Equal(t, models.PlatformGoogle, in.Platform)
	})

	t.Run("NilMarketplace", func(t *testing.T) {
		target := &models.ReviewTarget{
			Platform: models.PlatformAmazon,
			ASIN:     utils.ToPtr("B0ABCDEFGH"),
		}

		in := ReviewLinkInputForTarget(target, nil)
		assert.Nil(t, in.TLD)
		require.NotNil(t, BuildReviewURL(in))
	})
}
