package funnel

import (
	"net/url"
	"strings"

	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/utils"
)

// ReviewLinkInput is everything the resolver needs to compute an external
// review-submission URL for one target
type ReviewLinkInput struct {
	Platform string
	ASIN     *string
	ItemID   *string
	PlaceID  *string
	URL      *string
	TLD      *string
}

// BuildReviewURL maps a target's platform and identifier to the external
// review page URL, or nil when no usable identifier exists.
// Resolution order: a direct URL wins; otherwise the normalized platform
// selects a template. Identifiers are percent-encoded on interpolation.
// Pure function: no side effects, never errors.
func BuildReviewURL(in ReviewLinkInput) *string {
	if direct := trimPtr(in.URL); direct != "" {
		return utils.ToPtr(direct)
	}

	tld := trimPtr(in.TLD)
	if tld == "" {
		tld = utils.DefaultMarketplaceTLD
	}

	switch strings.ToLower(strings.TrimSpace(in.Platform)) {
	case "amazon":
		asin := trimPtr(in.ASIN)
		if len(asin) >= 10 {
			u := "https://www.amazon." + tld + "/review/create-review?asin=" + url.QueryEscape(asin)
			return utils.ToPtr(u)
		}
		return nil
	case "google":
		placeID := trimPtr(in.PlaceID)
		if placeID != "" {
			u := "https://search.google.com/local/writereview?placeid=" + url.QueryEscape(placeID)
			return utils.ToPtr(u)
		}
		return nil
	case "ebay":
		itemID := trimPtr(in.ItemID)
		if itemID != "" {
			u := "https://www.ebay.co.uk/itm/" + url.PathEscape(itemID)
			return utils.ToPtr(u)
		}
		return nil
	default:
		return nil
	}
}

// ReviewLinkInputForTarget assembles resolver input from a stored target and
// its campaign's marketplace
func ReviewLinkInputForTarget(target *models.ReviewTarget, marketplace *models.Marketplace) ReviewLinkInput {
	in := ReviewLinkInput{
		Platform: target.Platform,
		ASIN:     target.ASIN,
		ItemID:   target.ItemID,
		PlaceID:  target.PlaceID,
		URL:      target.URL,
	}
	if marketplace != nil {
		in.TLD = marketplace.TLD
		if strings.TrimSpace(in.Platform) == "" {
			in.Platform = marketplace.Platform
		}
	}
	return in
}

func trimPtr(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
