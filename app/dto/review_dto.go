package dto

// MarketplaceDescriptor mirrors the marketplace the submitting client saw
type MarketplaceDescriptor struct {
	Platform string `json:"platform" validate:"required,min=2,max=40"`
	Code     string `json:"code" validate:"required,min=2,max=24"`
	TLD      string `json:"tld" validate:"required,min=2,max=12"`
}

// TargetDescriptor is the resolved-target snapshot a submission may carry
// At least one identifier is expected when present; a direct URL wins
type TargetDescriptor struct {
	Platform string  `json:"platform" validate:"omitempty,min=2,max=40"`
	ASIN     *string `json:"asin,omitempty" validate:"omitempty,len=10"`
	ItemID   *string `json:"itemId,omitempty" validate:"omitempty,max=32"`
	PlaceID  *string `json:"placeId,omitempty" validate:"omitempty,max=128"`
	URL      *string `json:"url,omitempty" validate:"omitempty,url"`
}

// SubmitReviewRequest is the payload of POST /api/v1/reviews.
// Field names follow the public wire format consumed by the wizard client.
type SubmitReviewRequest struct {
	CampaignID     uint                  `json:"campaignId" validate:"required"`
	CampaignName   string                `json:"campaignName" validate:"required,max=120"`
	Marketplace    MarketplaceDescriptor `json:"marketplace" validate:"required"`
	ProductName    string                `json:"productName" validate:"required,max=200"`
	OrderNumber    string                `json:"orderNumber" validate:"required,amazon_order"`
	Used7Days      bool                  `json:"used7Days" validate:"eq=true"`
	Rating         int                   `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText     string                `json:"reviewText" validate:"required,min=40,max=2000"`
	Email          *string               `json:"email,omitempty" validate:"omitempty,email"`
	MarketingOptIn bool                  `json:"marketingOptIn"`
	Target         *TargetDescriptor     `json:"target,omitempty"`
}

// SubmitReviewResponse is the 201 body: ok plus the submission reference id
type SubmitReviewResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// SubmitReviewErrorResponse carries structured field errors for 422/404/409
type SubmitReviewErrorResponse struct {
	OK     bool         `json:"ok"`
	Errors []FieldError `json:"errors,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// LandingTarget is one selectable product on the landing page
type LandingTarget struct {
	Platform  string  `json:"platform"`
	ASIN      *string `json:"asin,omitempty"`
	ItemID    *string `json:"itemId,omitempty"`
	PlaceID   *string `json:"placeId,omitempty"`
	URL       *string `json:"url,omitempty"`
	Title     *string `json:"title,omitempty"`
	Image     *string `json:"image,omitempty"`
	IsPrimary bool    `json:"isPrimary"`
	ReviewURL *string `json:"reviewUrl,omitempty"`
}

// LandingPageResponse is the payload GET /r/:slug serves to the wizard client
type LandingPageResponse struct {
	CampaignID   uint                  `json:"campaignId"`
	CampaignName string                `json:"campaignName"`
	CampaignSlug string                `json:"campaignSlug"`
	Marketplace  MarketplaceDescriptor `json:"marketplace"`
	Targets      []LandingTarget       `json:"targets"`
}
