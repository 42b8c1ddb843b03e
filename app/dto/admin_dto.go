// Package dto
package dto

type AdminDTO struct {
	ID        uint   `json:"id" example:"1"`
	UUID      string `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Username  string `json:"username" example:"admin"`
	IsActive  *bool  `json:"is_active" example:"true"`
	CreatedAt string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type AdminSessionDTO struct {
	AccessToken  string `json:"access_token" example:"jwt"`
	RefreshToken string `json:"refresh_token" example:"jwt"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
	TokenType    string `json:"token_type" example:"Bearer"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type AdminLoginResponse struct {
	Admin   AdminDTO        `json:"admin"`
	Session AdminSessionDTO `json:"session"`
}

// Admin catalog creation requests. Natural keys make re-posting the same
// payload idempotent, mirroring how seeding reconciles fixtures.
type CreateMarketplaceRequest struct {
	NaturalKey string  `json:"natural_key" validate:"required,min=3,max=64"`
	Platform   string  `json:"platform" validate:"required,oneof=AMAZON EBAY GOOGLE SHOPIFY CUSTOM"`
	Code       string  `json:"code" validate:"required,min=2,max=24"`
	TLD        *string `json:"tld" validate:"omitempty,min=2,max=12"`
	ExternalID *string `json:"external_id" validate:"omitempty,max=64"`
}

type CreateCampaignRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=120"`
	Slug          string `json:"slug" validate:"required,min=3,max=64,excludesall= /"`
	MarketplaceID uint   `json:"marketplace_id" validate:"required,gt=0"`
}

type CreateReviewTargetRequest struct {
	NaturalKey string  `json:"natural_key" validate:"required,min=3,max=64"`
	CampaignID uint    `json:"campaign_id" validate:"required,gt=0"`
	Platform   string  `json:"platform" validate:"required,oneof=AMAZON EBAY GOOGLE SHOPIFY CUSTOM"`
	ASIN       *string `json:"asin" validate:"omitempty,min=10,max=16"`
	ItemID     *string `json:"item_id" validate:"omitempty,max=32"`
	PlaceID    *string `json:"place_id" validate:"omitempty,max=128"`
	URL        *string `json:"url" validate:"omitempty,url,max=2048"`
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Image      *string `json:"image" validate:"omitempty,url,max=2048"`
	IsPrimary  bool    `json:"is_primary"`
}

type CreateShortLinkRequest struct {
	Slug       string `json:"slug" validate:"required,min=3,max=64,excludesall= /"`
	CampaignID uint   `json:"campaign_id" validate:"required,gt=0"`
}

type MarketplaceDTO struct {
	ID         uint    `json:"id"`
	NaturalKey string  `json:"natural_key"`
	Platform   string  `json:"platform"`
	Code       string  `json:"code"`
	TLD        *string `json:"tld"`
	ExternalID *string `json:"external_id"`
	CreatedAt  string  `json:"created_at"`
}

type ReviewTargetDTO struct {
	ID         uint    `json:"id"`
	NaturalKey string  `json:"natural_key"`
	CampaignID uint    `json:"campaign_id"`
	Platform   string  `json:"platform"`
	ASIN       *string `json:"asin"`
	ItemID     *string `json:"item_id"`
	PlaceID    *string `json:"place_id"`
	URL        *string `json:"url"`
	Title      *string `json:"title"`
	Image      *string `json:"image"`
	IsPrimary  bool    `json:"is_primary"`
	ReviewURL  *string `json:"review_url"`
}

type ShortLinkDTO struct {
	ID         uint   `json:"id"`
	Slug       string `json:"slug"`
	CampaignID uint   `json:"campaign_id"`
	ScanURL    string `json:"scan_url"`
	CreatedAt  string `json:"created_at"`
}

type CampaignSummary struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Marketplace     MarketplaceDTO    `json:"marketplace"`
	Targets         []ReviewTargetDTO `json:"targets"`
	ShortLinks      []ShortLinkDTO    `json:"short_links"`
	ScanCount       int64             `json:"scan_count"`
	SubmissionCount int64             `json:"submission_count"`
	CreatedAt       string            `json:"created_at"`
}

type StatsResponse struct {
	Marketplaces int64 `json:"marketplaces"`
	Campaigns    int64 `json:"campaigns"`
	Targets      int64 `json:"targets"`
	ShortLinks   int64 `json:"short_links"`
	Scans        int64 `json:"scans"`
	Submissions  int64 `json:"submissions"`
}

type SeedStatusResponse struct {
	Seeded        bool   `json:"seeded"`
	CampaignSlug  string `json:"campaign_slug,omitempty"`
	ShortLinkSlug string `json:"short_link_slug,omitempty"`
	ScanURL       string `json:"scan_url,omitempty"`
}
