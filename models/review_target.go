package models

import "time"

// ReviewTarget is a specific product or listing a campaign wants reviewed.
// Exactly one of ASIN, ItemID, PlaceID, or URL is expected to be populated;
// a direct URL wins over platform identifiers during resolution.
// IsPrimary selects the default target when a campaign has several.
type ReviewTarget struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	NaturalKey string  `gorm:"size:64;not null;uniqueIndex:uk_review_targets_natural_key" json:"natural_key"`
	CampaignID uint    `gorm:"not null;index:idx_review_targets_campaign_id" json:"campaign_id"`
	Platform   string  `gorm:"size:16;not null" json:"platform"`
	ASIN       *string `gorm:"size:16" json:"asin,omitempty"`
	ItemID     *string `gorm:"size:32" json:"item_id,omitempty"`
	PlaceID    *string `gorm:"size:128" json:"place_id,omitempty"`
	URL        *string `gorm:"type:text" json:"url,omitempty"`
	Title      *string `gorm:"size:200" json:"title,omitempty"`
	Image      *string `gorm:"type:text" json:"image,omitempty"`
	IsPrimary  bool    `gorm:"not null;default:false;index:idx_review_targets_is_primary" json:"is_primary"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for ReviewTarget
func (ReviewTarget) TableName() string { return "review_targets" }

// HasIdentifier reports whether any identifier field is populated
func (t *ReviewTarget) HasIdentifier() bool {
	return t.ASIN != nil || t.ItemID != nil || t.PlaceID != nil || t.URL != nil
}

// ReviewTargetFilter provides filter fields for repository queries
type ReviewTargetFilter struct {
	ID         *uint
	NaturalKey *string
	CampaignID *uint
	Platform   *string
	IsPrimary  *bool
}
