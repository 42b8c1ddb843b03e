package models

import "time"

// ShortLink is the public redirect entry point for a campaign
// Slug forms the scan path /c/<slug> and must be unique
type ShortLink struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Slug       string `gorm:"size:64;not null;uniqueIndex:uk_short_links_slug" json:"slug"`
	CampaignID uint   `gorm:"not null;index:idx_short_links_campaign_id" json:"campaign_id"`

	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_short_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for ShortLink
func (ShortLink) TableName() string { return "short_links" }

// ShortLinkFilter provides filter fields for repository queries
type ShortLinkFilter struct {
	ID            *uint
	Slug          *string
	CampaignID    *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
