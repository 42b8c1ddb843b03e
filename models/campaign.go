package models

import "time"

// Campaign represents a single marketing effort: one marketplace, one or more
// review targets, and one or more short links
// Slug forms the public landing page path /r/<slug> and must be unique
type Campaign struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:120;not null" json:"name"`
	Slug          string `gorm:"size:64;not null;uniqueIndex:uk_campaigns_slug" json:"slug"`
	MarketplaceID uint   `gorm:"not null;index:idx_campaigns_marketplace_id" json:"marketplace_id"`

	Marketplace *Marketplace   `gorm:"foreignKey:MarketplaceID" json:"marketplace,omitempty"`
	Targets     []ReviewTarget `gorm:"foreignKey:CampaignID" json:"targets,omitempty"`
	ShortLinks  []ShortLink    `gorm:"foreignKey:CampaignID" json:"short_links,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Campaign
func (Campaign) TableName() string { return "campaigns" }

// PrimaryTarget selects the target the redirect dispatcher should use:
// the one flagged primary, else the sole target, else nil
func (c *Campaign) PrimaryTarget() *ReviewTarget {
	for i := range c.Targets {
		if c.Targets[i].IsPrimary {
			return &c.Targets[i]
		}
	}
	if len(c.Targets) == 1 {
		return &c.Targets[0]
	}
	return nil
}

// CampaignFilter provides filter fields for repository queries
type CampaignFilter struct {
	ID            *uint
	Slug          *string
	MarketplaceID *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
