// Package models contains the GORM entities and query filter structs for the review funnel schema
package models

import "time"

// Platform enumerates the review platforms a marketplace or target can point at
const (
	PlatformAmazon  = "AMAZON"
	PlatformEbay    = "EBAY"
	PlatformGoogle  = "GOOGLE"
	PlatformShopify = "SHOPIFY"
	PlatformCustom  = "CUSTOM"
)

// Marketplace represents a sales channel a campaign belongs to (e.g. Amazon UK)
// NaturalKey is a stable external identifier used by the idempotent seeding routine
// TLD is optional; the review link resolver falls back to co.uk when absent
type Marketplace struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	NaturalKey string  `gorm:"size:64;not null;uniqueIndex:uk_marketplaces_natural_key" json:"natural_key"`
	Platform   string  `gorm:"size:16;not null;index:idx_marketplaces_platform" json:"platform"`
	Code       string  `gorm:"size:24;not null" json:"code"`
	TLD        *string `gorm:"size:12" json:"tld,omitempty"`
	ExternalID *string `gorm:"size:64" json:"external_id,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Marketplace
func (Marketplace) TableName() string { return "marketplaces" }

// MarketplaceFilter provides filter fields for repository queries
type MarketplaceFilter struct {
	ID         *uint
	NaturalKey *string
	Platform   *string
	Code       *string
}
