package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewSubmission is a completed wizard submission for a campaign.
// The pair (CampaignID, OrderNumber) is unique so the same order cannot be
// submitted twice; the composite index is the backstop behind the endpoint's
// duplicate pre-check.
// Target* fields snapshot the resolved review target at submission time.
type ReviewSubmission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_review_submissions_uuid" json:"uuid"`
	CampaignID     uint      `gorm:"not null;uniqueIndex:uk_review_submissions_campaign_order,priority:1;index:idx_review_submissions_campaign_id" json:"campaign_id"`
	CampaignName   string    `gorm:"size:120;not null" json:"campaign_name"`
	ProductName    string    `gorm:"size:200;not null" json:"product_name"`
	OrderNumber    string    `gorm:"size:24;not null;uniqueIndex:uk_review_submissions_campaign_order,priority:2" json:"order_number"`
	Used7Days      bool      `gorm:"not null" json:"used_7_days"`
	Rating         int       `gorm:"not null" json:"rating"`
	ReviewText     string    `gorm:"type:text;not null" json:"review_text"`
	Email          *string   `gorm:"size:254" json:"email,omitempty"`
	MarketingOptIn bool      `gorm:"not null;default:false" json:"marketing_opt_in"`

	TargetPlatform   *string `gorm:"size:16" json:"target_platform,omitempty"`
	TargetIdentifier *string `gorm:"size:128" json:"target_identifier,omitempty"`
	TargetURL        *string `gorm:"type:text" json:"target_url,omitempty"`

	IPHash    *string `gorm:"size:64" json:"ip_hash,omitempty"`
	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_review_submissions_created_at" json:"created_at"`
}

// TableName returns the table name for ReviewSubmission
func (ReviewSubmission) TableName() string { return "review_submissions" }

// ReviewSubmissionFilter provides filter fields for repository queries
type ReviewSubmissionFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CampaignID    *uint
	OrderNumber   *string
	Rating        *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
