package models

import "time"

// ScanEvent records one resolution of a short link
// IPHash is a one-way sha256 hash of the client IP; the raw IP is never stored
// UserAgent is kept verbatim (not considered sensitive)
// Rows are append-only: never updated or deleted by the system
type ScanEvent struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ShortLinkID uint    `gorm:"not null;index:idx_scan_events_short_link_id" json:"short_link_id"`
	IPHash      string  `gorm:"size:64;not null" json:"ip_hash"`
	UserAgent   *string `gorm:"type:text" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_scan_events_created_at" json:"created_at"`
}

// TableName returns the table name for ScanEvent
func (ScanEvent) TableName() string { return "scan_events" }

// ScanEventFilter provides filter fields for repository queries
type ScanEventFilter struct {
	ID            *uint
	ShortLinkID   *uint
	IPHash        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
