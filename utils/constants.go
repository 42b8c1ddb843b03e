package utils

import (
	"time"
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request context keys set by handlers for flows and audit logging
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for admin access tokens in seconds
	AccessTokenTTLSeconds = 86400
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Funnel constants
const (
	// DefaultMarketplaceTLD is used when a marketplace record carries no TLD
	DefaultMarketplaceTLD = "co.uk"

	// QRCacheMaxAge is the Cache-Control max-age for rendered QR images (7 days)
	QRCacheMaxAge = 604800

	// WizardSessionTTL is how long an abandoned wizard session is kept
	WizardSessionTTL = 2 * time.Hour
)
