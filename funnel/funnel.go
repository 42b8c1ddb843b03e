package funnel

// ClientMetadata holds client-related information handlers pass into flows
// for scan recording and audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetOrigin sets the scheme://host origin of the inbound request, used as the
// landing-page base when no public base URL is configured
func (cm *ClientMetadata) SetOrigin(origin string) {
	cm.Origin = origin
}
