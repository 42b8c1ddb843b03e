package dto

// StartWizardRequest opens a wizard session for a campaign landing page
type StartWizardRequest struct {
	CampaignSlug string `json:"campaignSlug" validate:"required,min=3,max=64"`
}

// WizardStateResponse is the machine snapshot returned after every wizard
// interaction; the client renders entirely from it
type WizardStateResponse struct {
	ID                 string       `json:"id"`
	State              string       `json:"state"`
	Step               int          `json:"step"`
	CampaignID         uint         `json:"campaignId"`
	CampaignName       string       `json:"campaignName"`
	CampaignSlug       string       `json:"campaignSlug"`
	ProductName        string       `json:"productName"`
	OrderNumber        string       `json:"orderNumber"`
	Used7Days          bool         `json:"used7Days"`
	Rating             int          `json:"rating"`
	ReviewText         string       `json:"reviewText"`
	Email              *string      `json:"email,omitempty"`
	MarketingOptIn     bool         `json:"marketingOptIn"`
	ReviewURL          *string      `json:"reviewUrl,omitempty"`
	HasOpenedExternal  bool         `json:"hasOpenedExternal"`
	CountdownRemaining int          `json:"countdownRemaining"`
	FieldErrors        []FieldError `json:"fieldErrors,omitempty"`
	SubmitError        string       `json:"submitError,omitempty"`
	SubmissionID       string       `json:"submissionId,omitempty"`
}

// OpenExternalResponse tells the client what to copy and where to navigate
type OpenExternalResponse struct {
	ReviewURL  string `json:"reviewUrl"`
	ReviewText string `json:"reviewText"`
}
