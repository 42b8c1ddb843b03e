// Package funnel contains the core business logic for the review funnel:
// short-link scanning, review-URL resolution, wizard submissions, seeding,
// and the administrative creation flows.
package funnel

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Lookup errors
	ErrShortLinkNotFound   = errors.New("short link not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrMarketplaceNotFound = errors.New("marketplace not found")

	// Submission errors
	ErrDuplicateSubmission = errors.New("order already submitted for this campaign")

	// Creation errors
	ErrSlugAlreadyExists     = errors.New("slug already exists")
	ErrTargetNotResolvable   = errors.New("target has no resolvable identifier")
	ErrMarketplaceIDRequired = errors.New("marketplace ID is required")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsShortLinkNotFound(err error) bool {
	return errors.Is(err, ErrShortLinkNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsMarketplaceNotFound(err error) bool {
	return errors.Is(err, ErrMarketplaceNotFound)
}

func IsDuplicateSubmission(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission)
}

func IsSlugAlreadyExists(err error) bool {
	return errors.Is(err, ErrSlugAlreadyExists)
}

func IsTargetNotResolvable(err error) bool {
	return errors.Is(err, ErrTargetNotResolvable)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}
