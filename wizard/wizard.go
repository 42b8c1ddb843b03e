// Package wizard implements the multi-step review submission state machine.
// The machine is held server-side, keyed by session id, and every client
// interaction (field edits, step navigation, the external-review gate, final
// submission) is an explicit transition on it.
package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/funnel"
	"github.com/reviewloop/reviewloop/utils"
)

// Step identifies one of the five ordered wizard steps
type Step int

const (
	StepProductAndOrder Step = iota
	StepUsageAndRating
	StepReview
	StepContactAndConsent
	StepConfirmAndSubmit
)

// State is the machine's coarse state: either on a step, parked on the
// early-review warning, or submitted
type State string

const (
	StateStep               State = "step"
	StateEarlyReviewWarning State = "early_review_warning"
	StateSubmitted          State = "submitted"
)

// CountdownDuration is how long the external-review countdown runs after
// OpenExternal before a rating >= RatingGateThreshold may advance past Review
const (
	CountdownDuration   = 10 * time.Second
	RatingGateThreshold = 4
	firstStep           = StepProductAndOrder
	lastStep            = StepConfirmAndSubmit
)

// Wizard operation errors
var (
	ErrWizardSubmitted   = errors.New("wizard already submitted")
	ErrNotOnFinalStep    = errors.New("submission is only allowed from the final step")
	ErrWarningIsHardStop = errors.New("early review warning only permits going back")
	ErrExternalNotReady  = errors.New("external review page requires a resolvable review URL and review text")
	ErrSubmitInFlight    = errors.New("a submission is already in flight")
	ErrSessionNotFound   = errors.New("wizard session not found")
)

// Submitter dispatches a completed wizard to the submission endpoint logic.
// funnel.SubmissionFlow satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req *dto.SubmitReviewRequest, metadata *funnel.ClientMetadata) (*funnel.SubmissionResult, error)
}

// Fields holds every user-editable wizard field
type Fields struct {
	ProductName    string  `json:"productName"`
	OrderNumber    string  `json:"orderNumber"`
	Used7Days      bool    `json:"used7Days"`
	Rating         int     `json:"rating"`
	ReviewText     string  `json:"reviewText"`
	Email          *string `json:"email,omitempty"`
	MarketingOptIn bool    `json:"marketingOptIn"`
}

// FieldPatch is a partial update of Fields; nil members are left untouched
type FieldPatch struct {
	ProductName    *string `json:"productName,omitempty"`
	OrderNumber    *string `json:"orderNumber,omitempty"`
	Used7Days      *bool   `json:"used7Days,omitempty"`
	Rating         *int    `json:"rating,omitempty"`
	ReviewText     *string `json:"reviewText,omitempty"`
	Email          *string `json:"email,omitempty"`
	MarketingOptIn *bool   `json:"marketingOptIn,omitempty"`
}

// Machine is one wizard session. All exported fields are serialized into the
// session store; the clock is injected so countdown behavior is testable.
type Machine struct {
	ID           uuid.UUID                 `json:"id"`
	CampaignID   uint                      `json:"campaign_id"`
	CampaignName string                    `json:"campaign_name"`
	CampaignSlug string                    `json:"campaign_slug"`
	Marketplace  dto.MarketplaceDescriptor `json:"marketplace"`
	Target       *dto.TargetDescriptor     `json:"target,omitempty"`
	ReviewURL    *string                   `json:"review_url,omitempty"`

	State  State  `json:"state"`
	Step   Step   `json:"step"`
	Fields Fields `json:"fields"`

	HasOpenedExternal bool       `json:"has_opened_external"`
	CountdownDeadline *time.Time `json:"countdown_deadline,omitempty"`

	FieldErrors  []dto.FieldError `json:"field_errors,omitempty"`
	SubmitError  string           `json:"submit_error,omitempty"`
	SubmissionID string           `json:"submission_id,omitempty"`
	Submitting   bool             `json:"submitting"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	now func() time.Time
}

// NewMachine starts a session for one campaign's landing data
func NewMachine(landing *dto.LandingPageResponse) *Machine {
	m := &Machine{
		ID:           uuid.New(),
		CampaignID:   landing.CampaignID,
		CampaignName: landing.CampaignName,
		CampaignSlug: landing.CampaignSlug,
		Marketplace:  landing.Marketplace,
		State:        StateStep,
		Step:         firstStep,
	}
	m.CreatedAt = m.clock()
	m.UpdatedAt = m.CreatedAt

	if target := primaryLandingTarget(landing.Targets); target != nil {
		m.Target = &dto.TargetDescriptor{
			Platform: target.Platform,
			ASIN:     target.ASIN,
			ItemID:   target.ItemID,
			PlaceID:  target.PlaceID,
			URL:      target.URL,
		}
		m.ReviewURL = target.ReviewURL
		if target.Title != nil {
			m.Fields.ProductName = *target.Title
		}
	}
	return m
}

func primaryLandingTarget(targets []dto.LandingTarget) *dto.LandingTarget {
	for i := range targets {
		if targets[i].IsPrimary {
			return &targets[i]
		}
	}
	if len(targets) == 1 {
		return &targets[0]
	}
	return nil
}

// SetClock injects a deterministic clock
func (m *Machine) SetClock(now func() time.Time) { m.now = now }

func (m *Machine) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return utils.UTCNow()
}

// Apply merges a field patch. Changing the rating resets the external-review
// gate, so a downgraded-then-upgraded rating cannot ride an old countdown.
func (m *Machine) Apply(patch FieldPatch) error {
	if m.State == StateSubmitted {
		return ErrWizardSubmitted
	}

	if patch.ProductName != nil {
		m.Fields.ProductName = strings.TrimSpace(*patch.ProductName)
	}
	if patch.OrderNumber != nil {
		m.Fields.OrderNumber = strings.TrimSpace(*patch.OrderNumber)
	}
	if patch.Used7Days != nil {
		m.Fields.Used7Days = *patch.Used7Days
	}
	if patch.Rating != nil && *patch.Rating != m.Fields.Rating {
		m.Fields.Rating = *patch.Rating
		m.HasOpenedExternal = false
		m.CountdownDeadline = nil
	}
	if patch.ReviewText != nil {
		m.Fields.ReviewText = *patch.ReviewText
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			m.Fields.Email = nil
		} else {
			m.Fields.Email = &email
		}
	}
	if patch.MarketingOptIn != nil {
		m.Fields.MarketingOptIn = *patch.MarketingOptIn
	}

	m.touch()
	return nil
}

// Next advances one step after validating only the fields the current step
// owns. Validation failures keep the step and record field errors.
func (m *Machine) Next(validate *validator.Validate) error {
	switch m.State {
	case StateSubmitted:
		return ErrWizardSubmitted
	case StateEarlyReviewWarning:
		return ErrWarningIsHardStop
	}

	// The early-review warning preempts validation: used7Days=false is a
	// hard stop regardless of what else is on the step
	if m.Step == StepUsageAndRating && !m.Fields.Used7Days {
		m.State = StateEarlyReviewWarning
		m.FieldErrors = nil
		m.touch()
		return nil
	}

	m.FieldErrors = m.validateStep(validate, m.Step)
	if len(m.FieldErrors) > 0 {
		m.touch()
		return nil
	}

	if m.Step == StepReview && m.Fields.Rating >= RatingGateThreshold && !m.externalGateOpen() {
		m.FieldErrors = []dto.FieldError{{
			Path:    "reviewText",
			Message: "Open the external review page and wait for the countdown before continuing",
		}}
		m.touch()
		return nil
	}

	if m.Step < lastStep {
		m.Step++
	}
	m.touch()
	return nil
}

// Back moves one step backward, always without validation. From the early
// review warning it is the only exit, returning to the usage step.
func (m *Machine) Back() error {
	switch m.State {
	case StateSubmitted:
		return ErrWizardSubmitted
	case StateEarlyReviewWarning:
		m.State = StateStep
		m.Step = StepUsageAndRating
		m.FieldErrors = nil
		m.touch()
		return nil
	}

	if m.Step > firstStep {
		m.Step--
	}
	m.FieldErrors = nil
	m.touch()
	return nil
}

// OpenExternal arms the high-rating gate: it is only possible with a
// resolvable review URL and non-empty review text, and returns both so the
// client can copy the text and open the page. The countdown starts now.
func (m *Machine) OpenExternal() (reviewURL, reviewText string, err error) {
	if m.State == StateSubmitted {
		return "", "", ErrWizardSubmitted
	}
	if m.ReviewURL == nil || strings.TrimSpace(*m.ReviewURL) == "" || strings.TrimSpace(m.Fields.ReviewText) == "" {
		return "", "", ErrExternalNotReady
	}

	deadline := m.clock().Add(CountdownDuration)
	m.HasOpenedExternal = true
	m.CountdownDeadline = &deadline
	m.touch()
	return *m.ReviewURL, m.Fields.ReviewText, nil
}

// CountdownRemaining reports the seconds left on the external-review
// countdown, zero when elapsed or never started
func (m *Machine) CountdownRemaining() int {
	if m.CountdownDeadline == nil {
		return 0
	}
	remaining := m.CountdownDeadline.Sub(m.clock())
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Round(time.Second).Seconds())
}

func (m *Machine) externalGateOpen() bool {
	return m.HasOpenedExternal && m.CountdownDeadline != nil && !m.clock().Before(*m.CountdownDeadline)
}

// Submit validates the whole form and dispatches it. Field-level business
// failures (unknown campaign, duplicate order) re-populate field errors and
// jump back to the owning step; unexpected failures keep the final step with
// a retryable error and are returned to the caller for logging.
func (m *Machine) Submit(ctx context.Context, validate *validator.Validate, submitter Submitter, metadata *funnel.ClientMetadata) error {
	if m.State == StateSubmitted {
		return ErrWizardSubmitted
	}
	if m.State == StateEarlyReviewWarning {
		return ErrWarningIsHardStop
	}
	if m.Step != lastStep {
		return ErrNotOnFinalStep
	}
	if m.Submitting {
		return ErrSubmitInFlight
	}

	req := m.buildRequest()

	m.FieldErrors = fieldErrorsFromValidator(validate.Struct(req))
	if len(m.FieldErrors) > 0 {
		m.jumpToFirstError()
		m.touch()
		return nil
	}

	m.Submitting = true
	m.SubmitError = ""
	defer func() { m.Submitting = false }()

	result, err := submitter.Submit(ctx, req, metadata)
	if err != nil {
		switch {
		case funnel.IsCampaignNotFound(err):
			m.FieldErrors = []dto.FieldError{{Path: "campaignId", Message: "Campaign not found"}}
			m.jumpToFirstError()
			m.touch()
			return nil
		case funnel.IsDuplicateSubmission(err):
			m.FieldErrors = []dto.FieldError{{Path: "orderNumber", Message: "A review for this order was already submitted"}}
			m.jumpToFirstError()
			m.touch()
			return nil
		default:
			m.SubmitError = "Submission failed, please try again"
			m.touch()
			return err
		}
	}

	m.State = StateSubmitted
	m.SubmissionID = result.ID
	m.FieldErrors = nil
	m.touch()
	return nil
}

func (m *Machine) buildRequest() *dto.SubmitReviewRequest {
	return &dto.SubmitReviewRequest{
		CampaignID:     m.CampaignID,
		CampaignName:   m.CampaignName,
		Marketplace:    m.Marketplace,
		ProductName:    m.Fields.ProductName,
		OrderNumber:    m.Fields.OrderNumber,
		Used7Days:      m.Fields.Used7Days,
		Rating:         m.Fields.Rating,
		ReviewText:     m.Fields.ReviewText,
		Email:          m.Fields.Email,
		MarketingOptIn: m.Fields.MarketingOptIn,
		Target:         m.Target,
	}
}

func (m *Machine) touch() { m.UpdatedAt = m.clock() }

// stepOwning maps a wire field path to the step that owns it. Campaign and
// marketplace context fields belong to the first step since that is where the
// user can re-orient.
func stepOwning(path string) Step {
	root := path
	if i := strings.IndexByte(root, '.'); i >= 0 {
		root = root[:i]
	}
	switch root {
	case "productName", "orderNumber", "campaignId", "campaignName", "marketplace", "target":
		return StepProductAndOrder
	case "used7Days", "rating":
		return StepUsageAndRating
	case "reviewText":
		return StepReview
	case "email", "marketingOptIn":
		return StepContactAndConsent
	default:
		return StepConfirmAndSubmit
	}
}

func (m *Machine) jumpToFirstError() {
	if len(m.FieldErrors) == 0 {
		return
	}
	first := stepOwning(m.FieldErrors[0].Path)
	for _, fe := range m.FieldErrors[1:] {
		if s := stepOwning(fe.Path); s < first {
			first = s
		}
	}
	m.State = StateStep
	m.Step = first
}

// validateStep validates the assembled request but keeps only errors for
// fields the given step owns; the final step keeps everything
func (m *Machine) validateStep(validate *validator.Validate, step Step) []dto.FieldError {
	all := fieldErrorsFromValidator(validate.Struct(m.buildRequest()))
	if step == lastStep {
		return all
	}

	var owned []dto.FieldError
	for _, fe := range all {
		if stepOwning(fe.Path) == step {
			owned = append(owned, fe)
		}
	}
	return owned
}

// fieldErrorsFromValidator flattens validator errors into wire field paths.
// The validator is configured with json tag names, so namespaces look like
// SubmitReviewRequest.marketplace.platform; the struct prefix is stripped.
func fieldErrorsFromValidator(err error) []dto.FieldError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.FieldError{{Path: "", Message: "Invalid payload"}}
	}

	out := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, dto.FieldError{Path: path, Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "amazon_order":
		return "Order number must match the pattern 123-1234567-1234567"
	case "eq":
		return "Must be confirmed"
	case "gte", "min":
		return "Value is too small or too short"
	case "lte", "max":
		return "Value is too large or too long"
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL"
	case "len":
		return "Value has the wrong length"
	default:
		return "Invalid value"
	}
}
