package wizard

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/funnel"
	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReview = "This kettle boils fast, pours cleanly, and has survived daily use for months."

func newTestValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("amazon_order", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != 19 {
			return false
		}
		for i, char := range value {
			switch i {
			case 3, 11:
				if char != '-' {
					return false
				}
			default:
				if char < '0' || char > '9' {
					return false
				}
			}
		}
		return true
	})
	return validate
}

func testLanding() *dto.LandingPageResponse {
	return &dto.LandingPageResponse{
		CampaignID:   7,
		CampaignName: "Amazon UK – Sept",
		CampaignSlug: "amz-uk-sept",
		Marketplace: dto.MarketplaceDescriptor{
			Platform: "AMAZON",
			Code:     "UK",
			TLD:      "co.uk",
		},
		Targets: []dto.LandingTarget{
			{
				Platform:  "AMAZON",
				ASIN:      utils.ToPtr("B0ABCDEFGH"),
				Title:     utils.ToPtr("Electric Kettle"),
				IsPrimary: true,
				ReviewURL: utils.ToPtr("https://www.amazon.co.uk/review/create-review?asin=B0ABCDEFGH"),
			},
			{
				Platform: "AMAZON",
				ASIN:     utils.ToPtr("B0ZZZZZZZZ"),
			},
		},
	}
}

// fakeClock is a settable clock for countdown tests
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
}

func attachClock(m *Machine) *fakeClock {
	c := newFakeClock()
	m.SetClock(c.Now)
	return c
}

// fakeSubmitter records the request and returns a canned result or error
type fakeSubmitter struct {
	result  *funnel.SubmissionResult
	err     error
	calls   int
	lastReq *dto.SubmitReviewRequest
}

func (f *fakeSubmitter) Submit(_ context.Context, req *dto.SubmitReviewRequest, _ *funnel.ClientMetadata) (*funnel.SubmissionResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fillValid sets every field to a value that passes full validation
func fillValid(m *Machine) {
	m.Fields.ProductName = "Electric Kettle"
	m.Fields.OrderNumber = "123-1234567-1234567"
	m.Fields.Used7Days = true
	m.Fields.Rating = 5
	m.Fields.ReviewText = validReview
}

// driveToFinalStep walks a fully valid machine to the confirmation step,
// satisfying the external-review gate along the way
func driveToFinalStep(t *testing.T, m *Machine, clock *fakeClock, validate *validator.Validate) {
	t.Helper()
	fillValid(m)

	require.NoError(t, m.Next(validate)) // product and order
	require.Empty(t, m.FieldErrors)
	require.NoError(t, m.Next(validate)) // usage and rating
	require.Empty(t, m.FieldErrors)

	_, _, err := m.OpenExternal()
	require.NoError(t, err)
	clock.Advance(CountdownDuration)

	require.NoError(t, m.Next(validate)) // review
	require.Empty(t, m.FieldErrors)
	require.NoError(t, m.Next(validate)) // contact and consent
	require.Empty(t, m.FieldErrors)
	require.Equal(t, StepConfirmAndSubmit, m.Step)
}

func TestNewMachine(t *testing.T) {
	m := NewMachine(testLanding())

	assert.Equal(t, StateStep, m.State)
	assert.Equal(t, StepProductAndOrder, m.Step)
	assert.Equal(t, uint(7), m.CampaignID)

	// The flagged primary target wins over the other target
	require.NotNil(t, m.Target)
	require.NotNil(t, m.Target.ASIN)
	assert.Equal(t, "B0ABCDEFGH", *m.Target.ASIN)
	require.NotNil(t, m.ReviewURL)
	assert.Equal(t, "Electric Kettle", m.Fields.ProductName)
}

func TestNewMachineSoleTarget(t *testing.T) {
	landing := testLanding()
	landing.Targets = landing.Targets[1:]
	landing.Targets[0].IsPrimary = false

	m := NewMachine(landing)
	require.NotNil(t, m.Target)
	assert.Equal(t, "B0ZZZZZZZZ", *m.Target.ASIN)
}

func TestApplyRatingChangeResetsGate(t *testing.T) {
	m := NewMachine(testLanding())
	clock := attachClock(m)
	m.Fields.ReviewText = validReview
	m.Fields.Rating = 5

	_, _, err := m.OpenExternal()
	require.NoError(t, err)
	clock.Advance(CountdownDuration)
	require.True(t, m.HasOpenedExternal)

	require.NoError(t, m.Apply(FieldPatch{Rating: utils.ToPtr(4)}))
	assert.False(t, m.HasOpenedExternal)
	assert.Nil(t, m.CountdownDeadline)

	// Re-applying the same rating leaves the gate alone
	_, _, err = m.OpenExternal()
	require.NoError(t, err)
	require.NoError(t, m.Apply(FieldPatch{Rating: utils.ToPtr(4)}))
	assert.True(t, m.HasOpenedExternal)
}

func TestApplyEmptyEmailClears(t *testing.T) {
	m := NewMachine(testLanding())

	require.NoError(t, m.Apply(FieldPatch{Email: utils.ToPtr("buyer@example.com")}))
	require.NotNil(t, m.Fields.Email)

	require.NoError(t, m.Apply(FieldPatch{Email: utils.ToPtr("   ")}))
	assert.Nil(t, m.Fields.Email)
}

func TestNextValidatesOnlyCurrentStep(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	attachClock(m)

	// Order number is missing: the first step refuses to advance even though
	// later steps are also incomplete
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StepProductAndOrder, m.Step)
	require.NotEmpty(t, m.FieldErrors)
	for _, fe := range m.FieldErrors {
		assert.Equal(t, StepProductAndOrder, stepOwning(fe.Path))
	}

	require.NoError(t, m.Apply(FieldPatch{OrderNumber: utils.ToPtr("123-1234567-1234567")}))
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StepUsageAndRating, m.Step)
	assert.Empty(t, m.FieldErrors)
}

func TestNextRejectsMalformedOrderNumber(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	attachClock(m)

	require.NoError(t, m.Apply(FieldPatch{OrderNumber: utils.ToPtr("not-an-order")}))
	require.NoError(t, m.Next(validate))

	assert.Equal(t, StepProductAndOrder, m.Step)
	require.Len(t, m.FieldErrors, 1)
	assert.Equal(t, "orderNumber", m.FieldErrors[0].Path)
}

func TestEarlyReviewWarningIsHardStop(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	attachClock(m)
	fillValid(m)
	m.Fields.Used7Days = false

	require.NoError(t, m.Next(validate))
	require.Equal(t, StepUsageAndRating, m.Step)

	// used7Days=false parks the machine on the warning
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StateEarlyReviewWarning, m.State)

	// Only Back leaves the warning
	assert.ErrorIs(t, m.Next(validate), ErrWarningIsHardStop)
	sub := &fakeSubmitter{}
	assert.ErrorIs(t, m.Submit(context.Background(), validate, sub, nil), ErrWarningIsHardStop)
	assert.Zero(t, sub.calls)

	require.NoError(t, m.Back())
	assert.Equal(t, StateStep, m.State)
	assert.Equal(t, StepUsageAndRating, m.Step)
	assert.Empty(t, m.FieldErrors)
}

func TestHighRatingGate(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	clock := attachClock(m)
	fillValid(m)

	require.NoError(t, m.Next(validate))
	require.NoError(t, m.Next(validate))
	require.Equal(t, StepReview, m.Step)

	// Rating 5 cannot pass Review before the countdown has run
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StepReview, m.Step)
	require.Len(t, m.FieldErrors, 1)
	assert.Equal(t, "reviewText", m.FieldErrors[0].Path)

	_, _, err := m.OpenExternal()
	require.NoError(t, err)

	// Countdown still running
	clock.Advance(CountdownDuration / 2)
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StepReview, m.Step)

	clock.Advance(CountdownDuration)
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StepContactAndConsent, m.Step)
	assert.Empty(t, m.FieldErrors)
}

func TestLowRatingSkipsGate(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	attachClock(m)
	fillValid(m)
	m.Fields.Rating = 3

	require.NoError(t, m.Next(validate))
	require.NoError(t, m.Next(validate))
	require.NoError(t, m.Next(validate))
	assert.Equal(t, StepContactAndConsent, m.Step)
}

func TestOpenExternal(t *testing.T) {
	m := NewMachine(testLanding())
	clock := attachClock(m)

	// No review text yet
	_, _, err := m.OpenExternal()
	assert.ErrorIs(t, err, ErrExternalNotReady)

	m.Fields.ReviewText = validReview
	gotURL, gotText, err := m.OpenExternal()
	require.NoError(t, err)
	assert.Equal(t, *m.ReviewURL, gotURL)
	assert.Equal(t, validReview, gotText)
	assert.Equal(t, 10, m.CountdownRemaining())

	clock.Advance(4 * time.Second)
	assert.Equal(t, 6, m.CountdownRemaining())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 0, m.CountdownRemaining())
}

func TestOpenExternalWithoutReviewURL(t *testing.T) {
	landing := testLanding()
	landing.Targets = nil
	m := NewMachine(landing)
	m.Fields.ReviewText = validReview

	_, _, err := m.OpenExternal()
	assert.ErrorIs(t, err, ErrExternalNotReady)
}

func TestBackFloorsAtFirstStep(t *testing.T) {
	m := NewMachine(testLanding())
	attachClock(m)

	require.NoError(t, m.Back())
	assert.Equal(t, StepProductAndOrder, m.Step)
}

func TestSubmitRequiresFinalStep(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	attachClock(m)

	sub := &fakeSubmitter{}
	assert.ErrorIs(t, m.Submit(context.Background(), validate, sub, nil), ErrNotOnFinalStep)
	assert.Zero(t, sub.calls)
}

func TestSubmitHappyPath(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	clock := attachClock(m)
	driveToFinalStep(t, m, clock, validate)

	sub := &fakeSubmitter{result: &funnel.SubmissionResult{ID: "abc-123"}}
	require.NoError(t, m.Submit(context.Background(), validate, sub, funnel.NewClientMetadata("203.0.113.10", "test-agent")))

	assert.Equal(t, StateSubmitted, m.State)
	assert.Equal(t, "abc-123", m.SubmissionID)
	assert.Empty(t, m.FieldErrors)
	assert.Equal(t, 1, sub.calls)
	require.NotNil(t, sub.lastReq)
	assert.Equal(t, uint(7), sub.lastReq.CampaignID)
	assert.Equal(t, "123-1234567-1234567", sub.lastReq.OrderNumber)

	// Submitted machines are terminal
	assert.ErrorIs(t, m.Apply(FieldPatch{Rating: utils.ToPtr(1)}), ErrWizardSubmitted)
	assert.ErrorIs(t, m.Next(validate), ErrWizardSubmitted)
	assert.ErrorIs(t, m.Back(), ErrWizardSubmitted)
	assert.ErrorIs(t, m.Submit(context.Background(), validate, sub, nil), ErrWizardSubmitted)
}

func TestSubmitDuplicateOrderJumpsBack(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	clock := attachClock(m)
	driveToFinalStep(t, m, clock, validate)

	sub := &fakeSubmitter{err: funnel.ErrDuplicateSubmission}
	require.NoError(t, m.Submit(context.Background(), validate, sub, nil))

	assert.Equal(t, StateStep, m.State)
	assert.Equal(t, StepProductAndOrder, m.Step)
	require.Len(t, m.FieldErrors, 1)
	assert.Equal(t, "orderNumber", m.FieldErrors[0].Path)
}

func TestSubmitUnknownCampaign(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	clock := attachClock(m)
	driveToFinalStep(t, m, clock, validate)

	sub := &fakeSubmitter{err: funnel.ErrCampaignNotFound}
	require.NoError(t, m.Submit(context.Background(), validate, sub, nil))

	assert.Equal(t, StepProductAndOrder, m.Step)
	require.Len(t, m.FieldErrors, 1)
	assert.Equal(t, "campaignId", m.FieldErrors[0].Path)
}

func TestSubmitUnexpectedErrorIsRetryable(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	clock := attachClock(m)
	driveToFinalStep(t, m, clock, validate)

	boom := errors.New("database down")
	sub := &fakeSubmitter{err: boom}
	err := m.Submit(context.Background(), validate, sub, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StepConfirmAndSubmit, m.Step)
	assert.NotEmpty(t, m.SubmitError)
	assert.False(t, m.Submitting)

	// A retry after the failure goes through
	sub.err = nil
	sub.result = &funnel.SubmissionResult{ID: "retry-1"}
	require.NoError(t, m.Submit(context.Background(), validate, sub, nil))
	assert.Equal(t, StateSubmitted, m.State)
}

func TestSubmitRevalidatesEverything(t *testing.T) {
	validate := newTestValidator()
	m := NewMachine(testLanding())
	clock := attachClock(m)
	driveToFinalStep(t, m, clock, validate)

	// Corrupt an early-step field after reaching the final step
	m.Fields.OrderNumber = "bogus"

	sub := &fakeSubmitter{}
	require.NoError(t, m.Submit(context.Background(), validate, sub, nil))
	assert.Zero(t, sub.calls)
	assert.Equal(t, StepProductAndOrder, m.Step)
	require.NotEmpty(t, m.FieldErrors)
	assert.Equal(t, "orderNumber", m.FieldErrors[0].Path)
}

func TestStepOwning(t *testing.T) {
	assert.Equal(t, StepProductAndOrder, stepOwning("orderNumber"))
	assert.Equal(t, StepProductAndOrder, stepOwning("marketplace.platform"))
	assert.Equal(t, StepUsageAndRating, stepOwning("rating"))
	assert.Equal(t, StepReview, stepOwning("reviewText"))
	assert.Equal(t, StepContactAndConsent, stepOwning("email"))
	assert.Equal(t, StepConfirmAndSubmit, stepOwning("something-else"))
}
