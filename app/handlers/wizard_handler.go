package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/funnel"
	"github.com/reviewloop/reviewloop/wizard"
)

// WizardHandlerInterface defines the contract for wizard session handlers
type WizardHandlerInterface interface {
	Start(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Patch(c fiber.Ctx) error
	Next(c fiber.Ctx) error
	Back(c fiber.Ctx) error
	OpenExternal(c fiber.Ctx) error
	Submit(c fiber.Ctx) error
}

// WizardHandler drives server-held wizard sessions: every endpoint loads the
// machine, applies one transition, persists it, and returns a snapshot
type WizardHandler struct {
	landingFlow    funnel.LandingFlow
	submissionFlow funnel.SubmissionFlow
	sessions       wizard.SessionStore
	validator      *validator.Validate
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(landingFlow funnel.LandingFlow, submissionFlow funnel.SubmissionFlow, sessions wizard.SessionStore) *WizardHandler {
	return &WizardHandler{
		landingFlow:    landingFlow,
		submissionFlow: submissionFlow,
		sessions:       sessions,
		validator:      newValidator(),
	}
}

func (h *WizardHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *WizardHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Start opens a wizard session for a campaign
// @Summary Start wizard session
// @Tags Wizard
// @Accept json
// @Produce json
// @Param request body dto.StartWizardRequest true "Campaign slug"
// @Success 201 {object} dto.APIResponse{data=dto.WizardStateResponse} "Session created"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/wizard [post]
func (h *WizardHandler) Start(c fiber.Ctx) error {
	var req dto.StartWizardRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/wizard")
	landing, err := h.landingFlow.Landing(ctx, req.CampaignSlug)
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		log.Println("Wizard start failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start wizard", "WIZARD_START_FAILED", nil)
	}

	machine := wizard.NewMachine(landing)
	if err := h.sessions.Save(ctx, machine); err != nil {
		log.Println("Wizard session save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start wizard", "WIZARD_START_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Wizard session created", snapshot(machine))
}

// Get returns the current machine snapshot
// @Summary Get wizard session
// @Tags Wizard
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} dto.APIResponse{data=dto.WizardStateResponse} "Session state"
// @Failure 404 {object} dto.APIResponse "Session not found"
// @Router /api/v1/wizard/{id} [get]
func (h *WizardHandler) Get(c fiber.Ctx) error {
	machine, err := h.loadSession(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Wizard session", snapshot(machine))
}

// Patch merges a partial field update into the session
// @Summary Update wizard fields
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param request body wizard.FieldPatch true "Partial field update"
// @Success 200 {object} dto.APIResponse{data=dto.WizardStateResponse} "Session state"
// @Failure 404 {object} dto.APIResponse "Session not found"
// @Router /api/v1/wizard/{id} [patch]
func (h *WizardHandler) Patch(c fiber.Ctx) error {
	machine, err := h.loadSession(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	var patch wizard.FieldPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := machine.Apply(patch); err != nil {
		return h.transitionError(c, err)
	}
	return h.saveAndRespond(c, machine)
}

// Next advances the wizard one step
// @Summary Advance wizard
// @Tags Wizard
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} dto.APIResponse{data=dto.WizardStateResponse} "Session state"
// @Failure 404 {object} dto.APIResponse "Session not found"
// @Router /api/v1/wizard/{id}/next [post]
func (h *WizardHandler) Next(c fiber.Ctx) error {
	machine, err := h.loadSession(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	if err := machine.Next(h.validator); err != nil {
		return h.transitionError(c, err)
	}
	return h.saveAndRespond(c, machine)
}

// Back moves the wizard one step backward
// @Summary Step wizard back
// @Tags Wizard
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} dto.APIResponse{data=dto.WizardStateResponse} "Session state"
// @Failure 404 {object} dto.APIResponse "Session not found"
// @Router /api/v1/wizard/{id}/back [post]
func (h *WizardHandler) Back(c fiber.Ctx) error {
	machine, err := h.loadSession(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	if err := machine.Back(); err != nil {
		return h.transitionError(c, err)
	}
	return h.saveAndRespond(c, machine)
}

// OpenExternal arms the high-rating gate and reports what the client should
// copy and open
// @Summary Open external review page
// @Tags Wizard
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} dto.APIResponse{data=dto.OpenExternalResponse} "Review URL and text"
// @Failure 404 {object} dto.APIResponse "Session not found"
// @Failure 409 {object} dto.APIResponse "No resolvable review URL or empty review text"
// @Router /api/v1/wizard/{id}/open-external [post]
func (h *WizardHandler) OpenExternal(c fiber.Ctx) error {
	machine, err := h.loadSession(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	reviewURL, reviewText, err := machine.OpenExternal()
	if err != nil {
		return h.transitionError(c, err)
	}

	if err := h.sessions.Save(h.createRequestContext(c, c.Path()), machine); err != nil {
		log.Println("Wizard session save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save wizard session", "WIZARD_SAVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "External review page opened", dto.OpenExternalResponse{
		ReviewURL:  reviewURL,
		ReviewText: reviewText,
	})
}

// Submit dispatches the completed wizard to the submission endpoint logic
// @Summary Submit wizard
// @Tags Wizard
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} dto.APIResponse{data=dto.WizardStateResponse} "Session state"
// @Failure 404 {object} dto.APIResponse "Session not found"
// @Router /api/v1/wizard/{id}/submit [post]
func (h *WizardHandler) Submit(c fiber.Ctx) error {
	machine, err := h.loadSession(c)
	if err != nil {
		return h.sessionError(c, err)
	}

	metadata := funnel.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	ctx := h.createRequestContext(c, "/api/v1/wizard/:id/submit")
	if err := machine.Submit(ctx, h.validator, h.submissionFlow, metadata); err != nil {
		switch err {
		case wizard.ErrWizardSubmitted, wizard.ErrNotOnFinalStep, wizard.ErrWarningIsHardStop, wizard.ErrSubmitInFlight:
			return h.transitionError(c, err)
		}
		// Unexpected failure: the machine keeps a retryable error, log and
		// return the snapshot so the client can resubmit
		log.Println("Wizard submission failed", err)
	}

	return h.saveAndRespond(c, machine)
}

func (h *WizardHandler) loadSession(c fiber.Ctx) (*wizard.Machine, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, wizard.ErrSessionNotFound
	}
	return h.sessions.Load(h.createRequestContext(c, c.Path()), id)
}

func (h *WizardHandler) sessionError(c fiber.Ctx, err error) error {
	if err == wizard.ErrSessionNotFound {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Wizard session not found", "WIZARD_SESSION_NOT_FOUND", nil)
	}
	log.Println("Wizard session load failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load wizard session", "WIZARD_LOAD_FAILED", nil)
}

func (h *WizardHandler) transitionError(c fiber.Ctx, err error) error {
	switch err {
	case wizard.ErrWizardSubmitted:
		return h.ErrorResponse(c, fiber.StatusConflict, "Wizard already submitted", "WIZARD_SUBMITTED", nil)
	case wizard.ErrWarningIsHardStop:
		return h.ErrorResponse(c, fiber.StatusConflict, "Early review warning only permits going back", "WIZARD_WARNING_HARD_STOP", nil)
	case wizard.ErrNotOnFinalStep:
		return h.ErrorResponse(c, fiber.StatusConflict, "Submission is only allowed from the final step", "WIZARD_NOT_FINAL_STEP", nil)
	case wizard.ErrExternalNotReady:
		return h.ErrorResponse(c, fiber.StatusConflict, "External review page requires a resolvable review URL and review text", "WIZARD_EXTERNAL_NOT_READY", nil)
	case wizard.ErrSubmitInFlight:
		return h.ErrorResponse(c, fiber.StatusConflict, "A submission is already in flight", "WIZARD_SUBMIT_IN_FLIGHT", nil)
	default:
		log.Println("Wizard transition failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Wizard transition failed", "WIZARD_TRANSITION_FAILED", nil)
	}
}

func (h *WizardHandler) saveAndRespond(c fiber.Ctx, machine *wizard.Machine) error {
	if err := h.sessions.Save(h.createRequestContext(c, c.Path()), machine); err != nil {
		log.Println("Wizard session save failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save wizard session", "WIZARD_SAVE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Wizard session updated", snapshot(machine))
}

func snapshot(m *wizard.Machine) dto.WizardStateResponse {
	return dto.WizardStateResponse{
		ID:                 m.ID.String(),
		State:              string(m.State),
		Step:               int(m.Step),
		CampaignID:         m.CampaignID,
		CampaignName:       m.CampaignName,
		CampaignSlug:       m.CampaignSlug,
		ProductName:        m.Fields.ProductName,
		OrderNumber:        m.Fields.OrderNumber,
		Used7Days:          m.Fields.Used7Days,
		Rating:             m.Fields.Rating,
		ReviewText:         m.Fields.ReviewText,
		Email:              m.Fields.Email,
		MarketingOptIn:     m.Fields.MarketingOptIn,
		ReviewURL:          m.ReviewURL,
		HasOpenedExternal:  m.HasOpenedExternal,
		CountdownRemaining: m.CountdownRemaining(),
		FieldErrors:        m.FieldErrors,
		SubmitError:        m.SubmitError,
		SubmissionID:       m.SubmissionID,
	}
}

func (h *WizardHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
