package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/app/middleware"
	"github.com/reviewloop/reviewloop/funnel"
)

// ReviewHandlerInterface defines the contract for the review submission endpoint
type ReviewHandlerInterface interface {
	Submit(c fiber.Ctx) error
}

// ReviewHandler serves POST /api/v1/reviews, the wizard's submission endpoint.
// Response bodies follow the wire contract the wizard client consumes:
// {ok, id} on success, {ok, errors:[{path,message}]} on field errors.
type ReviewHandler struct {
	submissionFlow funnel.SubmissionFlow
	validator      *validator.Validate
}

// NewReviewHandler creates a new review submission handler
func NewReviewHandler(submissionFlow funnel.SubmissionFlow) *ReviewHandler {
	return &ReviewHandler{
		submissionFlow: submissionFlow,
		validator:      newValidator(),
	}
}

// Submit validates and persists a review submission
// @Summary Submit review
// @Description Validates the wizard payload and persists the submission
// @Tags Funnel
// @Accept json
// @Produce json
// @Param request body dto.SubmitReviewRequest true "Review submission payload"
// @Success 201 {object} dto.SubmitReviewResponse "Submission created"
// @Failure 404 {object} dto.SubmitReviewErrorResponse "Campaign not found"
// @Failure 409 {object} dto.SubmitReviewErrorResponse "Order already submitted"
// @Failure 422 {object} dto.SubmitReviewErrorResponse "Validation failure"
// @Failure 500 {object} dto.SubmitReviewErrorResponse "Internal server error"
// @Router /api/v1/reviews [post]
func (h *ReviewHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		middleware.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.SubmitReviewErrorResponse{
			Errors: []dto.FieldError{{Path: "", Message: "Invalid request body"}},
		})
	}

	// Validate request; nothing is persisted on failure
	if err := h.validator.Struct(&req); err != nil {
		middleware.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.SubmitReviewErrorResponse{
			Errors: fieldErrors(err),
		})
	}

	// Get client information
	metadata := funnel.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.submissionFlow.Submit(h.createRequestContext(c, "/api/v1/reviews"), &req, metadata)
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			middleware.SubmissionsTotal.WithLabelValues("not_found").Inc()
			return c.Status(fiber.StatusNotFound).JSON(dto.SubmitReviewErrorResponse{
				Errors: []dto.FieldError{{Path: "campaignId", Message: "Campaign not found"}},
			})
		}
		if funnel.IsDuplicateSubmission(err) {
			middleware.SubmissionsTotal.WithLabelValues("duplicate").Inc()
			return c.Status(fiber.StatusConflict).JSON(dto.SubmitReviewErrorResponse{
				Errors: []dto.FieldError{{Path: "orderNumber", Message: "A review for this order was already submitted"}},
			})
		}

		log.Println("Review submission failed", err)
		middleware.SubmissionsTotal.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(dto.SubmitReviewErrorResponse{
			Error: "Submission failed",
		})
	}

	middleware.SubmissionsTotal.WithLabelValues("created").Inc()
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitReviewResponse{
		OK: true,
		ID: result.ID,
	})
}

// fieldErrors flattens validator errors into wire (path, message) pairs. The
// validator reports json tag names, so namespaces look like
// SubmitReviewRequest.marketplace.platform; the struct prefix is stripped.
func fieldErrors(err error) []dto.FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []dto.FieldError{{Path: "", Message: "Invalid payload"}}
	}

	out := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, dto.FieldError{Path: path, Message: getValidationErrorMessage(fe)})
	}
	return out
}

func (h *ReviewHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
