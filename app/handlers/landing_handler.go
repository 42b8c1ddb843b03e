package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/funnel"
)

// LandingHandlerInterface defines the contract for landing page handlers
type LandingHandlerInterface interface {
	Landing(c fiber.Ctx) error
}

// LandingHandler serves GET /r/:slug, the campaign payload the wizard client
// renders from
type LandingHandler struct {
	landingFlow funnel.LandingFlow
}

// NewLandingHandler creates a new landing handler
func NewLandingHandler(landingFlow funnel.LandingFlow) *LandingHandler {
	return &LandingHandler{landingFlow: landingFlow}
}

// Landing returns campaign, marketplace, and target data for a landing page
// @Summary Campaign landing data
// @Description Returns the campaign payload hosting the submission wizard
// @Tags Funnel
// @Produce json
// @Param slug path string true "Campaign slug"
// @Success 200 {object} dto.APIResponse{data=dto.LandingPageResponse} "Landing payload"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /r/{slug} [get]
func (h *LandingHandler) Landing(c fiber.Ctx) error {
	slug := c.Params("slug")

	result, err := h.landingFlow.Landing(h.createRequestContext(c, "/r/:slug"), slug)
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
				Success: false,
				Message: "Campaign not found",
				Error:   dto.ErrorDetail{Code: "CAMPAIGN_NOT_FOUND"},
			})
		}

		log.Println("Landing lookup failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load landing page",
			Error:   dto.ErrorDetail{Code: "LANDING_FAILED"},
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Landing page loaded",
		Data:    result,
	})
}

func (h *LandingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
