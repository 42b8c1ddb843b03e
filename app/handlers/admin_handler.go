package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/funnel"
)

// AdminHandlerInterface defines the contract for the admin catalog and
// reporting handlers
type AdminHandlerInterface interface {
	CreateMarketplace(c fiber.Ctx) error
	CreateCampaign(c fiber.Ctx) error
	CreateTarget(c fiber.Ctx) error
	CreateShortLink(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
	ExportScans(c fiber.Ctx) error
	ExportSubmissions(c fiber.Ctx) error
	Seed(c fiber.Ctx) error
	SeedStatus(c fiber.Ctx) error
}

// AdminHandler implements AdminHandlerInterface
type AdminHandler struct {
	catalogFlow funnel.AdminCatalogFlow
	statsFlow   funnel.StatsFlow
	seedFlow    funnel.SeedFlow
	validator   *validator.Validate
}

func NewAdminHandler(catalogFlow funnel.AdminCatalogFlow, statsFlow funnel.StatsFlow, seedFlow funnel.SeedFlow) AdminHandlerInterface {
	return &AdminHandler{
		catalogFlow: catalogFlow,
		statsFlow:   statsFlow,
		seedFlow:    seedFlow,
		validator:   newValidator(),
	}
}

// ErrorResponse standard JSON error
func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateMarketplace creates a marketplace record
// @Summary Create marketplace
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateMarketplaceRequest true "Marketplace data"
// @Success 201 {object} dto.APIResponse{data=dto.MarketplaceDTO} "Marketplace created"
// @Failure 409 {object} dto.APIResponse "Natural key already exists"
// @Router /api/v1/admin/marketplaces [post]
func (h *AdminHandler) CreateMarketplace(c fiber.Ctx) error {
	var req dto.CreateMarketplaceRequest
	if !h.bindAndValidate(c, &req) {
		return nil
	}

	result, err := h.catalogFlow.CreateMarketplace(h.createRequestContext(c, "/api/v1/admin/marketplaces"), &req)
	if err != nil {
		if funnel.IsSlugAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Marketplace natural key already exists", "MARKETPLACE_ALREADY_EXISTS", nil)
		}
		log.Println("Marketplace creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create marketplace", "MARKETPLACE_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Marketplace created", result)
}

// CreateCampaign creates a campaign bound to a marketplace
// @Summary Create campaign
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign data"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignSummary} "Campaign created"
// @Failure 404 {object} dto.APIResponse "Marketplace not found"
// @Failure 409 {object} dto.APIResponse "Slug already exists"
// @Router /api/v1/admin/campaigns [post]
func (h *AdminHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if !h.bindAndValidate(c, &req) {
		return nil
	}

	result, err := h.catalogFlow.CreateCampaign(h.createRequestContext(c, "/api/v1/admin/campaigns"), &req)
	if err != nil {
		if funnel.IsMarketplaceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Marketplace not found", "MARKETPLACE_NOT_FOUND", nil)
		}
		if funnel.IsSlugAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Campaign slug already exists", "CAMPAIGN_SLUG_EXISTS", nil)
		}
		log.Println("Campaign creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", "CAMPAIGN_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created", result)
}

// CreateTarget adds a review target to a campaign
// @Summary Create review target
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Campaign id"
// @Param request body dto.CreateReviewTargetRequest true "Target data"
// @Success 201 {object} dto.APIResponse{data=dto.ReviewTargetDTO} "Target created"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Natural key already exists"
// @Failure 422 {object} dto.APIResponse "No resolvable identifier"
// @Router /api/v1/admin/campaigns/{id}/targets [post]
func (h *AdminHandler) CreateTarget(c fiber.Ctx) error {
	campaignID, ok := h.campaignIDParam(c)
	if !ok {
		return nil
	}

	var req dto.CreateReviewTargetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CampaignID = campaignID
	if !h.validateRequest(c, &req) {
		return nil
	}

	result, err := h.catalogFlow.CreateTarget(h.createRequestContext(c, "/api/v1/admin/campaigns/:id/targets"), &req)
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if funnel.IsSlugAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Review target natural key already exists", "TARGET_ALREADY_EXISTS", nil)
		}
		if funnel.IsTargetNotResolvable(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Target needs an ASIN, item ID, place ID, or URL", "TARGET_NOT_RESOLVABLE", nil)
		}
		log.Println("Target creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create review target", "TARGET_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Review target created", result)
}

// CreateShortLink issues a short link for a campaign
// @Summary Create short link
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Campaign id"
// @Param request body dto.CreateShortLinkRequest true "Short link data"
// @Success 201 {object} dto.APIResponse{data=dto.ShortLinkDTO} "Short link created"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Slug already exists"
// @Router /api/v1/admin/campaigns/{id}/short-links [post]
func (h *AdminHandler) CreateShortLink(c fiber.Ctx) error {
	campaignID, ok := h.campaignIDParam(c)
	if !ok {
		return nil
	}

	var req dto.CreateShortLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CampaignID = campaignID
	if !h.validateRequest(c, &req) {
		return nil
	}

	result, err := h.catalogFlow.CreateShortLink(h.createRequestContext(c, "/api/v1/admin/campaigns/:id/short-links"), &req)
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if funnel.IsSlugAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Short link slug already exists", "SHORT_LINK_SLUG_EXISTS", nil)
		}
		log.Println("Short link creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create short link", "SHORT_LINK_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Short link created", result)
}

// ListCampaigns lists campaigns with marketplace, targets, links, and counts
// @Summary List campaigns
// @Tags Admin
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.APIResponse{data=[]dto.CampaignSummary} "Campaigns"
// @Router /api/v1/admin/campaigns [get]
func (h *AdminHandler) ListCampaigns(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	result, err := h.catalogFlow.ListCampaigns(h.createRequestContext(c, "/api/v1/admin/campaigns"), limit, offset)
	if err != nil {
		log.Println("Campaign listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list campaigns", "CAMPAIGN_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns listed", result)
}

// Stats returns aggregate entity counts
// @Summary Funnel statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse} "Counts"
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) Stats(c fiber.Ctx) error {
	result, err := h.statsFlow.Stats(h.createRequestContext(c, "/api/v1/admin/stats"))
	if err != nil {
		log.Println("Stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", "STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stats computed", result)
}

// ExportScans downloads a campaign's scan events as an Excel workbook
// @Summary Export scans
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param slug path string true "Campaign slug"
// @Success 200 {string} string "Excel file"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/admin/campaigns/{slug}/scans/export [get]
func (h *AdminHandler) ExportScans(c fiber.Ctx) error {
	filename, payload, err := h.statsFlow.DownloadScansExcel(h.createRequestContext(c, "/api/v1/admin/campaigns/:slug/scans/export"), c.Params("slug"))
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		log.Println("Scan export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export scans", "SCAN_EXPORT_FAILED", nil)
	}

	return h.sendExcel(c, filename, payload)
}

// ExportSubmissions downloads a campaign's submissions as an Excel workbook
// @Summary Export submissions
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param slug path string true "Campaign slug"
// @Success 200 {string} string "Excel file"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/admin/campaigns/{slug}/submissions/export [get]
func (h *AdminHandler) ExportSubmissions(c fiber.Ctx) error {
	filename, payload, err := h.statsFlow.DownloadSubmissionsExcel(h.createRequestContext(c, "/api/v1/admin/campaigns/:slug/submissions/export"), c.Params("slug"))
	if err != nil {
		if funnel.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		log.Println("Submission export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export submissions", "SUBMISSION_EXPORT_FAILED", nil)
	}

	return h.sendExcel(c, filename, payload)
}

// Seed reconciles the demo fixtures (development only)
// @Summary Seed fixtures
// @Tags Development
// @Produce json
// @Success 200 {object} dto.APIResponse{data=funnel.SeedResult} "Fixtures reconciled"
// @Router /api/v1/dev/seed [post]
func (h *AdminHandler) Seed(c fiber.Ctx) error {
	result, err := h.seedFlow.Reconcile(h.createRequestContext(c, "/api/v1/dev/seed"))
	if err != nil {
		log.Println("Seeding failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to seed fixtures", "SEED_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Fixtures reconciled", result)
}

// SeedStatus reports whether the demo fixtures exist (development only)
// @Summary Seed status
// @Tags Development
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SeedStatusResponse} "Seed status"
// @Router /api/v1/dev/seed/status [get]
func (h *AdminHandler) SeedStatus(c fiber.Ctx) error {
	result, err := h.seedFlow.Status(h.createRequestContext(c, "/api/v1/dev/seed/status"))
	if err != nil {
		log.Println("Seed status failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check seed status", "SEED_STATUS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Seed status", result)
}

// bindAndValidate parses the JSON body and validates it; on failure the
// response has already been written and false is returned
func (h *AdminHandler) bindAndValidate(c fiber.Ctx, req any) bool {
	if err := c.Bind().JSON(req); err != nil {
		_ = h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		return false
	}

	return h.validateRequest(c, req)
}

func (h *AdminHandler) validateRequest(c fiber.Ctx, req any) bool {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		_ = h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
		return false
	}

	return true
}

func (h *AdminHandler) campaignIDParam(c fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		_ = h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign id", "INVALID_CAMPAIGN_ID", nil)
		return 0, false
	}
	return uint(id), true
}

func (h *AdminHandler) sendExcel(c fiber.Ctx, filename string, payload []byte) error {
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(payload)
}

func (h *AdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}
