package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/reviewloop/reviewloop/app/dto"
	"github.com/reviewloop/reviewloop/app/services"
	"github.com/reviewloop/reviewloop/funnel"
	"github.com/reviewloop/reviewloop/utils"
)

// QRHandlerInterface defines the contract for QR rendering handlers
type QRHandlerInterface interface {
	ShortLinkQR(c fiber.Ctx) error
}

// QRHandler serves printable QR codes for short links
type QRHandler struct {
	scanFlow  funnel.ScanFlow
	qrService services.QRService
}

// NewQRHandler creates a new QR handler
func NewQRHandler(scanFlow funnel.ScanFlow, qrService services.QRService) *QRHandler {
	return &QRHandler{scanFlow: scanFlow, qrService: qrService}
}

// ShortLinkQR renders the QR code for a short link's public scan URL
// @Summary Short link QR code
// @Description Returns an SVG QR code encoding the short link scan URL
// @Tags Funnel
// @Produce image/svg+xml
// @Param slug path string true "Short link slug"
// @Success 200 {string} string "SVG image"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/qr/{slug} [get]
func (h *QRHandler) ShortLinkQR(c fiber.Ctx) error {
	slug := c.Params("slug")

	metadata := funnel.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetOrigin(c.BaseURL())

	scanURL, err := h.scanFlow.ScanURL(h.createRequestContext(c, "/api/qr/:slug"), slug, metadata)
	if err != nil {
		if funnel.IsShortLinkNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
				Success: false,
				Message: "Short link not found",
				Error:   dto.ErrorDetail{Code: "SHORT_LINK_NOT_FOUND"},
			})
		}

		log.Println("QR lookup failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to render QR code",
			Error:   dto.ErrorDetail{Code: "QR_RENDER_FAILED"},
		})
	}

	image, err := h.qrService.RenderSVG(scanURL)
	if err != nil {
		log.Println("QR rendering failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to render QR code",
			Error:   dto.ErrorDetail{Code: "QR_RENDER_FAILED"},
		})
	}

	// QR codes for a given slug never change, so let clients and CDNs cache hard
	c.Set("Content-Type", "image/svg+xml")
	c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", utils.QRCacheMaxAge))
	return c.Send(image)
}

func (h *QRHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
