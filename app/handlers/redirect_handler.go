package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/reviewloop/reviewloop/app/middleware"
	"github.com/reviewloop/reviewloop/funnel"
	"github.com/reviewloop/reviewloop/utils"
)

// RedirectHandlerInterface defines the contract for the short link scan handler
type RedirectHandlerInterface interface {
	Scan(c fiber.Ctx) error
}

// RedirectHandler serves GET /c/:slug, the public scan entry point
type RedirectHandler struct {
	scanFlow funnel.ScanFlow
}

// NewRedirectHandler creates a new redirect handler
func NewRedirectHandler(scanFlow funnel.ScanFlow) *RedirectHandler {
	return &RedirectHandler{scanFlow: scanFlow}
}

// Scan resolves a short link scan
// @Summary Resolve short link
// @Description Records the scan and redirects to the external review page or the campaign landing page
// @Tags Funnel
// @Param slug path string true "Short link slug"
// @Success 302 "Redirect to resolved destination"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /c/{slug} [get]
func (h *RedirectHandler) Scan(c fiber.Ctx) error {
	slug := c.Params("slug")

	metadata := funnel.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))
	metadata.SetOrigin(c.BaseURL())

	result, err := h.scanFlow.Visit(h.createRequestContext(c, "/c/:slug"), slug, metadata)
	if err != nil {
		if funnel.IsShortLinkNotFound(err) {
			// Unknown slugs bounce to the application root, no event recorded
			middleware.ScansTotal.WithLabelValues("not_found").Inc()
			return c.Redirect().Status(fiber.StatusFound).To("/")
		}

		log.Println("Scan resolution failed", err)
		middleware.ScansTotal.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).SendString("scan failed")
	}

	if result.External {
		middleware.ScansTotal.WithLabelValues("external").Inc()
	} else {
		middleware.ScansTotal.WithLabelValues("landing").Inc()
	}
	return c.Redirect().Status(fiber.StatusFound).To(result.RedirectURL)
}

func (h *RedirectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	// Create context with custom timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}
