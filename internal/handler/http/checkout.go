package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, l *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: l}
}

// Summary handles POST /api/v1/checkout/summary
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var in service.SummaryInput
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sum, err := h.service.Summary(r.Context(), middleware.SessionIDFromRequest(r), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sum)
}
