package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, l *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: l}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wl, err := h.service.GetWishlist(r.Context(), middleware.SessionIDFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wl)
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var entry domain.WishlistEntry
	if err := validator.DecodeAndValidate(r, &entry); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wl, err := h.service.AddItem(r.Context(), middleware.SessionIDFromRequest(r), entry)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wl)
}

// Toggle handles POST /api/v1/wishlist/items/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var entry domain.WishlistEntry
	if err := validator.DecodeAndValidate(r, &entry); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.Toggle(r.Context(), middleware.SessionIDFromRequest(r), entry)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	wl, err := h.service.RemoveItem(r.Context(), middleware.SessionIDFromRequest(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wl)
}

// MoveToCart handles POST /api/v1/wishlist/items/{productId}/move-to-cart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	wl, err := h.service.MoveToCart(r.Context(), middleware.SessionIDFromRequest(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wl)
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearWishlist(r.Context(), middleware.SessionIDFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
