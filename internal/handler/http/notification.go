package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// NotificationHandler serves the session's toasts.
type NotificationHandler struct {
	service *service.NotificationService
	logger  *slog.Logger
}

// NewNotificationHandler creates a new notification HTTP handler.
func NewNotificationHandler(svc *service.NotificationService, l *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: svc, logger: l}
}

// Active handles GET /api/v1/notifications
func (h *NotificationHandler) Active(w http.ResponseWriter, r *http.Request) {
	toasts, err := h.service.Active(r.Context(), middleware.SessionIDFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteData(w, http.StatusOK, toasts)
}

// Dismiss handles DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := toastIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Dismiss(r.Context(), middleware.SessionIDFromRequest(r), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
