package http

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
)

// maxProductIDLen bounds the productId path parameter.
const maxProductIDLen = 128

// productIDParam reads the productId path parameter. It writes a 400 and
// returns false when the id is blank, too long or contains spaces or
// control characters.
func productIDParam(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	raw := chi.URLParam(r, "productId")
	if raw == "" || len(raw) > maxProductIDLen || strings.IndexFunc(raw, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsControl(c)
	}) >= 0 {
		httputil.WriteBadParameter(w, "productId", raw)
		return "", false
	}
	return domain.ProductID(raw), true
}

// toastIDParam reads the id path parameter of a notification, which must be
// a UUID.
func toastIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteBadParameter(w, "id", raw)
		return "", false
	}
	return id.String(), true
}
