package middleware

import (
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader identifies the shopper's browser profile.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 128

// Session requires a well-formed X-Session-ID header and stores it in the context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !validSessionID(id) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:      "MISSING_SESSION",
					Message:   SessionHeader + " header is required",
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				},
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
	})
}

// SessionIDFromRequest returns the session ID stored by Session.
func SessionIDFromRequest(r *http.Request) string {
	return logger.SessionIDFromContext(r.Context())
}

// validSessionID accepts 1..128 characters from [A-Za-z0-9._-].
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
