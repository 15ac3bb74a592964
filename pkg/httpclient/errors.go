package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// upstreamError covers both the storefront envelope ({"error":{...}}) and the
// flat {"code","message","hint"} body returned by PostgREST-style APIs.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// maps it to an AppError, keeping the upstream message when it is structured.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := string(body)
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Error != nil:
			message = parsed.Error.Message
		case parsed.Message != "":
			message = parsed.Message
			if parsed.Hint != "" {
				message += " (" + parsed.Hint + ")"
			}
		}
	}
	return mapStatus(resp.StatusCode, upstream, message)
}

func mapStatus(status int, upstream, message string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, "resource")
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.Unavailable(qualified, fmt.Errorf("upstream rejected credentials with %d", status))
	case status >= 500, status == http.StatusTooManyRequests:
		return apperrors.Unavailable(qualified, fmt.Errorf("upstream status %d", status))
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualified,
			Status:  http.StatusBadGateway,
		}
	}
}
