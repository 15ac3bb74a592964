package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across the storefront.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrCorruptData    = errors.New("corrupt data")
)

// Error codes returned in API error bodies.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeCorruptData  = "CORRUPT_DATA"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is an error with the code, message and HTTP status shown to clients.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing product, cart line, wishlist entry or toast.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput reports a request the storefront cannot act on.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unavailable reports a failing upstream, such as the product catalog or a
// snapshot backend. err is kept for errors.Is.
func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrServiceUnavail, err),
	}
}

// Corrupt marks data read back from storage that cannot be decoded.
func Corrupt(what string, err error) *AppError {
	return &AppError{
		Code:    CodeCorruptData,
		Message: fmt.Sprintf("%s could not be decoded", what),
		Status:  http.StatusInternalServerError,
		Err:     errors.Join(ErrCorruptData, err),
	}
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Classify returns err as an *AppError. Bare sentinels get a generic
// message for their kind; anything else is Internal.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return &AppError{Code: CodeNotFound, Message: "resource not found", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, ErrInvalidInput):
		return &AppError{Code: CodeInvalidInput, Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, ErrServiceUnavail):
		return &AppError{Code: CodeUnavailable, Message: "upstream dependency unavailable", Status: http.StatusServiceUnavailable, Err: err}
	case errors.Is(err, ErrCorruptData):
		return &AppError{Code: CodeCorruptData, Message: "stored data could not be decoded", Status: http.StatusInternalServerError, Err: err}
	}
	return Internal(err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	return Classify(err).Status
}
