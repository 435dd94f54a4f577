package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrPermission     = errors.New("permission denied")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUnverified     = errors.New("email not verified")
	ErrReauthRequired = errors.New("recent login required")
	ErrUnavailable    = errors.New("service unavailable")
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
	Retryable bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.BaseError, e.Err}
	}
	return []error{e.BaseError}
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

// NewValidation is a user-facing input error; msg is shown as is.
func NewValidation(msg string) *AppError {
	return NewAppError(ErrInvalidInput, msg, "", nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

func NewConflict(msg, details string) *AppError {
	return NewAppError(ErrConflict, msg, details, nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

func NewUnauthorized(msg string, err error) *AppError {
	return NewAppError(ErrUnauthorized, msg, "", err)
}

func NewPermissionDenied(details string) *AppError {
	return NewAppError(ErrPermission, "Permission denied", details, nil)
}

func NewUnverified(action string) *AppError {
	return NewAppError(ErrUnverified, "Please verify your email before continuing", action, nil)
}

func NewReauthRequired() *AppError {
	return NewAppError(ErrReauthRequired, AuthMessage(CodeRequiresRecentLogin, ""), "", nil)
}

// NewRetryable marks a backend failure the caller may retry by repeating
// the same request.
func NewRetryable(msg string, err error) *AppError {
	e := NewAppError(ErrUnavailable, msg, "", err)
	e.Retryable = true
	return e
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrReauthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission), errors.Is(err, ErrUnverified):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (e *AppError) ToJSON() gin.H {
	body := gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
	if errors.Is(e.BaseError, ErrReauthRequired) {
		body["reauth_required"] = true
	}
	if e.Retryable {
		body["retryable"] = true
	}
	return body
}

// ToJSON renders any error; unknown errors never leak their text.
func ToJSON(err error) gin.H {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ToJSON()
	}
	return gin.H{"error": ErrInternal.Error(), "message": "An internal server error occurred"}
}
