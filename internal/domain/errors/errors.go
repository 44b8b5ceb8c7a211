package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrGatewayUnavailable = errors.New("payment gateway not configured")
	ErrGatewayError       = errors.New("payment gateway error")
	ErrGatewayTimeout     = errors.New("payment gateway timeout")
)

// Error codes returned to clients
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountSuspended   = "ACCOUNT_SUSPENDED"
	CodeInvalidState       = "INVALID_STATE"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	CodeGatewayError       = "GATEWAY_ERROR"
	CodeGatewayTimeout     = "GATEWAY_TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

type classification struct {
	status  int
	code    string
	message string
}

var classifications = []struct {
	sentinel error
	class    classification
}{
	{ErrNotFound, classification{http.StatusNotFound, CodeNotFound, "Resource not found"}},
	{ErrAlreadyExists, classification{http.StatusConflict, CodeConflict, "Resource already exists"}},
	{ErrValidation, classification{http.StatusBadRequest, CodeInvalidInput, "Validation failed"}},
	{ErrUnauthorized, classification{http.StatusUnauthorized, CodeUnauthorized, "Unauthenticated"}},
	{ErrForbidden, classification{http.StatusForbidden, CodeForbidden, "Forbidden"}},
	{ErrInvalidCredentials, classification{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"}},
	{ErrAccountSuspended, classification{http.StatusForbidden, CodeAccountSuspended, "Your account has been suspended"}},
	{ErrInvalidState, classification{http.StatusConflict, CodeInvalidState, "Operation not allowed in the current state"}},
	{ErrGatewayUnavailable, classification{http.StatusServiceUnavailable, CodeGatewayUnavailable, "Payment gateway not configured. Please contact support."}},
	{ErrGatewayError, classification{http.StatusBadGateway, CodeGatewayError, "Payment gateway error"}},
	{ErrGatewayTimeout, classification{http.StatusGatewayTimeout, CodeGatewayTimeout, "Payment gateway timed out"}},
}

func classify(err error) (classification, bool) {
	for _, c := range classifications {
		if errors.Is(err, c.sentinel) {
			return c.class, true
		}
	}
	return classification{}, false
}

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrValidation)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func InvalidState(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeInvalidState, message, ErrInvalidState)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError wraps a domain sentinel with a client-facing message. Status and
// code are derived from the sentinel.
func NewError(message string, err error) error {
	if c, ok := classify(err); ok {
		return NewAppError(c.status, c.code, message, err)
	}
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, err)
}

// FromError resolves any error into an AppError. Unknown errors become 500s.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if c, ok := classify(err); ok {
		return NewAppError(c.status, c.code, c.message, err)
	}
	return InternalError(err)
}
