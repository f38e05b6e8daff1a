package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeInvalidCreds ErrorCode = "INVALID_CREDENTIALS"

	// Store
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeUserExists        ErrorCode = "USER_EXISTS"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeCorruptState      ErrorCode = "CORRUPT_STATE"
	ErrCodeStorage           ErrorCode = "STORAGE_ERROR"

	// Rate Limiting
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

	// Validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"

	// Internal Errors
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
	Details    map[string]any `json:"details,omitempty"`

	// Operation names the store or handler operation that failed.
	Operation string `json:"-"`
	// Context carries log-only fields that are never rendered to clients.
	Context map[string]any `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetails adds contextual details to the error
func (e *AppError) WithDetails(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithInternal wraps an internal error
func (e *AppError) WithInternal(err error) *AppError {
	e.Internal = err
	return e
}

func (e *AppError) WithOperation(op string) *AppError {
	e.Operation = op
	return e
}

func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// LogFields flattens the error into logger fields.
func (e *AppError) LogFields() map[string]any {
	fields := map[string]any{
		"code":   string(e.Code),
		"status": e.StatusCode,
	}
	if e.Operation != "" {
		fields["operation"] = e.Operation
	}
	if e.Internal != nil {
		fields["internal"] = e.Internal.Error()
	}
	for k, v := range e.Details {
		fields["detail_"+k] = v
	}
	for k, v := range e.Context {
		fields["ctx_"+k] = v
	}
	return fields
}

// New creates a new AppError
func New(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsCode reports whether err is an AppError carrying code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsNotFound, IsConflict and IsInvalidCredentials cover the store's error kinds.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound)
}

func IsConflict(err error) bool {
	return IsCode(err, ErrCodeConflict) ||
		IsCode(err, ErrCodeUserExists) ||
		IsCode(err, ErrCodeAlreadyRegistered)
}

func IsInvalidCredentials(err error) bool {
	return IsCode(err, ErrCodeInvalidCreds)
}

// FromError converts a standard error to AppError if possible
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusUnauthorized:
			return NewUnauthorized("")
		case fiber.StatusNotFound:
			return New(ErrCodeNotFound, "Resource not found", fiber.StatusNotFound)
		case fiber.StatusBadRequest:
			return NewBadRequest(fiberErr.Message)
		case fiber.StatusMethodNotAllowed:
			return New(ErrCodeInvalidInput, fiberErr.Message, fiber.StatusMethodNotAllowed)
		}
	}

	// Default to internal error
	return NewInternalError("").WithInternal(err)
}
