package apperrors

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Store error helpers

func NewNotFound(entity string, id int) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", entity), fiber.StatusNotFound).
		WithDetails("entity", entity).
		WithDetails("id", id)
}

func NewUserExists(username string) *AppError {
	return New(ErrCodeUserExists, "Username already exists. Please choose a different username.", fiber.StatusConflict).
		WithDetails("username", username)
}

func NewAlreadyRegistered(userID, activityID int) *AppError {
	return New(ErrCodeAlreadyRegistered, "Already registered for this activity", fiber.StatusConflict).
		WithDetails("user_id", userID).
		WithDetails("activity_id", activityID)
}

func NewInvalidCredentials() *AppError {
	return New(ErrCodeInvalidCreds, "Invalid username or password", fiber.StatusUnauthorized)
}

func NewCorruptState(key string, err error) *AppError {
	return New(ErrCodeCorruptState, "Stored snapshot could not be decoded", fiber.StatusInternalServerError).
		WithOperation("snapshot_decode").
		WithDetails("storage_key", key).
		WithContext("subsystem", "store").
		WithInternal(err)
}

func NewStorageError(operation string, key string, err error) *AppError {
	return New(ErrCodeStorage, "Storage operation failed", fiber.StatusInternalServerError).
		WithOperation(operation).
		WithDetails("storage_key", key).
		WithContext("subsystem", "storage").
		WithInternal(err)
}

// Circuit breaker errors
func NewCircuitBreakerError(service string, state string) *AppError {
	return New(ErrCodeServiceUnavail, "Service temporarily unavailable", fiber.StatusServiceUnavailable).
		WithOperation("circuit_breaker_check").
		WithDetails("service", service).
		WithDetails("breaker_state", state).
		WithDetails("retry_after", "30s").
		WithContext("subsystem", "circuit_breaker")
}

// Authentication errors

func NewUnauthorized(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return New(ErrCodeUnauthorized, message, fiber.StatusUnauthorized)
}

func NewForbidden(role string, action string) *AppError {
	return New(ErrCodeForbidden, "Not authorized to perform action", fiber.StatusForbidden).
		WithOperation("authorization_check").
		WithDetails("required_role", role).
		WithDetails("action", action).
		WithContext("subsystem", "auth")
}

// Validation errors

func NewValidationError(message string) *AppError {
	return New(ErrCodeValidationFailed, message, fiber.StatusBadRequest)
}

func NewBadRequest(message string) *AppError {
	if message == "" {
		message = "Bad request"
	}
	return New(ErrCodeInvalidInput, message, fiber.StatusBadRequest)
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An internal error occurred"
	}
	return New(ErrCodeInternal, message, fiber.StatusInternalServerError)
}

func NewRateLimitError() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please try again later.", http.StatusTooManyRequests)
}
