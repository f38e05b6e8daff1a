package utils

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"campusconnect/apperrors"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

const (
	maxUsernameLength = 30
	maxNameLength     = 100
	maxTextLength     = 2000
)

// ValidateSignup checks the signup form before it reaches the store
func ValidateSignup(name, username, password string) *apperrors.AppError {
	if strings.TrimSpace(name) == "" || username == "" || password == "" {
		return apperrors.NewValidationError("Please fill in all fields")
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.NewValidationError("Name cannot exceed 100 characters")
	}

	return ValidateUsername(username)
}

// ValidateUsername checks the characters and length of a new username
func ValidateUsername(username string) *apperrors.AppError {
	if len(username) > maxUsernameLength {
		return apperrors.NewValidationError("Username cannot exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return apperrors.NewValidationError("Username can only contain letters, numbers, dots, underscores, and hyphens")
	}

	return nil
}

// ValidateLogin checks that both credentials were supplied
func ValidateLogin(username, password string) *apperrors.AppError {
	if username == "" || password == "" {
		return apperrors.NewValidationError("Please enter both username and password")
	}
	return nil
}

// ValidateActivityName checks an activity name is present and bounded
func ValidateActivityName(name string) *apperrors.AppError {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("Activity name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.NewValidationError("Activity name cannot exceed 100 characters")
	}
	return nil
}

func ValidateDescription(description string) *apperrors.AppError {
	if utf8.RuneCountInString(description) > maxTextLength {
		return apperrors.NewValidationError("Description cannot exceed 2000 characters")
	}
	return nil
}

// ParseID parses a positive integer path or query parameter
func ParseID(field, raw string) (int, *apperrors.AppError) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequest("Invalid " + field).WithDetails(field, raw)
	}
	return id, nil
}
