package db

import (
	"time"

	"campusconnect/apperrors"
)

func validateCategory(c Category) error {
	if !c.Valid() {
		return apperrors.NewValidationError("Category must be one of club, sport, event").
			WithDetails("category", c)
	}
	return nil
}

func validateStatus(s Status) error {
	if !s.Valid() {
		return apperrors.NewValidationError("Status must be one of registered, attended, cancelled").
			WithDetails("status", s)
	}
	return nil
}

// validateDate accepts ISO-8601 timestamps with or without fractional seconds.
func validateDate(d string) error {
	if _, err := time.Parse(time.RFC3339, d); err != nil {
		return apperrors.NewValidationError("Date must be an ISO-8601 timestamp").
			WithDetails("date", d)
	}
	return nil
}
