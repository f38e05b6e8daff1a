package logger

import (
	"errors"

	"campusconnect/apperrors"
)

// LogAppError logs an AppError with its structured fields on l.
// Client errors go out at WARN, everything else at ERROR.
func (l *Logger) LogAppError(err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		l.WithError(err).log(ERROR, "Unstructured error occurred")
		return
	}

	level := ERROR
	if appErr.StatusCode > 0 && appErr.StatusCode < 500 {
		level = WARN
	}
	l.WithFields(appErr.LogFields()).log(level, "%s", appErr.Message)
}

// LogAppError logs using the default logger
func LogAppError(err error) {
	defaultLogger.LogAppError(err)
}
