package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"comment-history-api/internal/response"
)

// Clock supplies the current instant; tests inject a fixed or stepping clock
type Clock func() time.Time

// SystemClock returns UTC now at the store's microsecond precision
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (c Clock) now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().UTC().Truncate(time.Microsecond)
}

// storeError classifies a repository error: a missing row becomes NotFound, anything else StorageUnavailable.
// AppErrors raised inside a transaction pass through unchanged.
func storeError(err error, notFoundMsg, failMsg string) error {
	var appErr *response.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NewAppError(response.ErrCodeNotFound, notFoundMsg, "")
	default:
		return response.NewAppError(response.ErrCodeStorageUnavailable, failMsg, err.Error())
	}
}

func invalidArgument(msg, details string) error {
	return response.NewAppError(response.ErrCodeValidation, msg, details)
}

// validateDateRange validates that start is not after end
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return invalidArgument("Range start cannot be after range end", "")
	}
	return nil
}
