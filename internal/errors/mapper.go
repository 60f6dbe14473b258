// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Sentinel errors forming the application taxonomy. Services wrap
// these; the HTTP layer maps them to status codes with HTTPStatus.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Map converts repo/infra errors into the application taxonomy.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrStoreUnavailable):
		return err // already classified

	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: record not found", ErrNotFound)

	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: request timed out", ErrStoreUnavailable)

	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: request was canceled", ErrStoreUnavailable)

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: duplicate record", ErrConflict)

	default:
		// store/query failures end up here
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// InvalidArgument creates a taxonomy error for bad input validation.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// NotFound creates a taxonomy error for a missing referenced entity.
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// Conflict creates a taxonomy error for duplicate/contended writes.
func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// HTTPStatus maps a classified error to its HTTP response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusBadGateway // store unavailable and unclassified
	}
}
