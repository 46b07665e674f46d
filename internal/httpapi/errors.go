package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ladatajusta.ar/newsroom/internal/staging"
)

// isStoreError reports whether err belongs to the staging error taxonomy, as
// opposed to payload validation failures.
func isStoreError(err error) bool {
	for _, target := range []error{
		staging.ErrNotFound,
		staging.ErrDuplicateURL,
		staging.ErrInvalidTransition,
		staging.ErrInvalidState,
		staging.ErrTerminalStateImmutable,
		staging.ErrCannotDeletePublished,
		staging.ErrAlreadyPublished,
		staging.ErrRetryLimitReached,
		staging.ErrTransientStore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondStagingError maps the staging error taxonomy onto HTTP statuses.
// Unrecognized errors become opaque 500s so internals never leak.
func respondStagingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, staging.ErrNotFound):
		return failNotFound(c, err.Error())
	case errors.Is(err, staging.ErrDuplicateURL):
		return fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, staging.ErrInvalidTransition),
		errors.Is(err, staging.ErrTerminalStateImmutable),
		errors.Is(err, staging.ErrCannotDeletePublished),
		errors.Is(err, staging.ErrAlreadyPublished),
		errors.Is(err, staging.ErrRetryLimitReached):
		return fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, staging.ErrInvalidState):
		return fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, staging.ErrTransientStore):
		return fail(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		return internalError(c, "Internal server error")
	}
}
