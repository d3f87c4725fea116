package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/veridian-grc/veridian/internal/shared"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP responses using RFC7807. Rate
// limit denials carry a Retry-After header derived from the window reset.
func RespondError(w http.ResponseWriter, err error) {
	var limited *shared.RateLimitedError
	switch {
	case errors.As(err, &limited):
		retryAfter := int(limited.ResetIn.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", limited.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		// The detail stays generic so the response does not reveal which
		// role would have been accepted.
		Problem(w, http.StatusForbidden, "Forbidden", "not permitted")
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
