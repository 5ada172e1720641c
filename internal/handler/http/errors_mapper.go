package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/service"
	"github.com/accountd/accountd/internal/utils"
)

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`

	// Violations is present only for validation failures.
	Violations []service.FieldViolation `json:"violations,omitempty"`
}

var errorStatusMap = map[error]int{
	service.ErrDuplicateIdentity:    http.StatusConflict,
	service.ErrNotFound:             http.StatusUnauthorized,
	service.ErrInvalidCredentials:   http.StatusUnauthorized,
	service.ErrNoChanges:            http.StatusBadRequest,
	service.ErrRegistrationDisabled: http.StatusForbidden,
	service.ErrSessionInvalid:       http.StatusUnauthorized,
	service.ErrSessionExpired:       http.StatusUnauthorized,
	service.ErrStorage:              http.StatusInternalServerError,
}

// writeServiceError translates a service-layer error into an HTTP response.
//
// Typed errors get dedicated treatment: validation failures return 422 with
// the full violation list, lockouts return 429 with a Retry-After header,
// and inactive accounts return 403. Sentinel errors go through
// [errorStatusMap]. Anything unrecognised becomes a generic 500 so that
// internals never leak to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = utils.WriteJSON(w, errorResponse{
			Error:      "validation failed",
			Violations: validationErr.Violations,
		}, http.StatusUnprocessableEntity)
		return
	}

	var lockedErr *service.AccountLockedError
	if errors.As(err, &lockedErr) {
		seconds := int(lockedErr.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		_, _ = utils.WriteJSON(w, errorResponse{Error: lockedErr.Error()}, http.StatusTooManyRequests)
		return
	}

	var notActiveErr *service.AccountNotActiveError
	if errors.As(err, &notActiveErr) {
		_, _ = utils.WriteJSON(w, errorResponse{Error: notActiveErr.Error()}, http.StatusForbidden)
		return
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			if status == http.StatusInternalServerError {
				log.Err(err).Msg("internal error reached the transport layer")
				_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(status)}, status)
				return
			}
			_, _ = utils.WriteJSON(w, errorResponse{Error: target.Error()}, status)
			return
		}
	}

	log.Err(err).Msg("unclassified error reached the transport layer")
	_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
}
