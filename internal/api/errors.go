package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/httputil"
	"github.com/fvnks/konecte.cl-sub001/internal/lifecycle"
	"github.com/fvnks/konecte.cl-sub001/internal/metrics"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeValidationError   = "validation_error"
	ErrCodeNotFound          = "not_found"
	ErrCodeForbidden         = "forbidden"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeSlotConflict      = "slot_conflict"
	ErrCodeConflict          = "conflict"
	ErrCodeInternalError     = "internal_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service-layer error onto the HTTP taxonomy.
// Unrecognized errors are logged with the given action and surfaced opaquely;
// callers pass an entry carrying visit/actor correlation fields.
func respondServiceError(c *gin.Context, log logrus.FieldLogger, err error, action string) {
	var (
		invalid *lifecycle.InvalidTransitionError
		valErrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, models.ErrVisitNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "visit not found")
	case errors.Is(err, models.ErrPropertyNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "property not found")
	case errors.Is(err, models.ErrForbidden):
		respondError(c, http.StatusForbidden, ErrCodeForbidden, "actor may not act on this visit")
	case errors.As(err, &invalid):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeInvalidTransition, invalid.Error())
	case errors.Is(err, models.ErrSlotConflict):
		respondError(c, http.StatusConflict, ErrCodeSlotConflict, "slot already booked for this property")
	case errors.Is(err, models.ErrTransitionConflict):
		respondError(c, http.StatusConflict, ErrCodeConflict, "visit was modified concurrently, retry")
	case errors.As(err, &valErrs),
		errors.Is(err, models.ErrVisitorIsOwner),
		errors.Is(err, models.ErrTimeNotSlotAligned),
		errors.Is(err, models.ErrTimeInPast),
		errors.Is(err, models.ErrMissingNewTime),
		errors.Is(err, models.ErrNewTimeNotAllowed),
		errors.Is(err, models.ErrReasonNotAllowed),
		errors.Is(err, models.ErrUnknownAction):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	default:
		log.WithError(err).Error(action)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
