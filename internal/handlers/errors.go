package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/httperr"
)

// Error-code buckets per response class. Conflict codes describe a slot or
// state the caller can work around; validation codes mean the request
// itself is malformed.
var (
	notFoundCodes = map[string]string{
		"business_not_found":    "Business not found.",
		"service_not_found":     "Service not found.",
		"staff_not_found":       "Staff member not found.",
		"client_not_found":      "Client not found.",
		"appointment_not_found": "Appointment not found.",
	}

	validationCodes = map[string]string{
		"invalid_date_or_time": "Invalid date or time.",
		"invalid_status":       "Invalid status value.",
		"invalid_time_format":  "Times must be HH:MM.",
		"invalid_day_of_week":  "Day of week must be 0-6.",
		"open_not_before_close": "Opening time must be before closing time " +
			"within the same day.",
	}

	conflictCodes = map[string]string{
		"outside_business_hours":         "Requested time is outside business hours.",
		"outside_staff_schedule":         "Requested time is outside the staff member's schedule.",
		"staff_unavailable":              "The staff member already has an appointment in that window.",
		"crosses_midnight":               "Appointments may not span midnight.",
		"service_inactive":               "The service is no longer offered.",
		"staff_inactive":                 "The staff member is not accepting bookings.",
		"staff_cannot_perform_service":   "The staff member does not offer this service.",
		"invalid_transition":             "That status change is not allowed.",
		"cannot_reschedule_terminal":     "Completed, cancelled or no-show appointments cannot be rescheduled.",
		"service_in_use":                 "The service is still referenced by appointments.",
		"staff_has_future_appointments":  "The staff member still has upcoming appointments.",
		"appointment_time_slot_conflict": "The time slot is no longer available.",
	}
)

// respondError translates domain and storage errors into the API's error
// taxonomy. Anything retryable surfaces as 503 once the use case has
// exhausted its retries.
func respondError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	code := httperr.BusinessCode(err)

	if msg, ok := validationCodes[code]; ok {
		httperr.BadRequest(c, code, msg)
		return
	}
	if msg, ok := notFoundCodes[code]; ok {
		httperr.NotFound(c, code, msg)
		return
	}
	if msg, ok := conflictCodes[code]; ok {
		httperr.Conflict(c, code, msg)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, fallbackCode, fallbackMsg)
		return
	}

	if httperr.IsForeignKeyViolation(err) {
		httperr.Conflict(c, "reference_conflict", "A referenced record no longer exists.")
		return
	}

	if httperr.IsRetryable(err) {
		httperr.Unavailable(c, "try_again", "The datastore is busy; please retry.")
		return
	}

	httperr.Internal(c, fallbackCode, fallbackMsg)
}
