package httperr

import (
	"log/slog"
	"net/http"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"
	"tourbook/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FieldsDetail struct {
	Fields []errs.FieldError `json:"fields"`
}

type ConflictDetail struct {
	ConflictingBookingID *uuid.UUID `json:"conflicting_booking_id,omitempty"`
}

type TransitionDetail struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type GatewayDetail struct {
	Gateway    string `json:"gateway"`
	Operation  string `json:"operation"`
	StatusCode int    `json:"status_code,omitempty"`
	Code       string `json:"code,omitempty"`
}

type rule struct {
	target error
	status int
	msg    string
}

// sentinel mappings, checked in order after the typed errors
var rules = []rule{
	{availability.ErrOutsideAvailability, http.StatusUnprocessableEntity, "Requested time is outside the guide's availability"},
	{booking.ErrCancellationWindowClosed, http.StatusUnprocessableEntity, "Booking can no longer be cancelled"},
	{booking.ErrTourNotFinished, http.StatusUnprocessableEntity, "Tour has not finished yet"},
	{commands.ErrBookingNotPayable, http.StatusUnprocessableEntity, "Only pending bookings can be paid"},
	{commands.ErrGuideInactive, http.StatusUnprocessableEntity, "Guide is not accepting bookings"},
	{payment.ErrNotRefundable, http.StatusUnprocessableEntity, "Payment cannot be refunded"},
	{payment.ErrAlreadyRefunded, http.StatusUnprocessableEntity, "Payment is already refunded"},
	{payment.ErrInvalidRefundAmount, http.StatusUnprocessableEntity, "Invalid refund amount"},
	{payment.ErrAlreadyPaid, http.StatusUnprocessableEntity, "Booking is already paid"},
	{commands.ErrIdempotencyKeyReused, http.StatusUnprocessableEntity, "Idempotency key was used for a different request"},
	{commands.ErrIdempotencyInProgress, http.StatusConflict, "A request with this idempotency key is still in progress"},
	{payment.ErrRefundInProgress, http.StatusConflict, "Refund already in progress"},
	{payment.ErrMissingTransactionID, http.StatusUnprocessableEntity, "Payment has no gateway transaction"},
	{payment.ErrCaptureNotSupported, http.StatusBadRequest, "Gateway does not support capture"},
	{payment.ErrWebhookNotVerified, http.StatusBadRequest, "Webhook could not be verified"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "Invalid cursor"},
	{booking.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{queries.ErrBookingAccess, http.StatusForbidden, "Forbidden"},
	{shared.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{shared.ErrPaymentNotFound, http.StatusNotFound, "Payment not found"},
	{shared.ErrGuideNotFound, http.StatusNotFound, "Guide not found"},
	{shared.ErrItineraryNotFound, http.StatusNotFound, "Itinerary not found"},
	{shared.ErrGatewayNotConfigured, http.StatusServiceUnavailable, "Payment gateway is not configured"},
}

// Abort translates a usecase error into the API error envelope
func Abort(c *gin.Context, err error) {
	var ve *errs.ValidationError
	if errs.As(err, &ve) {
		AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", FieldsDetail{Fields: ve.Fields})
		return
	}

	var conflict *availability.ConflictError
	if errs.As(err, &conflict) {
		id := conflict.BookingID
		AbortWithError(c, http.StatusUnprocessableEntity, err, "Requested time conflicts with an existing booking", ConflictDetail{ConflictingBookingID: &id})
		return
	}
	if errs.Is(err, availability.ErrTimeConflict) {
		AbortWithError(c, http.StatusUnprocessableEntity, err, "Requested time conflicts with an existing booking", ConflictDetail{})
		return
	}

	var illegal *booking.IllegalTransitionError
	if errs.As(err, &illegal) {
		AbortWithError(c, http.StatusUnprocessableEntity, err, "Illegal status transition", TransitionDetail{From: illegal.From.String(), To: illegal.To.String()})
		return
	}

	var gwErr *payment.GatewayError
	if errs.As(err, &gwErr) {
		AbortWithError(c, http.StatusBadGateway, err, "Payment gateway error: "+gwErr.Message, GatewayDetail{
			Gateway:    gwErr.Gateway.String(),
			Operation:  gwErr.Operation,
			StatusCode: gwErr.StatusCode,
			Code:       gwErr.Code,
		})
		return
	}

	for _, r := range rules {
		if errs.Is(err, r.target) {
			AbortWithError(c, r.status, err, r.msg, nil)
			return
		}
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error",
		slog.String("error", err.Error()),
		slog.Any("stack", errs.ExtractStackLines(err, 8)),
	)
	AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}
