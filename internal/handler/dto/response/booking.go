package response

import (
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type RefundErrorResponse struct {
	PaymentID uuid.UUID `json:"payment_id"`
	Gateway   string    `json:"gateway"`
	Message   string    `json:"message"`
}

// BookingTransitionResponse is the booking after a status change. RefundError is set when
// a cancellation went through but the automatic refund did not.
type BookingTransitionResponse struct {
	*queries.BookingView
	RefundError *RefundErrorResponse `json:"refund_error,omitempty"`
}

func FromTransitionResult(r *commands.TransitionResult) *BookingTransitionResponse {
	resp := &BookingTransitionResponse{BookingView: r.Booking}
	if r.RefundError != nil {
		resp.RefundError = &RefundErrorResponse{
			PaymentID: r.RefundError.PaymentID,
			Gateway:   r.RefundError.Gateway.String(),
			Message:   r.RefundError.Err.Error(),
		}
	}
	return resp
}
