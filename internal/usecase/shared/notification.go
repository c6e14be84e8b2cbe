package shared

import (
	"context"
	"encoding/json"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/pkg/errs"

	"github.com/google/uuid"
)

// Job kinds double as routing keys on the event exchange
const (
	JobBookingCreated   = "booking_created"
	JobBookingConfirmed = "booking_confirmed"
	JobBookingRejected  = "booking_rejected"
	JobBookingCancelled = "booking_cancelled"
	JobBookingCompleted = "booking_completed"
	JobReviewRequested  = "review_requested"
	JobPaymentCompleted = "payment_completed"
	JobPaymentRefunded  = "payment_refunded"
	JobRefundFailed     = "refund_failed"
)

const (
	TopicBooking   = "booking"
	TopicPayment   = "payment"
	TopicOperators = "operators"
)

// BookingEvent is the payload handed to the notification service
type BookingEvent struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	TouristID   uuid.UUID  `json:"tourist_id"`
	GuideID     uuid.UUID  `json:"guide_id"`
	Status      string     `json:"status"`
	TourDate    string     `json:"tour_date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	TotalAmount string     `json:"total_amount"`
	Reason      string     `json:"reason,omitempty"`
	Actor       string     `json:"actor,omitempty"`
	PaymentID   *uuid.UUID `json:"payment_id,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func NewBookingEvent(b *booking.Booking) BookingEvent {
	ev := BookingEvent{
		BookingID:   b.ID(),
		TouristID:   b.TouristID(),
		GuideID:     b.GuideID(),
		Status:      b.Status().String(),
		TourDate:    b.TourDate().Format("2006-01-02"),
		StartTime:   b.Slot().Start().String(),
		EndTime:     b.Slot().End().String(),
		TotalAmount: b.TotalAmount().StringFixed(2),
	}
	if r := b.CancellationReason(); r != nil {
		ev.Reason = *r
	}
	return ev
}

func EnqueueJob(ctx context.Context, repo NotificationRepository, kind, topic string, payload any, runAt time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "marshal notification payload")
	}
	return repo.CreateJob(ctx, kind, topic, body, runAt)
}
