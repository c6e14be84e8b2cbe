package commands

import (
	"context"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/user"
	"tourbook/internal/usecase/shared"
)

func bookingJobKind(status booking.Status) string {
	switch status {
	case booking.StatusConfirmed:
		return shared.JobBookingConfirmed
	case booking.StatusRejected:
		return shared.JobBookingRejected
	case booking.StatusCancelled:
		return shared.JobBookingCancelled
	case booking.StatusCompleted:
		return shared.JobBookingCompleted
	default:
		return shared.JobBookingCreated
	}
}

func enqueueBookingEvent(ctx context.Context, tx shared.Tx, kind string, b *booking.Booking, actor user.Actor, now time.Time) error {
	ev := shared.NewBookingEvent(b)
	ev.Actor = actor.String()
	return shared.EnqueueJob(ctx, tx.Notifications(), kind, shared.TopicBooking, ev, now)
}
