package commands

import (
	"context"
	"log/slog"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/user"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/queries"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type ChangeStatusInput struct {
	BookingID uuid.UUID
	Status    string
	Reason    string
}

type TransitionResult struct {
	Booking *queries.BookingView
	// Changed is false when the booking already had the requested status
	Changed bool
	// RefundError is set when the booking was cancelled but its payment could not be refunded
	RefundError *RefundError
}

type LifecycleCommands interface {
	ChangeStatus(ctx context.Context, actor user.Actor, in ChangeStatusInput) (*TransitionResult, error)
	Cancel(ctx context.Context, actor user.Actor, bookingID uuid.UUID, reason string) (*TransitionResult, error)
}

type lifecycleCommandsImpl struct {
	uow      shared.UnitOfWork
	refunder Refunder
	settings Settings
	clock    clock.Clock
}

func NewLifecycleCommands(uow shared.UnitOfWork, refunder Refunder, settings Settings, clk clock.Clock) LifecycleCommands {
	return &lifecycleCommandsImpl{
		uow:      uow,
		refunder: refunder,
		settings: settings,
		clock:    clk,
	}
}

func (uc *lifecycleCommandsImpl) ChangeStatus(ctx context.Context, actor user.Actor, in ChangeStatusInput) (*TransitionResult, error) {
	target, err := booking.ParseStatus(in.Status)
	if err != nil {
		return nil, errs.NewValidationError("status", "unknown booking status")
	}
	return uc.transition(ctx, actor, in.BookingID, target, in.Reason)
}

func (uc *lifecycleCommandsImpl) Cancel(ctx context.Context, actor user.Actor, bookingID uuid.UUID, reason string) (*TransitionResult, error) {
	return uc.transition(ctx, actor, bookingID, booking.StatusCancelled, reason)
}

func (uc *lifecycleCommandsImpl) transition(ctx context.Context, actor user.Actor, bookingID uuid.UUID, target booking.Status, reason string) (*TransitionResult, error) {
	var (
		b        *booking.Booking
		p        *payment.Payment
		changed  bool
		toRefund *payment.Payment
	)

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		toRefund = nil
		var err error
		b, err = tx.Bookings().FindForUpdate(ctx, bookingID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrBookingNotFound)
		}
		if !b.CanView(actor) {
			return shared.ErrBookingNotFound
		}

		p, err = findPaymentForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		changed, err = b.Transition(booking.TransitionRequest{
			Target: target,
			Actor:  actor,
			Reason: reason,
			Now:    now,
		}, uc.settings.transitionPolicy())
		if err != nil || !changed {
			return err
		}

		if err := tx.Bookings().UpdateStatus(ctx, b); err != nil {
			return err
		}
		if err := enqueueBookingEvent(ctx, tx, bookingJobKind(target), b, actor, now); err != nil {
			return err
		}

		switch target {
		case booking.StatusCompleted:
			if err := uc.settleOnCompletion(ctx, tx, b, p); err != nil {
				return err
			}
			if err := enqueueBookingEvent(ctx, tx, shared.JobReviewRequested, b, actor, now); err != nil {
				return err
			}
		case booking.StatusCancelled:
			if p != nil && p.IsCompleted() {
				toRefund = p
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Changed: changed}
	if changed {
		slog.InfoContext(ctx, "booking status changed",
			slog.String("booking_id", b.ID().String()),
			slog.String("status", b.Status().String()),
			slog.String("actor", actor.String()),
		)
	}

	// Refunds run after commit; a failed refund never undoes the cancellation
	if toRefund != nil {
		refunded, rerr := uc.refunder.RefundCompleted(ctx, toRefund.ID(), "booking cancelled")
		if rerr != nil {
			result.RefundError = asRefundError(toRefund, rerr)
		} else if refunded != nil {
			p = refunded
		}
	}

	result.Booking = queries.NewBookingView(b, p)
	return result, nil
}

// settleOnCompletion marks a still pending payment as collected once the tour took place
func (uc *lifecycleCommandsImpl) settleOnCompletion(ctx context.Context, tx shared.Tx, b *booking.Booking, p *payment.Payment) error {
	if p == nil || !p.IsPending() {
		return nil
	}
	now := uc.clock.Now()
	changed, err := p.MarkCompleted(payment.Details{payment.DetailSettledBy: "booking_completed"}, now)
	if err != nil || !changed {
		return err
	}
	if err := tx.Payments().Update(ctx, p); err != nil {
		return err
	}
	ev := shared.NewBookingEvent(b)
	id := p.ID()
	ev.PaymentID = &id
	return shared.EnqueueJob(ctx, tx.Notifications(), shared.JobPaymentCompleted, shared.TopicPayment, ev, now)
}

func findPaymentForUpdate(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (*payment.Payment, error) {
	p, err := tx.Payments().FindByBookingIDForUpdate(ctx, bookingID)
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
