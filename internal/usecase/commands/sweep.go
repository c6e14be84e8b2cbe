package commands

import (
	"context"
	"log/slog"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/user"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
)

const ExpiredReason = "expired"

type SweepResult struct {
	Confirmed int
	Expired   int
	Failed    int
	// KeysPurged counts idempotency keys dropped after their retention window
	KeysPurged int64
}

type SweepCommands interface {
	// SweepStalePending resolves bookings left pending longer than the auto-confirm window:
	// paid ones are confirmed, the rest are cancelled as expired. Expired idempotency keys
	// are purged on the same tick.
	SweepStalePending(ctx context.Context) (*SweepResult, error)
}

type sweepCommandsImpl struct {
	uow      shared.UnitOfWork
	settings Settings
	clock    clock.Clock
}

func NewSweepCommands(uow shared.UnitOfWork, settings Settings, clk clock.Clock) SweepCommands {
	return &sweepCommandsImpl{
		uow:      uow,
		settings: settings,
		clock:    clk,
	}
}

func (uc *sweepCommandsImpl) SweepStalePending(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		result.KeysPurged, err = tx.Idempotency().DeleteExpired(ctx, uc.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.KeysPurged > 0 {
		slog.InfoContext(ctx, "expired idempotency keys purged", slog.Int64("count", result.KeysPurged))
	}

	if uc.settings.AutoConfirmAfter <= 0 {
		return result, nil
	}

	cutoff := uc.clock.Now().Add(-uc.settings.AutoConfirmAfter)
	batch := uc.settings.SweepBatchSize
	if batch <= 0 {
		batch = 100
	}

	var ids []uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Bookings().ListStalePending(ctx, cutoff, batch)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		status, err := uc.resolve(ctx, id)
		if err != nil {
			result.Failed++
			slog.WarnContext(ctx, "failed to resolve stale booking",
				slog.String("booking_id", id.String()),
				slog.Any("error", err),
			)
			continue
		}
		switch status {
		case booking.StatusConfirmed:
			result.Confirmed++
		case booking.StatusCancelled:
			result.Expired++
		}
	}

	if len(ids) > 0 {
		slog.InfoContext(ctx, "stale pending bookings swept",
			slog.Int("confirmed", result.Confirmed),
			slog.Int("expired", result.Expired),
			slog.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// resolve returns the status it moved the booking to, or "" when another writer got there first
func (uc *sweepCommandsImpl) resolve(ctx context.Context, id uuid.UUID) (booking.Status, error) {
	var moved booking.Status
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		moved = ""
		b, err := tx.Bookings().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.Status() != booking.StatusPending {
			return nil
		}

		p, err := findPaymentForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		req := booking.TransitionRequest{
			Target: booking.StatusCancelled,
			Actor:  user.SystemActor(),
			Reason: ExpiredReason,
			Now:    uc.clock.Now(),
		}
		if p != nil && p.IsCompleted() {
			req.Target = booking.StatusConfirmed
			req.Reason = ""
		}

		changed, err := b.Transition(req, uc.settings.transitionPolicy())
		if err != nil || !changed {
			return err
		}
		if err := tx.Bookings().UpdateStatus(ctx, b); err != nil {
			return err
		}
		moved = req.Target
		return enqueueBookingEvent(ctx, tx, bookingJobKind(req.Target), b, req.Actor, req.Now)
	})
	return moved, err
}
