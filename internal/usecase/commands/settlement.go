package commands

import (
	"context"
	"log/slog"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/user"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/pkg/money"
	"tourbook/internal/usecase/shared"
)

// settle is the single path that turns a gateway confirmation into a completed payment
// and a confirmed booking. It is keyed by the gateway transaction id and returns nil when
// the transaction was already settled. A superseded transaction is adopted while the
// payment is still pending and refunded once the payment was collected another way.
func (uc *paymentCommandsImpl) settle(ctx context.Context, method payment.Method, transactionID string, details payment.Details, source string) (*payment.Payment, error) {
	var (
		settled      *payment.Payment
		refundNeeded bool
		surplus      *payment.Attempt
	)

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		settled, refundNeeded, surplus = nil, false, nil

		// booking first, then payment: the order CreatePayment and the lifecycle lock in
		bookingID, err := tx.Payments().BookingIDForTransaction(ctx, method, transactionID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}
		b, err := tx.Bookings().FindForUpdate(ctx, bookingID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrBookingNotFound)
		}
		p, err := tx.Payments().FindByTransactionIDForUpdate(ctx, method, transactionID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}

		merged := payment.Details{payment.DetailSettledBy: source}
		for k, v := range details {
			merged[k] = v
		}
		now := uc.clock.Now()

		if !p.HoldsTransaction(method, transactionID) {
			a, err := tx.Payments().FindAttemptForUpdate(ctx, method, transactionID)
			if err != nil {
				return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
			}
			if !p.IsPending() {
				if err := a.BeginRefund(merged, now); err != nil {
					if errs.Is(err, payment.ErrAttemptNotRefundable) {
						return nil
					}
					return err
				}
				if err := tx.Payments().UpdateAttempt(ctx, a); err != nil {
					return err
				}
				surplus, settled = a, p
				return nil
			}
			displaced, err := p.Adopt(a, now)
			if err != nil {
				return err
			}
			if err := tx.Payments().UpdateAttempt(ctx, a); err != nil {
				return err
			}
			if displaced != nil {
				if err := tx.Payments().RecordAttempt(ctx, displaced); err != nil {
					return err
				}
			}
		}

		changed, err := p.MarkCompleted(merged, now)
		if errs.Is(err, payment.ErrAlreadyRefunded) {
			return nil
		}
		if err != nil || !changed {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}

		ev := shared.NewBookingEvent(b)
		id := p.ID()
		ev.PaymentID = &id
		if err := shared.EnqueueJob(ctx, tx.Notifications(), shared.JobPaymentCompleted, shared.TopicPayment, ev, now); err != nil {
			return err
		}

		switch b.Status() {
		case booking.StatusPending:
			system := user.SystemActor()
			if _, err := b.Transition(booking.TransitionRequest{
				Target: booking.StatusConfirmed,
				Actor:  system,
				Now:    now,
			}, uc.settings.transitionPolicy()); err != nil {
				return err
			}
			if err := tx.Bookings().UpdateStatus(ctx, b); err != nil {
				return err
			}
			if err := enqueueBookingEvent(ctx, tx, shared.JobBookingConfirmed, b, system, now); err != nil {
				return err
			}
		case booking.StatusCancelled, booking.StatusRejected:
			refundNeeded = true
		}

		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if settled == nil {
		return nil, nil
	}
	if surplus != nil {
		uc.refundAttempt(ctx, surplus)
		return settled, nil
	}

	slog.InfoContext(ctx, "payment settled",
		slog.String("payment_id", settled.ID().String()),
		slog.String("booking_id", settled.BookingID().String()),
		slog.String("gateway", method.String()),
		slog.String("source", source),
	)

	if refundNeeded {
		refunded, err := uc.RefundCompleted(ctx, settled.ID(), "booking no longer active")
		if err == nil {
			settled = refunded
		}
	}
	return settled, nil
}

// refundAttempt returns the money of a superseded transaction the gateway settled after
// the payment had already been collected. The attempt was marked refunding under its lock.
func (uc *paymentCommandsImpl) refundAttempt(ctx context.Context, a *payment.Attempt) {
	const reason = "superseded payment attempt settled"

	var (
		ref *shared.GatewayRefund
		err error
	)
	if gw, ok := uc.gateways[a.Method()]; ok {
		ref, err = gw.Refund(ctx, shared.GatewayRefundRequest{
			TransactionID: a.TransactionID(),
			Amount:        a.Amount(),
			Currency:      uc.settings.Currency,
			Details:       a.Details(),
		})
	} else {
		err = shared.ErrGatewayNotConfigured
	}

	txErr := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		fresh, ferr := tx.Payments().FindAttemptForUpdate(ctx, a.Method(), a.TransactionID())
		if ferr != nil {
			return ferr
		}
		now := uc.clock.Now()
		if err != nil {
			fresh.AbortRefund(now)
			return tx.Payments().UpdateAttempt(ctx, fresh)
		}
		details := payment.Details{
			payment.DetailRefundID:     ref.Reference,
			payment.DetailRefundAmount: money.String(a.Amount()),
			payment.DetailRefundReason: reason,
		}
		for k, v := range ref.Details {
			details[k] = v
		}
		if merr := fresh.MarkRefunded(details, now); merr != nil {
			return merr
		}
		if uerr := tx.Payments().UpdateAttempt(ctx, fresh); uerr != nil {
			return uerr
		}
		return shared.EnqueueJob(ctx, tx.Notifications(), shared.JobPaymentRefunded, shared.TopicPayment, paymentEvent{
			PaymentID: a.PaymentID(),
			Gateway:   a.Method().String(),
			Amount:    money.String(a.Amount()),
			Reference: ref.Reference,
			Reason:    reason,
		}, now)
	})

	if err != nil {
		uc.reportRefundFailure(ctx, a.PaymentID(), reason, err)
		return
	}
	if txErr != nil {
		slog.ErrorContext(ctx, "failed to record refund of superseded transaction",
			slog.String("payment_id", a.PaymentID().String()),
			slog.String("transaction_id", a.TransactionID()),
			slog.Any("error", txErr),
		)
		return
	}
	slog.InfoContext(ctx, "superseded transaction refunded",
		slog.String("payment_id", a.PaymentID().String()),
		slog.String("transaction_id", a.TransactionID()),
		slog.String("reference", ref.Reference),
	)
}

// recordFailure keeps the gateway's failure reason on a pending payment so the tourist can retry
func (uc *paymentCommandsImpl) recordFailure(ctx context.Context, method payment.Method, event *shared.WebhookEvent) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByTransactionIDForUpdate(ctx, method, event.TransactionID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}
		// failures of a superseded transaction say nothing about the current one
		if !p.IsPending() || !p.HoldsTransaction(method, event.TransactionID) {
			return nil
		}
		p.MergeDetails(event.Details)
		return tx.Payments().Update(ctx, p)
	})
}
