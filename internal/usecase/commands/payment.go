package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/user"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/pkg/money"
	"tourbook/internal/usecase/queries"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrBookingNotPayable = errs.New("only pending bookings can be paid")

type CreatePaymentInput struct {
	Gateway    string
	BookingID  uuid.UUID
	CardToken  string
	SourceType string
	ReturnURL  string
	// IdempotencyKey makes a retried create answer with the first request's order
	IdempotencyKey *uuid.UUID `json:"-"`
}

type CreatePaymentResult struct {
	PaymentID       uuid.UUID
	ExternalOrderID string
	RedirectURL     *string
	Status          payment.Status
}

type CaptureResult struct {
	Success          bool
	CapturedAmount   decimal.Decimal
	GatewayReference string
	Payment          *queries.PaymentView
}

type WebhookResult struct {
	Processed bool
}

type RefundResult struct {
	Success         bool
	RefundReference string
	Payment         *queries.PaymentView
}

type PaymentCommands interface {
	CreatePayment(ctx context.Context, actor user.Actor, in CreatePaymentInput) (*CreatePaymentResult, error)
	CapturePayment(ctx context.Context, actor user.Actor, gateway, externalOrderID string) (*CaptureResult, error)
	HandleWebhook(ctx context.Context, gateway string, req shared.WebhookRequest) (*WebhookResult, error)
	RefundPayment(ctx context.Context, actor user.Actor, paymentID uuid.UUID, amount *decimal.Decimal) (*RefundResult, error)
}

// PaymentService is PaymentCommands plus the automatic refund used by the lifecycle
type PaymentService interface {
	PaymentCommands
	Refunder
}

type paymentCommandsImpl struct {
	uow      shared.UnitOfWork
	gateways Gateways
	settings Settings
	clock    clock.Clock
}

func NewPaymentCommands(uow shared.UnitOfWork, gateways Gateways, settings Settings, clk clock.Clock) PaymentService {
	return &paymentCommandsImpl{
		uow:      uow,
		gateways: gateways,
		settings: settings,
		clock:    clk,
	}
}

// CreatePayment persists (or restarts) the pending payment row, then opens an order at
// the gateway. The gateway call happens between two short transactions. A transaction
// the payment stops pointing at is kept as an attempt so its late confirmation still settles.
func (uc *paymentCommandsImpl) CreatePayment(ctx context.Context, actor user.Actor, in CreatePaymentInput) (*CreatePaymentResult, error) {
	gw, err := uc.gateways.Lookup(in.Gateway)
	if err != nil {
		return nil, err
	}
	idem, err := newIdempotentRequest(in.IdempotencyKey, actor.ID, EndpointCreatePayment, in)
	if err != nil {
		return nil, err
	}

	var (
		p        *payment.Payment
		replayed *CreatePaymentResult
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, replayed = nil, nil
		b, err := tx.Bookings().FindForUpdate(ctx, in.BookingID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrBookingNotFound)
		}
		if !actor.IsTourist(b.TouristID()) && !actor.IsOperator() {
			return shared.ErrBookingNotFound
		}

		now := uc.clock.Now()
		prior, err := idem.claim(ctx, tx, now)
		if err != nil {
			return err
		}
		if prior != nil {
			replayed, err = replayPaymentResult(ctx, tx, prior)
			return err
		}

		if b.Status() != booking.StatusPending {
			return ErrBookingNotPayable
		}
		p, err = findPaymentForUpdate(ctx, tx, b.ID())
		if err != nil {
			return err
		}
		if p == nil {
			p = payment.NewPayment(b.ID(), gw.Method(), b.TotalAmount(), now)
			return tx.Payments().Create(ctx, p)
		}
		superseded, err := p.Restart(gw.Method(), b.TotalAmount(), now)
		if err != nil {
			return err
		}
		if superseded != nil {
			if err := tx.Payments().RecordAttempt(ctx, superseded); err != nil {
				return err
			}
		}
		return tx.Payments().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		slog.InfoContext(ctx, "payment create replayed",
			slog.String("payment_id", replayed.PaymentID.String()),
			slog.String("idempotency_key", in.IdempotencyKey.String()),
		)
		return replayed, nil
	}

	returnURL := in.ReturnURL
	if returnURL == "" {
		returnURL = uc.settings.ReturnURL
	}
	amount := p.Amount()
	order, err := gw.CreateOrder(ctx, shared.GatewayOrderRequest{
		PaymentID:   p.ID(),
		BookingID:   p.BookingID(),
		Amount:      amount,
		Currency:    uc.settings.Currency,
		Description: "Tour booking " + p.BookingID().String(),
		CardToken:   in.CardToken,
		SourceType:  in.SourceType,
		ReturnURL:   returnURL,
		CancelURL:   uc.settings.CancelURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "gateway order creation failed",
			slog.String("booking_id", p.BookingID().String()),
			slog.String("gateway", gw.Method().String()),
			slog.Any("error", err),
		)
		idem.release(ctx, uc.uow)
		return nil, err
	}

	result := &CreatePaymentResult{
		PaymentID:       p.ID(),
		ExternalOrderID: order.TransactionID,
		Status:          payment.StatusPending,
	}
	if order.RedirectURL != "" {
		result.RedirectURL = &order.RedirectURL
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		fresh, err := tx.Payments().FindByIDForUpdate(ctx, p.ID())
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}
		now := uc.clock.Now()
		if fresh.IsPending() && fresh.Method() == gw.Method() {
			if displaced := fresh.AttachTransaction(order.TransactionID, order.Details, now); displaced != nil {
				if err := tx.Payments().RecordAttempt(ctx, displaced); err != nil {
					return err
				}
			}
			if err := tx.Payments().Update(ctx, fresh); err != nil {
				return err
			}
		} else {
			// another request moved the payment on while this order was being opened
			stray := payment.NewAttempt(fresh.ID(), gw.Method(), order.TransactionID, amount, order.Details, now)
			if err := tx.Payments().RecordAttempt(ctx, stray); err != nil {
				return err
			}
		}
		p = fresh
		return idem.complete(ctx, tx, fresh.ID(), result, now)
	})
	if err != nil {
		return nil, err
	}

	if order.Settled {
		settled, err := uc.settle(ctx, gw.Method(), order.TransactionID, order.Details, "charge_create")
		if err != nil {
			return nil, err
		}
		if settled != nil {
			result.Status = settled.Status()
		}
	}
	return result, nil
}

// replayPaymentResult answers a retried create with the stored order and the payment's current status
func replayPaymentResult(ctx context.Context, tx shared.Tx, prior *shared.IdempotencyRecord) (*CreatePaymentResult, error) {
	var res CreatePaymentResult
	if err := json.Unmarshal(prior.Response, &res); err != nil {
		return nil, errs.Wrap(err, "decode idempotent payment response")
	}
	p, err := tx.Payments().FindByIDForUpdate(ctx, res.PaymentID)
	if err != nil {
		return nil, shared.MarkNotFound(err, shared.ErrPaymentNotFound)
	}
	res.Status = p.Status()
	return &res, nil
}

func (uc *paymentCommandsImpl) CapturePayment(ctx context.Context, actor user.Actor, gateway, externalOrderID string) (*CaptureResult, error) {
	gw, err := uc.gateways.Lookup(gateway)
	if err != nil {
		return nil, err
	}
	if externalOrderID == "" {
		return nil, errs.NewValidationError("external_order_id", "is required")
	}

	var current *payment.Payment
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByTransactionIDForUpdate(ctx, gw.Method(), externalOrderID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}
		if !actor.IsOperator() {
			b, err := tx.Reads().BookingByID(ctx, p.BookingID())
			if err != nil {
				return shared.MarkNotFound(err, shared.ErrBookingNotFound)
			}
			if !actor.IsTourist(b.TouristID()) {
				return shared.ErrPaymentNotFound
			}
		}
		current = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if current.IsCompleted() {
		return &CaptureResult{
			Success:          true,
			CapturedAmount:   current.Amount(),
			GatewayReference: current.DetailString(payment.DetailCaptureID),
			Payment:          queries.NewPaymentView(current),
		}, nil
	}

	capture, err := gw.Capture(ctx, externalOrderID)
	if err != nil {
		slog.ErrorContext(ctx, "gateway capture failed",
			slog.String("payment_id", current.ID().String()),
			slog.String("gateway", gw.Method().String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	if !capture.Success {
		return &CaptureResult{
			Success:          false,
			GatewayReference: capture.Reference,
			Payment:          queries.NewPaymentView(current),
		}, nil
	}

	settled, err := uc.settle(ctx, gw.Method(), externalOrderID, capture.Details, "capture")
	if err != nil {
		return nil, err
	}
	if settled == nil {
		settled = current
	}
	return &CaptureResult{
		Success:          true,
		CapturedAmount:   capture.CapturedAmount,
		GatewayReference: capture.Reference,
		Payment:          queries.NewPaymentView(settled),
	}, nil
}

// HandleWebhook applies a verified gateway callback. Redeliveries of an already settled
// transaction report Processed=false.
func (uc *paymentCommandsImpl) HandleWebhook(ctx context.Context, gateway string, req shared.WebhookRequest) (*WebhookResult, error) {
	gw, err := uc.gateways.Lookup(gateway)
	if err != nil {
		return nil, err
	}

	event, err := gw.ParseWebhook(ctx, req)
	if err != nil {
		return nil, err
	}

	logger := slog.With(
		slog.String("gateway", gw.Method().String()),
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.EventType),
		slog.String("transaction_id", event.TransactionID),
	)

	switch event.Outcome {
	case shared.WebhookCompleted:
		settled, err := uc.settle(ctx, gw.Method(), event.TransactionID, event.Details, "webhook")
		if err != nil {
			if errs.Is(err, shared.ErrPaymentNotFound) {
				logger.WarnContext(ctx, "webhook for unknown transaction ignored")
				return &WebhookResult{Processed: false}, nil
			}
			return nil, err
		}
		return &WebhookResult{Processed: settled != nil}, nil

	case shared.WebhookFailed:
		if err := uc.recordFailure(ctx, gw.Method(), event); err != nil {
			if errs.Is(err, shared.ErrPaymentNotFound) {
				logger.WarnContext(ctx, "webhook for unknown transaction ignored")
				return &WebhookResult{Processed: false}, nil
			}
			return nil, err
		}
		logger.InfoContext(ctx, "payment failure recorded")
		return &WebhookResult{Processed: true}, nil

	default:
		logger.DebugContext(ctx, "webhook event ignored")
		return &WebhookResult{Processed: false}, nil
	}
}

// RefundPayment is the operator's manual refund; amount nil refunds everything captured
func (uc *paymentCommandsImpl) RefundPayment(ctx context.Context, actor user.Actor, paymentID uuid.UUID, amount *decimal.Decimal) (*RefundResult, error) {
	if !actor.IsOperator() && !actor.IsSystem() {
		return nil, booking.ErrForbidden
	}
	p, ref, err := uc.refund(ctx, paymentID, amount, "operator refund")
	if err != nil {
		return nil, err
	}
	return &RefundResult{
		Success:         true,
		RefundReference: ref,
		Payment:         queries.NewPaymentView(p),
	}, nil
}

// RefundCompleted is the automatic refund. A refund already in flight or done elsewhere
// is not a failure and leaves no reconciliation job.
func (uc *paymentCommandsImpl) RefundCompleted(ctx context.Context, paymentID uuid.UUID, reason string) (*payment.Payment, error) {
	p, _, err := uc.refund(ctx, paymentID, nil, reason)
	if err != nil {
		if errs.Is(err, payment.ErrRefundInProgress) || errs.Is(err, payment.ErrAlreadyRefunded) {
			slog.InfoContext(ctx, "refund already handled elsewhere",
				slog.String("payment_id", paymentID.String()),
				slog.String("reason", reason),
			)
			return uc.currentPayment(ctx, paymentID)
		}
		uc.reportRefundFailure(ctx, paymentID, reason, err)
		return nil, err
	}
	return p, nil
}

func (uc *paymentCommandsImpl) currentPayment(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	var p *payment.Payment
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		p, err = tx.Payments().FindByIDForUpdate(ctx, paymentID)
		return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// refund marks the payment as refund-in-flight under its row lock before calling the
// gateway, so a concurrent refund of the same payment is turned away instead of sent twice
func (uc *paymentCommandsImpl) refund(ctx context.Context, paymentID uuid.UUID, requested *decimal.Decimal, reason string) (*payment.Payment, string, error) {
	var (
		p      *payment.Payment
		gw     shared.PaymentGateway
		amount decimal.Decimal
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		p, err = tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}
		amount, err = p.BeginRefund(requested, uc.clock.Now())
		if err != nil {
			return err
		}
		if p.TransactionID() == nil {
			return payment.ErrMissingTransactionID
		}
		var ok bool
		if gw, ok = uc.gateways[p.Method()]; !ok {
			return shared.ErrGatewayNotConfigured
		}
		return tx.Payments().Update(ctx, p)
	})
	if err != nil {
		return nil, "", err
	}

	refund, err := gw.Refund(ctx, shared.GatewayRefundRequest{
		TransactionID: *p.TransactionID(),
		Amount:        amount,
		Currency:      uc.settings.Currency,
		Details:       p.Details(),
	})
	if err != nil {
		uc.abortRefund(ctx, paymentID)
		return nil, "", err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		fresh, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return shared.MarkNotFound(err, shared.ErrPaymentNotFound)
		}
		details := payment.Details{
			payment.DetailRefundID:     refund.Reference,
			payment.DetailRefundAmount: money.String(amount),
			payment.DetailRefundReason: reason,
		}
		for k, v := range refund.Details {
			details[k] = v
		}
		if err := fresh.MarkRefunded(details, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, fresh); err != nil {
			return err
		}
		p = fresh
		return shared.EnqueueJob(ctx, tx.Notifications(), shared.JobPaymentRefunded, shared.TopicPayment, paymentEvent{
			PaymentID: fresh.ID(),
			BookingID: fresh.BookingID(),
			Gateway:   fresh.Method().String(),
			Amount:    money.String(amount),
			Reference: refund.Reference,
			Reason:    reason,
		}, uc.clock.Now())
	})
	if err != nil {
		return nil, "", err
	}

	slog.InfoContext(ctx, "payment refunded",
		slog.String("payment_id", p.ID().String()),
		slog.String("amount", money.String(amount)),
		slog.String("reference", refund.Reference),
	)
	return p, refund.Reference, nil
}

// abortRefund clears the in-flight marker after the gateway refused the refund
func (uc *paymentCommandsImpl) abortRefund(ctx context.Context, paymentID uuid.UUID) {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		p.AbortRefund(uc.clock.Now())
		return tx.Payments().Update(ctx, p)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to clear refund marker",
			slog.String("payment_id", paymentID.String()),
			slog.Any("error", err),
		)
	}
}

// reportRefundFailure leaves a reconciliation job for operators; the refund itself is not retried
func (uc *paymentCommandsImpl) reportRefundFailure(ctx context.Context, paymentID uuid.UUID, reason string, cause error) {
	slog.ErrorContext(ctx, "refund failed, manual reconciliation required",
		slog.String("payment_id", paymentID.String()),
		slog.String("reason", reason),
		slog.Any("error", cause),
	)

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return shared.EnqueueJob(ctx, tx.Notifications(), shared.JobRefundFailed, shared.TopicOperators, paymentEvent{
			PaymentID: paymentID,
			Reason:    reason,
			Error:     cause.Error(),
		}, uc.clock.Now())
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to queue refund reconciliation job",
			slog.String("payment_id", paymentID.String()),
			slog.Any("error", err),
		)
	}
}

type paymentEvent struct {
	PaymentID uuid.UUID `json:"payment_id"`
	BookingID uuid.UUID `json:"booking_id,omitempty"`
	Gateway   string    `json:"gateway,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
}
