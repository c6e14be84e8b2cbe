package payment

import (
	"maps"
	"time"

	"tourbook/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Details is the gateway specific JSON stored alongside a payment
type Details map[string]any

// Well-known detail keys shared by the gateway adapters
const (
	DetailCaptureID      = "capture_id"
	DetailSettledBy      = "settled_by"
	DetailRefundID       = "refund_id"
	DetailRefundAmount   = "refund_amount"
	DetailRefundReason   = "refund_reason"
	DetailFailureCode    = "failure_code"
	DetailFailureMessage = "failure_message"
	// DetailRefundPending holds the amount of a refund sent to the gateway but not yet recorded
	DetailRefundPending = "refund_pending"
)

type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	method        Method
	transactionID *string
	amount        decimal.Decimal
	status        Status
	details       Details
	paidAt        *time.Time
	refundedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewPayment(bookingID uuid.UUID, method Method, amount decimal.Decimal, now time.Time) *Payment {
	return &Payment{
		id:        uuid.New(),
		bookingID: bookingID,
		method:    method,
		amount:    money.Round(amount),
		status:    StatusPending,
		details:   Details{},
		createdAt: now,
		updatedAt: now,
	}
}

type Snapshot struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	Method        Method
	TransactionID *string
	Amount        decimal.Decimal
	Status        Status
	Details       Details
	PaidAt        *time.Time
	RefundedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructPayment(s Snapshot) *Payment {
	details := s.Details
	if details == nil {
		details = Details{}
	}
	return &Payment{
		id:            s.ID,
		bookingID:     s.BookingID,
		method:        s.Method,
		transactionID: s.TransactionID,
		amount:        s.Amount,
		status:        s.Status,
		details:       details,
		paidAt:        s.PaidAt,
		refundedAt:    s.RefundedAt,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
	}
}

func (p *Payment) ID() uuid.UUID           { return p.id }
func (p *Payment) BookingID() uuid.UUID    { return p.bookingID }
func (p *Payment) Method() Method          { return p.method }
func (p *Payment) TransactionID() *string  { return p.transactionID }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) Status() Status          { return p.status }
func (p *Payment) Details() Details        { return maps.Clone(p.details) }
func (p *Payment) PaidAt() *time.Time      { return p.paidAt }
func (p *Payment) RefundedAt() *time.Time  { return p.refundedAt }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time    { return p.updatedAt }

func (p *Payment) IsPending() bool   { return p.status == StatusPending }
func (p *Payment) IsCompleted() bool { return p.status == StatusCompleted }

// DetailString reads a string value recorded by a gateway adapter
func (p *Payment) DetailString(key string) string {
	v, _ := p.details[key].(string)
	return v
}

// Restart points a pending payment at a new gateway attempt. The transaction it
// replaces is returned so a late confirmation of it can still be traced and settled.
func (p *Payment) Restart(method Method, amount decimal.Decimal, now time.Time) (*Attempt, error) {
	if p.status != StatusPending {
		return nil, ErrAlreadyPaid
	}
	superseded := p.currentAttempt(now)
	p.method = method
	p.amount = money.Round(amount)
	p.transactionID = nil
	p.details = Details{}
	p.updatedAt = now
	return superseded, nil
}

// HoldsTransaction reports whether the gateway transaction is the payment's current one
func (p *Payment) HoldsTransaction(method Method, transactionID string) bool {
	return p.method == method && p.transactionID != nil && *p.transactionID == transactionID
}

// Adopt makes a superseded attempt current again because the gateway confirmed it.
// The attempt it displaces, if any, is returned as superseded.
func (p *Payment) Adopt(a *Attempt, now time.Time) (*Attempt, error) {
	if p.status != StatusPending {
		return nil, ErrAlreadyPaid
	}
	displaced := p.currentAttempt(now)
	txID := a.transactionID
	p.method = a.method
	p.amount = a.amount
	p.transactionID = &txID
	p.details = maps.Clone(a.details)
	p.updatedAt = now
	a.status = AttemptAdopted
	a.updatedAt = now
	return displaced, nil
}

func (p *Payment) currentAttempt(now time.Time) *Attempt {
	if p.transactionID == nil {
		return nil
	}
	return &Attempt{
		id:            uuid.New(),
		paymentID:     p.id,
		method:        p.method,
		transactionID: *p.transactionID,
		amount:        p.amount,
		status:        AttemptSuperseded,
		details:       maps.Clone(p.details),
		createdAt:     now,
		updatedAt:     now,
	}
}

// AttachTransaction records the gateway's identifier; once set it is the idempotency key.
// A different transaction attached by a concurrent request is returned as superseded.
func (p *Payment) AttachTransaction(transactionID string, details Details, now time.Time) *Attempt {
	var displaced *Attempt
	if p.transactionID != nil && *p.transactionID != transactionID {
		displaced = p.currentAttempt(now)
		p.details = Details{}
	}
	p.transactionID = &transactionID
	p.MergeDetails(details)
	p.updatedAt = now
	return displaced
}

func (p *Payment) MergeDetails(details Details) {
	for k, v := range details {
		p.details[k] = v
	}
}

// MarkCompleted settles the payment. A second call reports changed=false.
func (p *Payment) MarkCompleted(details Details, now time.Time) (bool, error) {
	switch p.status {
	case StatusCompleted:
		return false, nil
	case StatusRefunded:
		return false, ErrAlreadyRefunded
	}
	p.status = StatusCompleted
	p.paidAt = &now
	p.updatedAt = now
	p.MergeDetails(details)
	return true, nil
}

// RefundAmount resolves the amount to refund, defaulting to the captured amount
func (p *Payment) RefundAmount(requested *decimal.Decimal) (decimal.Decimal, error) {
	if p.status != StatusCompleted {
		if p.status == StatusRefunded {
			return decimal.Zero, ErrAlreadyRefunded
		}
		return decimal.Zero, ErrNotRefundable
	}
	if requested == nil {
		return p.amount, nil
	}
	amount := money.Round(*requested)
	if !amount.IsPositive() || amount.GreaterThan(p.amount) {
		return decimal.Zero, ErrInvalidRefundAmount
	}
	return amount, nil
}

// BeginRefund resolves the refund amount and marks it as sent to the gateway.
// Only one refund can be in flight; the marker is cleared by MarkRefunded or AbortRefund.
func (p *Payment) BeginRefund(requested *decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	amount, err := p.RefundAmount(requested)
	if err != nil {
		return decimal.Zero, err
	}
	if p.RefundInProgress() {
		return decimal.Zero, ErrRefundInProgress
	}
	p.details[DetailRefundPending] = money.String(amount)
	p.updatedAt = now
	return amount, nil
}

func (p *Payment) RefundInProgress() bool {
	_, ok := p.details[DetailRefundPending]
	return ok
}

// AbortRefund clears the in-flight marker after the gateway refused the refund
func (p *Payment) AbortRefund(now time.Time) {
	delete(p.details, DetailRefundPending)
	p.updatedAt = now
}

func (p *Payment) MarkRefunded(details Details, now time.Time) error {
	if p.status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if p.status != StatusCompleted {
		return ErrNotRefundable
	}
	delete(p.details, DetailRefundPending)
	p.status = StatusRefunded
	p.refundedAt = &now
	p.updatedAt = now
	p.MergeDetails(details)
	return nil
}
