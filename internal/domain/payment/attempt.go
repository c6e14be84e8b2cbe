package payment

import (
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrAttemptNotRefundable = errors.New("payment attempt is not awaiting a refund")

type AttemptStatus string

const (
	// AttemptSuperseded is an earlier gateway transaction replaced by a newer one
	AttemptSuperseded AttemptStatus = "superseded"
	// AttemptAdopted was confirmed by the gateway while the payment was still pending
	AttemptAdopted   AttemptStatus = "adopted"
	AttemptRefunding AttemptStatus = "refunding"
	AttemptRefunded  AttemptStatus = "refunded"
)

func (s AttemptStatus) String() string {
	return string(s)
}

func (s AttemptStatus) IsValid() bool {
	switch s {
	case AttemptSuperseded, AttemptAdopted, AttemptRefunding, AttemptRefunded:
		return true
	default:
		return false
	}
}

func ParseAttemptStatus(s string) (AttemptStatus, error) {
	status := AttemptStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Attempt is a gateway transaction a payment has pointed at in the past. The gateway may
// still settle it, so it is kept until it is either adopted or refunded.
type Attempt struct {
	id            uuid.UUID
	paymentID     uuid.UUID
	method        Method
	transactionID string
	amount        decimal.Decimal
	status        AttemptStatus
	details       Details
	createdAt     time.Time
	updatedAt     time.Time
}

// NewAttempt records a gateway transaction that was opened for the payment but never
// became its current one
func NewAttempt(paymentID uuid.UUID, method Method, transactionID string, amount decimal.Decimal, details Details, now time.Time) *Attempt {
	if details == nil {
		details = Details{}
	}
	return &Attempt{
		id:            uuid.New(),
		paymentID:     paymentID,
		method:        method,
		transactionID: transactionID,
		amount:        amount,
		status:        AttemptSuperseded,
		details:       maps.Clone(details),
		createdAt:     now,
		updatedAt:     now,
	}
}

type AttemptSnapshot struct {
	ID            uuid.UUID
	PaymentID     uuid.UUID
	Method        Method
	TransactionID string
	Amount        decimal.Decimal
	Status        AttemptStatus
	Details       Details
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructAttempt(s AttemptSnapshot) *Attempt {
	details := s.Details
	if details == nil {
		details = Details{}
	}
	return &Attempt{
		id:            s.ID,
		paymentID:     s.PaymentID,
		method:        s.Method,
		transactionID: s.TransactionID,
		amount:        s.Amount,
		status:        s.Status,
		details:       details,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
	}
}

func (a *Attempt) ID() uuid.UUID           { return a.id }
func (a *Attempt) PaymentID() uuid.UUID    { return a.paymentID }
func (a *Attempt) Method() Method          { return a.method }
func (a *Attempt) TransactionID() string   { return a.transactionID }
func (a *Attempt) Amount() decimal.Decimal { return a.amount }
func (a *Attempt) Status() AttemptStatus   { return a.status }
func (a *Attempt) Details() Details        { return maps.Clone(a.details) }
func (a *Attempt) CreatedAt() time.Time    { return a.createdAt }
func (a *Attempt) UpdatedAt() time.Time    { return a.updatedAt }

// BeginRefund claims a superseded attempt that the gateway settled after the payment
// was completed through another transaction
func (a *Attempt) BeginRefund(details Details, now time.Time) error {
	if a.status != AttemptSuperseded {
		return ErrAttemptNotRefundable
	}
	for k, v := range details {
		a.details[k] = v
	}
	a.status = AttemptRefunding
	a.updatedAt = now
	return nil
}

func (a *Attempt) AbortRefund(now time.Time) {
	if a.status == AttemptRefunding {
		a.status = AttemptSuperseded
		a.updatedAt = now
	}
}

func (a *Attempt) MarkRefunded(details Details, now time.Time) error {
	if a.status != AttemptRefunding {
		return ErrAttemptNotRefundable
	}
	for k, v := range details {
		a.details[k] = v
	}
	a.status = AttemptRefunded
	a.updatedAt = now
	return nil
}
