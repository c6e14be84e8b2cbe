package commands

import (
	"context"
	"fmt"

	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/errs"

	"github.com/google/uuid"
)

// Refunder returns the full captured amount of a completed payment. Failures are
// reported for manual reconciliation before being returned.
type Refunder interface {
	RefundCompleted(ctx context.Context, paymentID uuid.UUID, reason string) (*payment.Payment, error)
}

// RefundError is a reconciliation item: the booking change stands, the money did not move
type RefundError struct {
	PaymentID uuid.UUID
	BookingID uuid.UUID
	Gateway   payment.Method
	Err       error
}

func (e *RefundError) Error() string {
	return fmt.Sprintf("refund of payment %s failed: %v", e.PaymentID, e.Err)
}

func (e *RefundError) Unwrap() error {
	return e.Err
}

func asRefundError(p *payment.Payment, err error) *RefundError {
	var re *RefundError
	if errs.As(err, &re) {
		return re
	}
	return &RefundError{
		PaymentID: p.ID(),
		BookingID: p.BookingID(),
		Gateway:   p.Method(),
		Err:       err,
	}
}
