//go:build unit

package payment_test

import (
	"testing"
	"time"

	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPayment_MarkCompletedIsIdempotent(t *testing.T) {
	p := payment.NewPayment(uuid.New(), payment.MethodOmise, decimal.RequireFromString("80.005"), now)
	assert.Equal(t, "80.01", p.Amount().StringFixed(2))

	changed, err := p.MarkCompleted(payment.Details{"charge_status": "successful"}, now)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, p.PaidAt())

	changed, err = p.MarkCompleted(nil, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, now, *p.PaidAt())
	assert.Equal(t, "successful", p.DetailString("charge_status"))
}

func TestPayment_Restart(t *testing.T) {
	p := payment.NewPayment(uuid.New(), payment.MethodOmise, decimal.NewFromInt(100), now)
	p.AttachTransaction("chrg_old", payment.Details{"charge_status": "pending"}, now)

	superseded, err := p.Restart(payment.MethodPayPal, decimal.RequireFromString("120.5"), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, payment.MethodPayPal, p.Method())
	assert.Nil(t, p.TransactionID())
	assert.Empty(t, p.Details())
	assert.Equal(t, "120.50", p.Amount().StringFixed(2))

	require.NotNil(t, superseded)
	assert.Equal(t, p.ID(), superseded.PaymentID())
	assert.Equal(t, payment.MethodOmise, superseded.Method())
	assert.Equal(t, "chrg_old", superseded.TransactionID())
	assert.Equal(t, "100.00", superseded.Amount().StringFixed(2))
	assert.Equal(t, payment.AttemptSuperseded, superseded.Status())
	assert.Equal(t, "pending", superseded.Details()["charge_status"])

	// nothing was sent to a gateway yet, so nothing is superseded
	again, err := p.Restart(payment.MethodOmise, decimal.NewFromInt(100), now)
	require.NoError(t, err)
	assert.Nil(t, again)

	_, err = p.MarkCompleted(nil, now)
	require.NoError(t, err)
	_, err = p.Restart(payment.MethodOmise, decimal.NewFromInt(1), now)
	assert.ErrorIs(t, err, payment.ErrAlreadyPaid)
}

func TestPayment_AdoptSupersededAttempt(t *testing.T) {
	p := payment.NewPayment(uuid.New(), payment.MethodOmise, decimal.NewFromInt(100), now)
	p.AttachTransaction("chrg_first", payment.Details{"charge_status": "pending"}, now)
	first, err := p.Restart(payment.MethodOmise, decimal.NewFromInt(100), now)
	require.NoError(t, err)
	p.AttachTransaction("chrg_second", nil, now)

	assert.False(t, p.HoldsTransaction(payment.MethodOmise, "chrg_first"))
	assert.True(t, p.HoldsTransaction(payment.MethodOmise, "chrg_second"))
	assert.False(t, p.HoldsTransaction(payment.MethodPayPal, "chrg_second"))

	displaced, err := p.Adopt(first, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, p.HoldsTransaction(payment.MethodOmise, "chrg_first"))
	assert.Equal(t, payment.AttemptAdopted, first.Status())
	require.NotNil(t, displaced)
	assert.Equal(t, "chrg_second", displaced.TransactionID())
	assert.Equal(t, payment.AttemptSuperseded, displaced.Status())

	_, err = p.MarkCompleted(nil, now)
	require.NoError(t, err)
	_, err = p.Adopt(displaced, now)
	assert.ErrorIs(t, err, payment.ErrAlreadyPaid)
}

func TestAttempt_RefundLifecycle(t *testing.T) {
	a := payment.ReconstructAttempt(payment.AttemptSnapshot{
		ID:            uuid.New(),
		PaymentID:     uuid.New(),
		Method:        payment.MethodPayPal,
		TransactionID: "ORDER-OLD",
		Amount:        decimal.NewFromInt(100),
		Status:        payment.AttemptSuperseded,
	})

	assert.ErrorIs(t, a.MarkRefunded(nil, now), payment.ErrAttemptNotRefundable)

	require.NoError(t, a.BeginRefund(payment.Details{payment.DetailCaptureID: "CAP-OLD"}, now))
	assert.Equal(t, payment.AttemptRefunding, a.Status())
	assert.Equal(t, "CAP-OLD", a.Details()[payment.DetailCaptureID])
	assert.ErrorIs(t, a.BeginRefund(nil, now), payment.ErrAttemptNotRefundable)

	a.AbortRefund(now)
	assert.Equal(t, payment.AttemptSuperseded, a.Status())

	require.NoError(t, a.BeginRefund(nil, now))
	require.NoError(t, a.MarkRefunded(payment.Details{payment.DetailRefundID: "r1"}, now))
	assert.Equal(t, payment.AttemptRefunded, a.Status())
	assert.Equal(t, "r1", a.Details()[payment.DetailRefundID])
}

func TestPayment_BeginRefundAllowsOneInFlight(t *testing.T) {
	p := payment.NewPayment(uuid.New(), payment.MethodOmise, decimal.NewFromInt(100), now)
	_, err := p.BeginRefund(nil, now)
	assert.ErrorIs(t, err, payment.ErrNotRefundable)

	_, err = p.MarkCompleted(nil, now)
	require.NoError(t, err)

	amount, err := p.BeginRefund(nil, now)
	require.NoError(t, err)
	assert.Equal(t, "100.00", amount.StringFixed(2))
	assert.True(t, p.RefundInProgress())

	_, err = p.BeginRefund(nil, now)
	assert.ErrorIs(t, err, payment.ErrRefundInProgress)

	p.AbortRefund(now)
	assert.False(t, p.RefundInProgress())

	_, err = p.BeginRefund(nil, now)
	require.NoError(t, err)
	require.NoError(t, p.MarkRefunded(nil, now))
	assert.False(t, p.RefundInProgress())
	_, err = p.BeginRefund(nil, now)
	assert.ErrorIs(t, err, payment.ErrAlreadyRefunded)
}

func TestPayment_RefundAmount(t *testing.T) {
	p := payment.NewPayment(uuid.New(), payment.MethodPayPal, decimal.NewFromInt(100), now)

	_, err := p.RefundAmount(nil)
	assert.ErrorIs(t, err, payment.ErrNotRefundable)

	_, err = p.MarkCompleted(nil, now)
	require.NoError(t, err)

	full, err := p.RefundAmount(nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(full))

	partial := decimal.RequireFromString("25.5")
	got, err := p.RefundAmount(&partial)
	require.NoError(t, err)
	assert.True(t, partial.Equal(got))

	tooMuch := decimal.NewFromInt(101)
	_, err = p.RefundAmount(&tooMuch)
	assert.ErrorIs(t, err, payment.ErrInvalidRefundAmount)

	require.NoError(t, p.MarkRefunded(payment.Details{"refund_id": "r1"}, now))
	assert.Equal(t, payment.StatusRefunded, p.Status())
	_, err = p.RefundAmount(nil)
	assert.ErrorIs(t, err, payment.ErrAlreadyRefunded)
	_, err = p.MarkCompleted(nil, now)
	assert.ErrorIs(t, err, payment.ErrAlreadyRefunded)
}

func TestGatewayError(t *testing.T) {
	err := payment.NewGatewayError(payment.MethodPayPal, "create_order", 503, "service unavailable")

	assert.True(t, errs.Is(errs.Wrap(err, "create payment"), payment.ErrGateway))
	assert.Equal(t, "paypal create_order failed (status 503): service unavailable", err.Error())
}

func TestParseMethod(t *testing.T) {
	m, err := payment.ParseMethod("PayPal")
	require.NoError(t, err)
	assert.Equal(t, payment.MethodPayPal, m)

	_, err = payment.ParseMethod("stripe")
	assert.ErrorIs(t, err, payment.ErrInvalidMethod)
}
