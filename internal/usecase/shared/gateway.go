package shared

import (
	"context"
	"net/http"

	"tourbook/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GatewayOrderRequest struct {
	PaymentID   uuid.UUID
	BookingID   uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Description string
	CardToken   string
	SourceType  string
	ReturnURL   string
	CancelURL   string
}

type GatewayOrder struct {
	TransactionID string
	RedirectURL   string
	// Settled is set when the gateway collected the money while creating the order
	Settled bool
	Details payment.Details
}

type GatewayCapture struct {
	Success        bool
	CapturedAmount decimal.Decimal
	Reference      string
	Details        payment.Details
}

type GatewayRefundRequest struct {
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	// Details are the stored payment details, e.g. the capture id some gateways refund against
	Details payment.Details
}

type GatewayRefund struct {
	Reference string
	Details   payment.Details
}

type WebhookOutcome string

const (
	WebhookCompleted WebhookOutcome = "completed"
	WebhookFailed    WebhookOutcome = "failed"
	WebhookIgnored   WebhookOutcome = "ignored"
)

type WebhookRequest struct {
	Headers http.Header
	Body    []byte
}

// WebhookEvent is a verified gateway callback reduced to what settlement needs
type WebhookEvent struct {
	EventID       string
	EventType     string
	TransactionID string
	Outcome       WebhookOutcome
	Details       payment.Details
}

// PaymentGateway hides one provider. Implementations return *payment.GatewayError for
// provider failures and never retry on their own.
type PaymentGateway interface {
	Method() payment.Method
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	Capture(ctx context.Context, transactionID string) (*GatewayCapture, error)
	Refund(ctx context.Context, req GatewayRefundRequest) (*GatewayRefund, error)
	ParseWebhook(ctx context.Context, req WebhookRequest) (*WebhookEvent, error)
}
