package payment

import (
	"errors"
	"strings"
)

var (
	ErrInvalidMethod        = errors.New("unsupported payment gateway")
	ErrInvalidStatus        = errors.New("invalid payment status")
	ErrAlreadyPaid          = errors.New("booking is already paid")
	ErrNotRefundable        = errors.New("only completed payments can be refunded")
	ErrInvalidRefundAmount  = errors.New("refund amount must be positive and not exceed the captured amount")
	ErrAlreadyRefunded      = errors.New("payment is already refunded")
	ErrRefundInProgress     = errors.New("a refund for this payment is already in progress")
	ErrCaptureNotSupported  = errors.New("gateway does not support synchronous capture")
	ErrMissingTransactionID = errors.New("payment has no gateway transaction id")
	ErrWebhookNotVerified   = errors.New("webhook could not be verified")
)

type Method string

const (
	// MethodOmise is the card/wallet gateway confirmed asynchronously by webhook
	MethodOmise Method = "omise"
	// MethodPayPal is the order/capture gateway with OAuth bearer tokens
	MethodPayPal Method = "paypal"
)

func (m Method) String() string {
	return string(m)
}

func (m Method) IsValid() bool {
	switch m {
	case MethodOmise, MethodPayPal:
		return true
	default:
		return false
	}
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", ErrInvalidMethod
	}
	return m, nil
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRefunded:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
