package commands

import (
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/shared"
)

// Settings are the booking and payment knobs the commands enforce
type Settings struct {
	MaxDurationHours   int
	MinPeople          int
	MaxPeople          int
	CancellationWindow time.Duration
	// AutoConfirmAfter is how long a booking may stay pending before the sweeper resolves it
	AutoConfirmAfter time.Duration
	SweepBatchSize   int32
	Currency         string
	ReturnURL        string
	CancelURL        string
	Location         *time.Location
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Settings) transitionPolicy() booking.TransitionPolicy {
	return booking.TransitionPolicy{
		CancellationWindow: s.CancellationWindow,
		Location:           s.location(),
	}
}

// Gateways indexes the configured payment gateways by method
type Gateways map[payment.Method]shared.PaymentGateway

func NewGateways(gws ...shared.PaymentGateway) Gateways {
	m := make(Gateways, len(gws))
	for _, gw := range gws {
		if gw != nil {
			m[gw.Method()] = gw
		}
	}
	return m
}

// Lookup resolves the path segment naming a gateway
func (g Gateways) Lookup(name string) (shared.PaymentGateway, error) {
	method, err := payment.ParseMethod(name)
	if err != nil {
		return nil, errs.NewValidationError("gateway", "unsupported payment gateway")
	}
	gw, ok := g[method]
	if !ok {
		return nil, shared.ErrGatewayNotConfigured
	}
	return gw, nil
}
