package shared

import (
	"tourbook/internal/infra"
	"tourbook/internal/pkg/errs"
)

var (
	ErrBookingNotFound      = errs.New("booking not found")
	ErrPaymentNotFound      = errs.New("payment not found")
	ErrGuideNotFound        = errs.New("guide not found")
	ErrItineraryNotFound    = errs.New("itinerary not offered by this guide")
	ErrGatewayNotConfigured = errs.New("payment gateway is not configured")
)

// MarkNotFound turns a repository not-found into the given use case sentinel
func MarkNotFound(err error, marker error) error {
	if err != nil && infra.IsNotFound(err) {
		return errs.Mark(err, marker)
	}
	return err
}
