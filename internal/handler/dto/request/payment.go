package request

import (
	"strings"

	"tourbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	BookingID  uuid.UUID `json:"booking_id" binding:"required"`
	CardToken  string    `json:"card_token,omitempty"`
	SourceType string    `json:"source_type,omitempty"`
	ReturnURL  string    `json:"return_url,omitempty"`
}

func (r CreatePaymentRequest) ToInput(gateway string) commands.CreatePaymentInput {
	return commands.CreatePaymentInput{
		Gateway:    gateway,
		BookingID:  r.BookingID,
		CardToken:  strings.TrimSpace(r.CardToken),
		SourceType: strings.TrimSpace(r.SourceType),
		ReturnURL:  strings.TrimSpace(r.ReturnURL),
	}
}

type CapturePaymentRequest struct {
	ExternalOrderID string `json:"external_order_id" binding:"required"`
}

type RefundPaymentRequest struct {
	// Amount defaults to the full payment amount
	Amount *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
}
