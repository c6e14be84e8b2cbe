package response

import (
	"tourbook/internal/pkg/money"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CreatePaymentResponse struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	ExternalOrderID string    `json:"external_order_id"`
	RedirectURL     *string   `json:"redirect_url,omitempty"`
	Status          string    `json:"status"`
}

// FromCreatePaymentResult copies by field name; Status converts from payment.Status
func FromCreatePaymentResult(r *commands.CreatePaymentResult) *CreatePaymentResponse {
	resp := &CreatePaymentResponse{}
	_ = copier.Copy(resp, r)
	return resp
}

type CapturePaymentResponse struct {
	Success          bool                 `json:"success"`
	CapturedAmount   string               `json:"captured_amount"`
	GatewayReference string               `json:"gateway_reference,omitempty"`
	Payment          *queries.PaymentView `json:"payment,omitempty"`
}

func FromCaptureResult(r *commands.CaptureResult) *CapturePaymentResponse {
	return &CapturePaymentResponse{
		Success:          r.Success,
		CapturedAmount:   money.String(r.CapturedAmount),
		GatewayReference: r.GatewayReference,
		Payment:          r.Payment,
	}
}

type RefundPaymentResponse struct {
	Success         bool                 `json:"success"`
	RefundReference string               `json:"refund_reference,omitempty"`
	Payment         *queries.PaymentView `json:"payment,omitempty"`
}

func FromRefundResult(r *commands.RefundResult) *RefundPaymentResponse {
	resp := &RefundPaymentResponse{}
	_ = copier.Copy(resp, r)
	return resp
}

type WebhookResponse struct {
	Received  bool `json:"received"`
	Processed bool `json:"processed"`
}
