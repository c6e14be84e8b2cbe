package omise

import (
	"context"
	"encoding/json"
	"strings"

	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/pkg/money"
	"tourbook/internal/usecase/shared"

	omisego "github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

const (
	chargeSuccessful = "successful"
	chargeFailed     = "failed"
	chargeExpired    = "expired"

	eventChargeComplete = "charge.complete"

	detailChargeStatus = "charge_status"
	detailSourceType   = "source_type"
	detailEventID      = "event_id"
)

// Gateway charges cards and wallet sources through Omise. Charges settle either
// synchronously or through a charge.complete webhook; there is no separate capture step.
type Gateway struct {
	api API
}

func NewGateway(api API) *Gateway {
	return &Gateway{api: api}
}

func (g *Gateway) Method() payment.Method {
	return payment.MethodOmise
}

func (g *Gateway) CreateOrder(ctx context.Context, req shared.GatewayOrderRequest) (*shared.GatewayOrder, error) {
	if req.CardToken == "" && req.SourceType == "" {
		return nil, errs.NewValidationError("card_token", "card_token or source_type is required")
	}

	op := &operations.CreateCharge{
		Amount:      money.MinorUnits(req.Amount),
		Currency:    strings.ToLower(req.Currency),
		Description: req.Description,
		ReturnURI:   req.ReturnURL,
		Metadata: map[string]interface{}{
			"booking_id": req.BookingID.String(),
			"payment_id": req.PaymentID.String(),
		},
	}
	details := payment.Details{}

	if req.CardToken != "" {
		op.Card = req.CardToken
	} else {
		src, err := g.api.CreateSource(ctx, &operations.CreateSource{
			Type:     req.SourceType,
			Amount:   op.Amount,
			Currency: op.Currency,
		})
		if err != nil {
			return nil, toGatewayError("create_source", err)
		}
		op.Source = src.ID
		details[detailSourceType] = req.SourceType
	}

	ch, err := g.api.CreateCharge(ctx, op)
	if err != nil {
		return nil, toGatewayError("create_charge", err)
	}

	status := string(ch.Status)
	details[detailChargeStatus] = status
	if status == chargeFailed {
		gwErr := payment.NewGatewayError(payment.MethodOmise, "create_charge", 0, derefOr(ch.FailureMessage, "charge failed"))
		gwErr.Code = derefOr(ch.FailureCode, "")
		return nil, gwErr
	}

	return &shared.GatewayOrder{
		TransactionID: ch.ID,
		RedirectURL:   ch.AuthorizeURI,
		Settled:       status == chargeSuccessful,
		Details:       details,
	}, nil
}

func (g *Gateway) Capture(_ context.Context, _ string) (*shared.GatewayCapture, error) {
	return nil, payment.ErrCaptureNotSupported
}

func (g *Gateway) Refund(ctx context.Context, req shared.GatewayRefundRequest) (*shared.GatewayRefund, error) {
	rf, err := g.api.CreateRefund(ctx, &operations.CreateRefund{
		ChargeID: req.TransactionID,
		Amount:   money.MinorUnits(req.Amount),
	})
	if err != nil {
		return nil, toGatewayError("refund", err)
	}
	return &shared.GatewayRefund{Reference: rf.ID}, nil
}

type incomingEvent struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// ParseWebhook trusts nothing in the request body except the event id: the event is
// fetched again from Omise with the secret key before it is acted on.
func (g *Gateway) ParseWebhook(ctx context.Context, req shared.WebhookRequest) (*shared.WebhookEvent, error) {
	var inc incomingEvent
	if err := json.Unmarshal(req.Body, &inc); err != nil || inc.ID == "" {
		return nil, errs.Mark(errs.New("malformed omise webhook body"), payment.ErrWebhookNotVerified)
	}

	ev, err := g.api.RetrieveEvent(ctx, inc.ID)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "retrieve omise event %s", inc.ID), payment.ErrWebhookNotVerified)
	}

	out := &shared.WebhookEvent{
		EventID:   ev.ID,
		EventType: ev.Key,
		Outcome:   shared.WebhookIgnored,
		Details:   payment.Details{detailEventID: ev.ID},
	}
	if ev.Key != eventChargeComplete {
		return out, nil
	}

	// Data arrives as a generic map; round-trip it into a Charge
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, errs.Wrap(err, "encode omise event data")
	}
	var ch omisego.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, errs.Wrap(err, "decode omise charge")
	}

	out.TransactionID = ch.ID
	status := string(ch.Status)
	out.Details[detailChargeStatus] = status
	switch status {
	case chargeSuccessful:
		out.Outcome = shared.WebhookCompleted
	case chargeFailed, chargeExpired:
		out.Outcome = shared.WebhookFailed
		if ch.FailureCode != nil {
			out.Details[payment.DetailFailureCode] = *ch.FailureCode
		}
		if ch.FailureMessage != nil {
			out.Details[payment.DetailFailureMessage] = *ch.FailureMessage
		}
	}
	return out, nil
}

func toGatewayError(operation string, err error) error {
	var apiErr *omisego.Error
	if errs.As(err, &apiErr) {
		gwErr := payment.NewGatewayError(payment.MethodOmise, operation, apiErr.StatusCode, apiErr.Message)
		gwErr.Code = apiErr.Code
		return gwErr
	}
	return payment.NewGatewayError(payment.MethodOmise, operation, 0, err.Error())
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
