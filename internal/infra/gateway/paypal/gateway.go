package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/pkg/money"
	"tourbook/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

const (
	statusCompleted = "COMPLETED"

	eventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	eventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	eventCaptureDeclined  = "PAYMENT.CAPTURE.DECLINED"

	detailOrderStatus = "order_status"
	detailEventID     = "event_id"
)

type Gateway struct {
	api       *client
	webhookID string
}

func NewGateway(cfg config.PayPalConfig, httpClient *http.Client, clk clock.Clock) *Gateway {
	return &Gateway{
		api: &client{
			baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
			http:         httpClient,
			tokens:       NewTokenCache(cfg.TokenRefreshSkew, clk),
		},
		webhookID: cfg.WebhookID,
	}
}

func (g *Gateway) Method() payment.Method {
	return payment.MethodPayPal
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []captureResponse `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount amount `json:"amount"`
}

func (g *Gateway) CreateOrder(ctx context.Context, req shared.GatewayOrderRequest) (*shared.GatewayOrder, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.BookingID.String(),
			"custom_id":    req.PaymentID.String(),
			"description":  req.Description,
			"amount":       amount{CurrencyCode: strings.ToUpper(req.Currency), Value: money.String(req.Amount)},
		}},
		"application_context": map[string]string{
			"return_url":  req.ReturnURL,
			"cancel_url":  req.CancelURL,
			"user_action": "PAY_NOW",
		},
	}

	var out orderResponse
	if err := g.api.do(ctx, request{
		method:    http.MethodPost,
		path:      "/v2/checkout/orders",
		operation: "create_order",
		body:      body,
		headers:   map[string]string{"PayPal-Request-Id": req.PaymentID.String() + "-order"},
	}, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, gatewayError("create_order", 0, "order response without id", "")
	}

	order := &shared.GatewayOrder{
		TransactionID: out.ID,
		Details:       payment.Details{detailOrderStatus: out.Status},
	}
	for _, l := range out.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			order.RedirectURL = l.Href
			break
		}
	}
	return order, nil
}

func (g *Gateway) Capture(ctx context.Context, transactionID string) (*shared.GatewayCapture, error) {
	var out orderResponse
	if err := g.api.do(ctx, request{
		method:    http.MethodPost,
		path:      "/v2/checkout/orders/" + url.PathEscape(transactionID) + "/capture",
		operation: "capture",
		headers:   map[string]string{"Prefer": "return=representation"},
	}, &out); err != nil {
		return nil, err
	}

	result := &shared.GatewayCapture{
		Reference: out.ID,
		Details:   payment.Details{detailOrderStatus: out.Status},
	}
	if len(out.PurchaseUnits) == 0 || len(out.PurchaseUnits[0].Payments.Captures) == 0 {
		return result, nil
	}

	capture := out.PurchaseUnits[0].Payments.Captures[0]
	result.Reference = capture.ID
	result.Details[payment.DetailCaptureID] = capture.ID
	result.Success = out.Status == statusCompleted && capture.Status == statusCompleted
	if v, err := decimal.NewFromString(capture.Amount.Value); err == nil {
		result.CapturedAmount = v
	}
	return result, nil
}

// Refund refunds against the capture recorded at settlement, not the order
func (g *Gateway) Refund(ctx context.Context, req shared.GatewayRefundRequest) (*shared.GatewayRefund, error) {
	captureID, _ := req.Details[payment.DetailCaptureID].(string)
	if captureID == "" {
		return nil, gatewayError("refund", 0, "payment has no capture id", "")
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := g.api.do(ctx, request{
		method:    http.MethodPost,
		path:      "/v2/payments/captures/" + url.PathEscape(captureID) + "/refund",
		operation: "refund",
		body: map[string]any{
			"amount": amount{CurrencyCode: strings.ToUpper(req.Currency), Value: money.String(req.Amount)},
		},
	}, &out); err != nil {
		return nil, err
	}
	return &shared.GatewayRefund{
		Reference: out.ID,
		Details:   payment.Details{"refund_status": out.Status},
	}, nil
}

type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// ParseWebhook asks PayPal to verify the transmission signature before reading the event
func (g *Gateway) ParseWebhook(ctx context.Context, req shared.WebhookRequest) (*shared.WebhookEvent, error) {
	if g.webhookID == "" {
		return nil, errs.Mark(errs.New("paypal webhook id is not configured"), payment.ErrWebhookNotVerified)
	}
	if !json.Valid(req.Body) {
		return nil, errs.Mark(errs.New("malformed paypal webhook body"), payment.ErrWebhookNotVerified)
	}

	var verification struct {
		VerificationStatus string `json:"verification_status"`
	}
	err := g.api.do(ctx, request{
		method:    http.MethodPost,
		path:      "/v1/notifications/verify-webhook-signature",
		operation: "verify_webhook",
		body: map[string]any{
			"auth_algo":         req.Headers.Get("PAYPAL-AUTH-ALGO"),
			"cert_url":          req.Headers.Get("PAYPAL-CERT-URL"),
			"transmission_id":   req.Headers.Get("PAYPAL-TRANSMISSION-ID"),
			"transmission_sig":  req.Headers.Get("PAYPAL-TRANSMISSION-SIG"),
			"transmission_time": req.Headers.Get("PAYPAL-TRANSMISSION-TIME"),
			"webhook_id":        g.webhookID,
			"webhook_event":     json.RawMessage(req.Body),
		},
	}, &verification)
	if err != nil {
		return nil, err
	}
	if verification.VerificationStatus != "SUCCESS" {
		return nil, errs.Mark(errs.Newf("paypal verification status %q", verification.VerificationStatus), payment.ErrWebhookNotVerified)
	}

	var ev webhookEvent
	if err := json.Unmarshal(req.Body, &ev); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "decode paypal webhook"), payment.ErrWebhookNotVerified)
	}

	out := &shared.WebhookEvent{
		EventID:       ev.ID,
		EventType:     ev.EventType,
		TransactionID: ev.Resource.SupplementaryData.RelatedIDs.OrderID,
		Outcome:       shared.WebhookIgnored,
		Details:       payment.Details{detailEventID: ev.ID},
	}
	switch ev.EventType {
	case eventCaptureCompleted:
		out.Outcome = shared.WebhookCompleted
		out.Details[payment.DetailCaptureID] = ev.Resource.ID
	case eventCaptureDenied, eventCaptureDeclined:
		out.Outcome = shared.WebhookFailed
		out.Details[payment.DetailFailureCode] = ev.Resource.Status
	}
	if out.Outcome != shared.WebhookIgnored && out.TransactionID == "" {
		out.Outcome = shared.WebhookIgnored
	}
	return out, nil
}
