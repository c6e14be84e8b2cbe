package api

import (
	"net/http"
	"strings"

	reqdto "tourbook/internal/handler/dto/request"
	resdto "tourbook/internal/handler/dto/response"
	"tourbook/internal/handler/httperr"
	"tourbook/internal/handler/middleware"
	"tourbook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentKeyParam names the /payments/:key segment. It holds a gateway name on
// create and capture and a payment id on refund; gin needs one wildcard name per segment.
const PaymentKeyParam = "key"

type PaymentHandler struct {
	payments commands.PaymentCommands
}

func NewPaymentHandler(payments commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// @Summary Create payment
// @Description Start paying a pending booking through a gateway. Returns a redirect URL when the payer must approve.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Gateway (omise, paypal)"
// @Param Idempotency-Key header string false "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreatePaymentRequest true "Payment request"
// @Success 200 {object} resdto.CreatePaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /payments/{key}/create [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var req reqdto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	key, ok := idempotencyKeyHeader(c)
	if !ok {
		return
	}
	in := req.ToInput(gatewayParam(c))
	in.IdempotencyKey = key

	result, err := h.payments.CreatePayment(c.Request.Context(), actor, in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCreatePaymentResult(result))
}

// @Summary Capture payment
// @Description Capture an approved gateway order. Capturing a completed payment again returns its current state.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Gateway (paypal)"
// @Param request body reqdto.CapturePaymentRequest true "Capture request"
// @Success 200 {object} resdto.CapturePaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payments/{key}/capture [post]
func (h *PaymentHandler) Capture(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var req reqdto.CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.payments.CapturePayment(c.Request.Context(), actor, gatewayParam(c), strings.TrimSpace(req.ExternalOrderID))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCaptureResult(result))
}

// @Summary Refund payment
// @Description Refund a completed payment in full or in part. Operators only.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Payment ID"
// @Param request body reqdto.RefundPaymentRequest false "Refund amount"
// @Success 200 {object} resdto.RefundPaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payments/{key}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, err := uuid.Parse(c.Param(PaymentKeyParam))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment ID format", nil)
		return
	}
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var req reqdto.RefundPaymentRequest
	if c.Request.ContentLength != 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
			return
		}
	}

	result, err := h.payments.RefundPayment(c.Request.Context(), actor, id, req.Amount)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundResult(result))
}

func gatewayParam(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Param(PaymentKeyParam)))
}
