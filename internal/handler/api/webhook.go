package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	resdto "tourbook/internal/handler/dto/response"
	"tourbook/internal/handler/httperr"
	"tourbook/internal/handler/middleware"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	payments commands.PaymentCommands
}

func NewWebhookHandler(payments commands.PaymentCommands) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// @Summary Receive gateway webhook
// @Description Gateway callback. Authenticity is checked with the gateway; redelivered events are acknowledged without effect.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param gateway path string true "Gateway (omise, paypal)"
// @Success 200 {object} resdto.WebhookResponse
// @Failure 400 {object} httperr.Response
// @Failure 413 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /webhooks/{gateway} [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Failed to read request body", nil)
		return
	}
	if len(body) > maxWebhookBody {
		httperr.AbortWithError(c, http.StatusRequestEntityTooLarge, nil, "Request body too large", nil)
		return
	}

	gateway := strings.ToLower(c.Param("gateway"))
	result, err := h.payments.HandleWebhook(c.Request.Context(), gateway, shared.WebhookRequest{
		Headers: c.Request.Header.Clone(),
		Body:    body,
	})
	if err != nil {
		slog.WarnContext(c.Request.Context(), "webhook rejected",
			slog.String("gateway", gateway),
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.Any("error", err),
		)
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.WebhookResponse{Received: true, Processed: result.Processed})
}
