package bootstrap

import (
	"log/slog"
	"net/http"

	"tourbook/internal/infra/gateway/omise"
	"tourbook/internal/infra/gateway/paypal"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/shared"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewGateways,
	),
)

// NewGateways registers every gateway with credentials; the others answer 503
func NewGateways(cfg config.Config, clk clock.Clock, logger *slog.Logger) (commands.Gateways, error) {
	var gws []shared.PaymentGateway

	if cfg.Omise.Enabled() {
		api, err := omise.NewClient(cfg.Omise.PublicKey, cfg.Omise.SecretKey)
		if err != nil {
			return nil, err
		}
		gws = append(gws, omise.NewGateway(api))
	} else {
		logger.Warn("Omise is not configured", "gateway", "omise")
	}

	if cfg.PayPal.Enabled() {
		httpClient := &http.Client{Timeout: cfg.Payment.GatewayTimeout}
		gws = append(gws, paypal.NewGateway(cfg.PayPal, httpClient, clk))
	} else {
		logger.Warn("PayPal is not configured", "gateway", "paypal")
	}

	return commands.NewGateways(gws...), nil
}
