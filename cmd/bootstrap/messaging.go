package bootstrap

import (
	"context"
	"log/slog"

	"tourbook/internal/infra/notifier"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Invoke(
		StartDispatcher,
	),
)

// StartDispatcher publishes queued notification jobs. Without AMQP_URL the jobs stay queued.
func StartDispatcher(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool, q *sqlc.Queries, clk clock.Clock, logger *slog.Logger) {
	if cfg.AMQP.URL == "" {
		logger.Warn("AMQP_URL is not set; notification jobs will stay queued")
		return
	}

	var (
		publisher *notifier.AMQPPublisher
		cancel    context.CancelFunc
		done      = make(chan struct{})
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var err error
			publisher, err = notifier.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
			if err != nil {
				return err
			}
			dispatcher := notifier.NewDispatcher(pool, q, publisher, cfg.AMQP, clk)

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				dispatcher.Run(ctx)
			}()
			logger.Info("notification dispatcher started", "exchange", cfg.AMQP.Exchange)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel == nil {
				return nil
			}
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return publisher.Close()
		},
	})
}
