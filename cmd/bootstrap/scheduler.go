package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"tourbook/internal/pkg/config"
	"tourbook/internal/usecase/commands"

	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Invoke(
		StartSweeper,
	),
)

// StartSweeper resolves stale pending bookings every BOOKING_SWEEP_INTERVAL
func StartSweeper(lc fx.Lifecycle, cfg config.Config, sweeps commands.SweepCommands, logger *slog.Logger) {
	if !cfg.Booking.SweepEnabled || cfg.Booking.SweepInterval <= 0 {
		logger.Info("pending booking sweeper disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Booking.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						result, err := sweeps.SweepStalePending(ctx)
						if err != nil {
							if ctx.Err() == nil {
								logger.Error("pending booking sweep failed", "error", err)
							}
							continue
						}
						if result.Confirmed+result.Expired+result.Failed > 0 {
							logger.Info("pending bookings swept",
								"confirmed", result.Confirmed,
								"expired", result.Expired,
								"failed", result.Failed,
							)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
