package notifier

import (
	"context"
	"log/slog"
	"time"

	"tourbook/internal/infra/repository"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"
	"tourbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	retryBase = 5 * time.Second
	retryMax  = time.Hour
)

type JobStore interface {
	ClaimDue(ctx context.Context, now time.Time, limit int32) ([]sqlc.NotificationJobs, error)
	MarkSent(ctx context.Context, jobID uuid.UUID) error
	Reschedule(ctx context.Context, jobID uuid.UUID, status string, lastError string, runAt time.Time) error
}

// txFunc runs fn with a JobStore bound to one transaction
type txFunc func(ctx context.Context, fn func(store JobStore) error) error

type Dispatcher struct {
	runTx       txFunc
	publisher   Publisher
	clock       clock.Clock
	interval    time.Duration
	batch       int32
	maxAttempts int32
}

func NewDispatcher(pool *pgxpool.Pool, q *sqlc.Queries, publisher Publisher, cfg config.AMQPConfig, clk clock.Clock) *Dispatcher {
	runTx := func(ctx context.Context, fn func(store JobStore) error) error {
		return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			return fn(repository.NewNotificationRepository(q, tx))
		})
	}
	return newDispatcher(runTx, publisher, cfg, clk)
}

func newDispatcher(runTx txFunc, publisher Publisher, cfg config.AMQPConfig, clk clock.Clock) *Dispatcher {
	d := &Dispatcher{
		runTx:       runTx,
		publisher:   publisher,
		clock:       clk,
		interval:    cfg.DispatchInterval,
		batch:       cfg.DispatchBatch,
		maxAttempts: cfg.MaxAttempts,
	}
	if d.interval <= 0 {
		d.interval = 5 * time.Second
	}
	if d.batch <= 0 {
		d.batch = 50
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = 10
	}
	return d
}

// Run polls until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "notification dispatch failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DispatchOnce publishes one batch of due jobs and returns how many were sent.
// Delivery is at-least-once: a job published just before a failed commit is sent again.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	sent := 0
	err := d.runTx(ctx, func(store JobStore) error {
		sent = 0
		now := d.clock.Now()
		jobs, err := store.ClaimDue(ctx, now, d.batch)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			pubErr := d.publisher.Publish(ctx, Message{
				ID:         job.ID.String(),
				RoutingKey: job.Topic,
				Kind:       job.Kind,
				Body:       job.Payload,
				CreatedAt:  job.CreatedAt.Time,
			})
			if pubErr == nil {
				if err := store.MarkSent(ctx, job.ID); err != nil {
					return err
				}
				sent++
				continue
			}

			attempts := job.Attempts + 1
			status, runAt := repository.JobStatusQueued, now.Add(backoff(attempts))
			if attempts >= d.maxAttempts {
				status, runAt = repository.JobStatusFailed, now
			}
			slog.WarnContext(ctx, "failed to publish notification",
				slog.String("job_id", job.ID.String()),
				slog.String("kind", job.Kind),
				slog.Int("attempts", int(attempts)),
				slog.String("status", status),
				slog.Any("error", pubErr),
			)
			if err := store.Reschedule(ctx, job.ID, status, pubErr.Error(), runAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "dispatch notification jobs")
	}
	return sent, nil
}

func backoff(attempts int32) time.Duration {
	d := retryBase
	for i := int32(1); i < attempts; i++ {
		d *= 2
		if d >= retryMax {
			return retryMax
		}
	}
	return d
}
