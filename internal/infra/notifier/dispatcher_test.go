//go:build unit

package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourbook/internal/infra/repository"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rescheduled struct {
	Status    string
	LastError string
	RunAt     time.Time
}

type fakeJobStore struct {
	due         []sqlc.NotificationJobs
	claimErr    error
	sent        []uuid.UUID
	rescheduled map[uuid.UUID]rescheduled
}

func (s *fakeJobStore) ClaimDue(_ context.Context, _ time.Time, limit int32) ([]sqlc.NotificationJobs, error) {
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	if int(limit) < len(s.due) {
		return s.due[:limit], nil
	}
	return s.due, nil
}

func (s *fakeJobStore) MarkSent(_ context.Context, id uuid.UUID) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeJobStore) Reschedule(_ context.Context, id uuid.UUID, status, lastError string, runAt time.Time) error {
	s.rescheduled[id] = rescheduled{Status: status, LastError: lastError, RunAt: runAt}
	return nil
}

type fakePublisher struct {
	failFor map[string]error
	sent    []Message
}

func (p *fakePublisher) Publish(_ context.Context, msg Message) error {
	if err := p.failFor[msg.Kind]; err != nil {
		return err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func job(kind, topic string, attempts int32) sqlc.NotificationJobs {
	return sqlc.NotificationJobs{
		ID:        uuid.New(),
		Kind:      kind,
		Topic:     topic,
		Payload:   []byte(`{"booking_id":"b"}`),
		Attempts:  attempts,
		Status:    repository.JobStatusQueued,
		CreatedAt: pgtype.Timestamptz{Time: time.Date(2030, 6, 1, 7, 0, 0, 0, time.UTC), Valid: true},
	}
}

func newTestDispatcher(store *fakeJobStore, pub *fakePublisher, now time.Time) *Dispatcher {
	runTx := func(ctx context.Context, fn func(JobStore) error) error {
		return fn(store)
	}
	return newDispatcher(runTx, pub, config.AMQPConfig{DispatchBatch: 10, MaxAttempts: 3}, clock.NewMockClock(now))
}

func TestDispatchOnce(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	ok := job("booking_created", "booking", 0)
	flaky := job("payment_completed", "payment", 0)
	exhausted := job("refund_failed", "operators", 2)

	store := &fakeJobStore{
		due:         []sqlc.NotificationJobs{ok, flaky, exhausted},
		rescheduled: map[uuid.UUID]rescheduled{},
	}
	broker := errors.New("channel closed")
	pub := &fakePublisher{failFor: map[string]error{"payment_completed": broker, "refund_failed": broker}}

	sent, err := newTestDispatcher(store, pub, now).DispatchOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []uuid.UUID{ok.ID}, store.sent)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, Message{
		ID:         ok.ID.String(),
		RoutingKey: "booking",
		Kind:       "booking_created",
		Body:       ok.Payload,
		CreatedAt:  ok.CreatedAt.Time,
	}, pub.sent[0])

	assert.Equal(t, rescheduled{Status: repository.JobStatusQueued, LastError: "channel closed", RunAt: now.Add(5 * time.Second)}, store.rescheduled[flaky.ID])
	assert.Equal(t, rescheduled{Status: repository.JobStatusFailed, LastError: "channel closed", RunAt: now}, store.rescheduled[exhausted.ID])
}

func TestDispatchOnce_ClaimError(t *testing.T) {
	store := &fakeJobStore{claimErr: errors.New("connection reset")}

	_, err := newTestDispatcher(store, &fakePublisher{}, time.Now()).DispatchOnce(context.Background())

	assert.ErrorContains(t, err, "connection reset")
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 5*time.Second, backoff(1))
	assert.Equal(t, 10*time.Second, backoff(2))
	assert.Equal(t, 40*time.Second, backoff(4))
	assert.Equal(t, time.Hour, backoff(20))
}
