//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/shared"
	"tourbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepStalePending(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	store := newMemStore()

	seed := func(status booking.Status, createdAt time.Time) uuid.UUID {
		b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.Status = status
			b.CreatedAt = createdAt
			b.UpdatedAt = createdAt
		}).BuildDomain()
		store.putBooking(b)
		return b.ID()
	}

	paid := seed(booking.StatusPending, now.Add(-72*time.Hour))
	store.putPayment(builder.NewPaymentBuilder().With(func(p *builder.PaymentBuilder) {
		p.BookingID = paid
		p.Status = payment.StatusCompleted
	}).BuildDomain())

	unpaid := seed(booking.StatusPending, now.Add(-49*time.Hour))
	store.putPayment(builder.NewPaymentBuilder().With(func(p *builder.PaymentBuilder) {
		p.BookingID = unpaid
	}).BuildDomain())

	abandoned := seed(booking.StatusPending, now.Add(-100*time.Hour))
	fresh := seed(booking.StatusPending, now.Add(-47*time.Hour))
	confirmed := seed(booking.StatusConfirmed, now.Add(-100*time.Hour))

	uc := commands.NewSweepCommands(&fakeUoW{store: store}, testSettings, clock.NewMockClock(now))

	res, err := uc.SweepStalePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &commands.SweepResult{Confirmed: 1, Expired: 2}, res)

	assert.Equal(t, booking.StatusConfirmed, store.booking(paid).Status())
	for _, id := range []uuid.UUID{unpaid, abandoned} {
		b := store.booking(id)
		assert.Equal(t, booking.StatusCancelled, b.Status())
		require.NotNil(t, b.CancellationReason())
		assert.Equal(t, commands.ExpiredReason, *b.CancellationReason())
	}
	assert.Equal(t, booking.StatusPending, store.booking(fresh).Status())
	assert.Equal(t, booking.StatusConfirmed, store.booking(confirmed).Status())

	assert.Equal(t, 1, store.countJobs(shared.JobBookingConfirmed))
	assert.Equal(t, 2, store.countJobs(shared.JobBookingCancelled))
	// an unpaid booking keeps its pending payment; nothing was collected so nothing is refunded
	assert.Equal(t, payment.StatusPending, store.paymentFor(unpaid).Status())

	again, err := uc.SweepStalePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &commands.SweepResult{}, again)
}

func TestSweepStalePending_Disabled(t *testing.T) {
	store := newMemStore()
	b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}).BuildDomain()
	store.putBooking(b)

	settings := testSettings
	settings.AutoConfirmAfter = 0
	uc := commands.NewSweepCommands(&fakeUoW{store: store}, settings, clock.NewMockClock(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)))

	res, err := uc.SweepStalePending(context.Background())

	require.NoError(t, err)
	assert.Zero(t, res.Confirmed+res.Expired+res.Failed)
	assert.Equal(t, booking.StatusPending, store.booking(b.ID()).Status())
}

func TestSweepStalePending_RespectsBatchSize(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	store := newMemStore()
	for range 3 {
		store.putBooking(builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.CreatedAt = now.Add(-96 * time.Hour)
		}).BuildDomain())
	}
	settings := testSettings
	settings.SweepBatchSize = 2
	uc := commands.NewSweepCommands(&fakeUoW{store: store}, settings, clock.NewMockClock(now))

	res, err := uc.SweepStalePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Expired)
}

func TestSweepStalePending_PurgesExpiredIdempotencyKeys(t *testing.T) {
	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	store := newMemStore()
	expired := idemKey{key: uuid.New(), userID: uuid.New()}
	live := idemKey{key: uuid.New(), userID: uuid.New()}
	store.keys[expired] = shared.IdempotencyRecord{Key: expired.key, UserID: expired.userID, ExpiresAt: now.Add(-time.Minute)}
	store.keys[live] = shared.IdempotencyRecord{Key: live.key, UserID: live.userID, ExpiresAt: now.Add(time.Hour)}

	settings := testSettings
	settings.AutoConfirmAfter = 0
	uc := commands.NewSweepCommands(&fakeUoW{store: store}, settings, clock.NewMockClock(now))

	res, err := uc.SweepStalePending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.KeysPurged)
	assert.NotContains(t, store.keys, expired)
	assert.Contains(t, store.keys, live)
}
