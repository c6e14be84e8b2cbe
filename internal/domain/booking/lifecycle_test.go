//go:build unit

package booking_test

import (
	"testing"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/domain/user"
	"tourbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	touristID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	guideID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")

	tourist  = user.NewActor(touristID, user.RoleTourist)
	guide    = user.NewActor(guideID, user.RoleGuide)
	operator = user.NewActor(uuid.New(), user.RoleOperator)
	stranger = user.NewActor(uuid.New(), user.RoleTourist)
	system   = user.SystemActor()

	policy = booking.TransitionPolicy{CancellationWindow: 24 * time.Hour, Location: time.UTC}
	// tour runs 2025-03-10 10:00-12:00 UTC
	tourDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	before   = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	after    = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func bookingIn(status booking.Status) *booking.Booking {
	return booking.ReconstructBooking(booking.Snapshot{
		ID:             uuid.New(),
		TouristID:      touristID,
		GuideID:        guideID,
		TourDate:       tourDate,
		Slot:           schedule.MustTimeRange("10:00", "12:00"),
		DurationHours:  decimal.NewFromInt(2),
		NumberOfPeople: 2,
		TotalAmount:    decimal.NewFromInt(80),
		Status:         status,
		CreatedAt:      before,
		UpdatedAt:      before,
	})
}

func TestBooking_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    booking.Status
		to      booking.Status
		actor   user.Actor
		now     time.Time
		wantErr error
	}{
		{name: "guide confirms pending", from: booking.StatusPending, to: booking.StatusConfirmed, actor: guide, now: before},
		{name: "system confirms pending", from: booking.StatusPending, to: booking.StatusConfirmed, actor: system, now: before},
		{name: "guide rejects pending", from: booking.StatusPending, to: booking.StatusRejected, actor: guide, now: before},
		{name: "operator rejects pending", from: booking.StatusPending, to: booking.StatusRejected, actor: operator, now: before},
		{name: "tourist cancels pending", from: booking.StatusPending, to: booking.StatusCancelled, actor: tourist, now: before},
		{name: "guide cancels confirmed", from: booking.StatusConfirmed, to: booking.StatusCancelled, actor: guide, now: before},
		{name: "guide completes after the tour", from: booking.StatusConfirmed, to: booking.StatusCompleted, actor: guide, now: after},
		{name: "completed cannot go back to confirmed", from: booking.StatusCompleted, to: booking.StatusConfirmed, actor: guide, now: after, wantErr: booking.ErrIllegalTransition},
		{name: "cancelled is terminal", from: booking.StatusCancelled, to: booking.StatusConfirmed, actor: system, now: before, wantErr: booking.ErrIllegalTransition},
		{name: "rejected cannot be cancelled", from: booking.StatusRejected, to: booking.StatusCancelled, actor: guide, now: before, wantErr: booking.ErrIllegalTransition},
		{name: "pending cannot complete", from: booking.StatusPending, to: booking.StatusCompleted, actor: guide, now: after, wantErr: booking.ErrIllegalTransition},
		{name: "nothing goes back to pending", from: booking.StatusConfirmed, to: booking.StatusPending, actor: operator, now: before, wantErr: booking.ErrIllegalTransition},
		{name: "tourist cannot confirm", from: booking.StatusPending, to: booking.StatusConfirmed, actor: tourist, now: before, wantErr: booking.ErrForbidden},
		{name: "other guide cannot reject", from: booking.StatusPending, to: booking.StatusRejected, actor: user.NewActor(uuid.New(), user.RoleGuide), now: before, wantErr: booking.ErrForbidden},
		{name: "stranger cannot cancel", from: booking.StatusPending, to: booking.StatusCancelled, actor: stranger, now: before, wantErr: booking.ErrForbidden},
		{name: "complete before tour end", from: booking.StatusConfirmed, to: booking.StatusCompleted, actor: guide, now: after.Add(-time.Minute), wantErr: booking.ErrTourNotFinished},
		{name: "tourist cancels confirmed inside window", from: booking.StatusConfirmed, to: booking.StatusCancelled, actor: tourist, now: time.Date(2025, 3, 9, 11, 0, 0, 0, time.UTC), wantErr: booking.ErrCancellationWindowClosed},
		{name: "tourist cancels confirmed before window", from: booking.StatusConfirmed, to: booking.StatusCancelled, actor: tourist, now: time.Date(2025, 3, 9, 9, 59, 0, 0, time.UTC)},
		{name: "guide may cancel inside window", from: booking.StatusConfirmed, to: booking.StatusCancelled, actor: guide, now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bookingIn(tt.from)

			changed, err := b.Transition(booking.TransitionRequest{Target: tt.to, Actor: tt.actor, Now: tt.now}, policy)

			if tt.wantErr != nil {
				assert.True(t, errs.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, changed)
				assert.Equal(t, tt.from, b.Status(), "state must not change on failure")
				assert.Equal(t, before, b.UpdatedAt())
				return
			}
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.to, b.Status())
			assert.Equal(t, tt.now, b.UpdatedAt())
		})
	}
}

func TestBooking_TransitionIsIdempotent(t *testing.T) {
	b := bookingIn(booking.StatusPending)
	req := booking.TransitionRequest{Target: booking.StatusConfirmed, Actor: system, Now: before}

	changed, err := b.Transition(req, policy)
	require.NoError(t, err)
	assert.True(t, changed)

	req.Now = before.Add(time.Hour)
	changed, err = b.Transition(req, policy)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, booking.StatusConfirmed, b.Status())
	assert.Equal(t, before, b.UpdatedAt())
}

func TestBooking_RepeatStillRequiresPermission(t *testing.T) {
	b := bookingIn(booking.StatusConfirmed)

	_, err := b.Transition(booking.TransitionRequest{Target: booking.StatusConfirmed, Actor: tourist, Now: before}, policy)

	assert.ErrorIs(t, err, booking.ErrForbidden)
}

func TestBooking_CancellationReason(t *testing.T) {
	b := bookingIn(booking.StatusPending)

	_, err := b.Transition(booking.TransitionRequest{Target: booking.StatusCancelled, Actor: tourist, Reason: "  change of plans ", Now: before}, policy)

	require.NoError(t, err)
	require.NotNil(t, b.CancellationReason())
	assert.Equal(t, "change of plans", *b.CancellationReason())
}

func TestNewBooking_RoundsAtCreation(t *testing.T) {
	quote, err := pricing.NewCalculator(pricing.DefaultPolicy()).ComputePrice(pricing.Draft{
		Mode:          pricing.ModeDirectHourly,
		HourlyRate:    decimal.RequireFromString("33.33"),
		DurationHours: decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)

	b := booking.NewBooking(booking.NewParams{
		TouristID:      touristID,
		GuideID:        guideID,
		TourDate:       tourDate,
		Slot:           schedule.MustTimeRange("10:00", "11:30"),
		DurationHours:  decimal.RequireFromString("1.5"),
		NumberOfPeople: 1,
	}, quote, before)

	assert.Equal(t, booking.StatusPending, b.Status())
	assert.Equal(t, "50.00", b.TotalAmount().StringFixed(2))
	assert.Equal(t, pricing.ModeDirectHourly, b.PricingMode())
	assert.Nil(t, b.CommissionRate())
	assert.True(t, b.CanView(tourist))
	assert.False(t, b.CanView(stranger))
}

func TestStatus(t *testing.T) {
	assert.True(t, booking.StatusCompleted.IsTerminal())
	assert.False(t, booking.StatusConfirmed.IsTerminal())
	assert.True(t, booking.StatusCompleted.OccupiesSlot())
	assert.False(t, booking.StatusRejected.OccupiesSlot())

	_, err := booking.ParseStatus("archived")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)
}
