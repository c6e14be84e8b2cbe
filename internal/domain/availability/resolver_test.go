//go:build unit

package availability_test

import (
	"math/rand"
	"testing"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayWindow(start, end string) availability.Window {
	return availability.Window{
		DayOfWeek:   schedule.Monday,
		Range:       schedule.MustTimeRange(start, end),
		IsAvailable: true,
	}
}

func TestResolve(t *testing.T) {
	existingID := uuid.New()
	windows := []availability.Window{mondayWindow("09:00", "17:00")}
	booked := []availability.BookedSlot{{BookingID: existingID, Range: schedule.MustTimeRange("10:00", "12:00")}}

	tests := []struct {
		name      string
		day       schedule.DayOfWeek
		windows   []availability.Window
		requested schedule.TimeRange
		want      availability.Reason
		conflict  bool
	}{
		{name: "overlapping the end of an existing booking", day: schedule.Monday, windows: windows, requested: schedule.MustTimeRange("11:00", "13:00"), want: availability.ReasonTimeConflict, conflict: true},
		{name: "adjacent slot is free", day: schedule.Monday, windows: windows, requested: schedule.MustTimeRange("12:00", "14:00"), want: availability.ReasonNone},
		{name: "ends exactly when existing starts", day: schedule.Monday, windows: windows, requested: schedule.MustTimeRange("09:00", "10:00"), want: availability.ReasonNone},
		{name: "extends past window end", day: schedule.Monday, windows: windows, requested: schedule.MustTimeRange("16:00", "18:00"), want: availability.ReasonOutsideAvailability},
		{name: "window on another weekday", day: schedule.Tuesday, windows: windows, requested: schedule.MustTimeRange("13:00", "14:00"), want: availability.ReasonOutsideAvailability},
		{name: "unavailable window ignored", day: schedule.Monday, windows: []availability.Window{{DayOfWeek: schedule.Monday, Range: schedule.MustTimeRange("09:00", "17:00")}}, requested: schedule.MustTimeRange("13:00", "14:00"), want: availability.ReasonOutsideAvailability},
		{name: "outside wins over conflict", day: schedule.Monday, windows: windows, requested: schedule.MustTimeRange("08:00", "11:00"), want: availability.ReasonOutsideAvailability},
		{name: "no windows at all", day: schedule.Monday, requested: schedule.MustTimeRange("13:00", "14:00"), want: availability.ReasonOutsideAvailability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := availability.Resolve(tt.day, tt.windows, booked, tt.requested)

			assert.Equal(t, tt.want, got.Reason)
			assert.Equal(t, tt.want == availability.ReasonNone, got.Available)
			if tt.conflict {
				require.NotNil(t, got.ConflictingBookingID)
				assert.Equal(t, existingID, *got.ConflictingBookingID)
			} else {
				assert.Nil(t, got.ConflictingBookingID)
			}
		})
	}
}

func TestResult_Err(t *testing.T) {
	id := uuid.New()
	conflict := availability.Result{Reason: availability.ReasonTimeConflict, ConflictingBookingID: &id}

	err := conflict.Err()
	assert.True(t, errs.Is(err, availability.ErrTimeConflict))
	var ce *availability.ConflictError
	require.True(t, errs.As(err, &ce))
	assert.Equal(t, id, ce.BookingID)

	assert.True(t, errs.Is(availability.Result{Reason: availability.ReasonOutsideAvailability}.Err(), availability.ErrOutsideAvailability))
	assert.NoError(t, availability.Result{Available: true}.Err())
}

func TestResolve_MultipleConflictsPicksEarliest(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	booked := []availability.BookedSlot{
		{BookingID: second, Range: schedule.MustTimeRange("13:00", "14:00")},
		{BookingID: first, Range: schedule.MustTimeRange("10:00", "11:00")},
	}

	got := availability.Resolve(schedule.Monday, []availability.Window{mondayWindow("09:00", "17:00")}, booked, schedule.MustTimeRange("10:30", "13:30"))

	require.NotNil(t, got.ConflictingBookingID)
	assert.Equal(t, first, *got.ConflictingBookingID)
}

// The resolver accepts a slot iff it is inside the window and the brute-force
// minute-by-minute occupancy check finds no shared minute.
func TestResolve_AgreesWithMinuteOccupancy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	window := mondayWindow("08:00", "20:00")
	randomRange := func() schedule.TimeRange {
		start := 6*60 + rng.Intn(15*60)
		length := 15 + rng.Intn(4*60)
		end := start + length
		if end > schedule.MinutesPerDay {
			end = schedule.MinutesPerDay
		}
		r, err := schedule.NewTimeRange(schedule.TimeOfDay(start), schedule.TimeOfDay(end))
		require.NoError(t, err)
		return r
	}

	for i := 0; i < 500; i++ {
		booked := make([]availability.BookedSlot, rng.Intn(4))
		var occupied [schedule.MinutesPerDay]bool
		for j := range booked {
			booked[j] = availability.BookedSlot{BookingID: uuid.New(), Range: randomRange()}
			for m := booked[j].Range.Start(); m < booked[j].Range.End(); m++ {
				occupied[m] = true
			}
		}
		requested := randomRange()

		got := availability.Resolve(schedule.Monday, []availability.Window{window}, booked, requested)

		inside := window.Range.Contains(requested)
		free := true
		for m := requested.Start(); m < requested.End(); m++ {
			if occupied[m] {
				free = false
				break
			}
		}
		switch {
		case !inside:
			assert.Equal(t, availability.ReasonOutsideAvailability, got.Reason, "iteration %d %s", i, requested)
		case !free:
			assert.Equal(t, availability.ReasonTimeConflict, got.Reason, "iteration %d %s", i, requested)
		default:
			assert.True(t, got.Available, "iteration %d %s", i, requested)
		}
	}
}
