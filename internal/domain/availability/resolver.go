package availability

import (
	"errors"
	"sort"

	"tourbook/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrOutsideAvailability = errors.New("requested time is outside the guide's availability")
	ErrTimeConflict        = errors.New("requested time conflicts with an existing booking")
)

type Reason string

const (
	ReasonNone                Reason = ""
	ReasonOutsideAvailability Reason = "outside_availability"
	ReasonTimeConflict        Reason = "time_conflict"
)

// ConflictError carries the booking that already occupies the slot
type ConflictError struct {
	BookingID uuid.UUID
}

func (e *ConflictError) Error() string {
	return ErrTimeConflict.Error() + ": " + e.BookingID.String()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrTimeConflict
}

type Window struct {
	DayOfWeek   schedule.DayOfWeek
	Range       schedule.TimeRange
	IsAvailable bool
}

// BookedSlot is a booking that still occupies guide time (not cancelled or rejected)
type BookedSlot struct {
	BookingID uuid.UUID
	Range     schedule.TimeRange
}

type Result struct {
	Available            bool
	Reason               Reason
	ConflictingBookingID *uuid.UUID
}

func (r Result) Err() error {
	switch r.Reason {
	case ReasonOutsideAvailability:
		return ErrOutsideAvailability
	case ReasonTimeConflict:
		if r.ConflictingBookingID != nil {
			return &ConflictError{BookingID: *r.ConflictingBookingID}
		}
		return ErrTimeConflict
	default:
		return nil
	}
}

// Resolve decides whether requested fits inside one available window for day
// and overlaps none of booked. Containment is checked first so that a slot outside
// the guide's hours is reported as such even when it would also conflict.
func Resolve(day schedule.DayOfWeek, windows []Window, booked []BookedSlot, requested schedule.TimeRange) Result {
	contained := false
	for _, w := range windows {
		if !w.IsAvailable || w.DayOfWeek != day {
			continue
		}
		if w.Range.Contains(requested) {
			contained = true
			break
		}
	}
	if !contained {
		return Result{Reason: ReasonOutsideAvailability}
	}

	conflicts := make([]BookedSlot, 0, 1)
	for _, b := range booked {
		if b.Range.Overlaps(requested) {
			conflicts = append(conflicts, b)
		}
	}
	if len(conflicts) == 0 {
		return Result{Available: true}
	}

	// deterministic pick: earliest start, then id
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Range.Start() != conflicts[j].Range.Start() {
			return conflicts[i].Range.Start() < conflicts[j].Range.Start()
		}
		return conflicts[i].BookingID.String() < conflicts[j].BookingID.String()
	})
	id := conflicts[0].BookingID
	return Result{Reason: ReasonTimeConflict, ConflictingBookingID: &id}
}
