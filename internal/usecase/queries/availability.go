package queries

import (
	"context"
	"time"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// AvailabilitySource is satisfied by shared.CommandReads both inside and outside a transaction
type AvailabilitySource interface {
	AvailabilityWindows(ctx context.Context, guideID uuid.UUID, day schedule.DayOfWeek) ([]availability.Window, error)
	BookedSlots(ctx context.Context, guideID uuid.UUID, date time.Time) ([]availability.BookedSlot, error)
}

// ResolveAvailability loads the guide's windows and occupied slots for date and runs the resolver.
// The booking transaction calls it again under the guide/date lock.
func ResolveAvailability(ctx context.Context, src AvailabilitySource, guideID uuid.UUID, date time.Time, requested schedule.TimeRange) (availability.Result, error) {
	day := schedule.DayOfWeekOf(date)
	windows, err := src.AvailabilityWindows(ctx, guideID, day)
	if err != nil {
		return availability.Result{}, errs.Wrap(err, "load availability windows")
	}
	booked, err := src.BookedSlots(ctx, guideID, date)
	if err != nil {
		return availability.Result{}, errs.Wrap(err, "load booked slots")
	}
	return availability.Resolve(day, windows, booked, requested), nil
}

type CheckAvailabilityInput struct {
	GuideID   uuid.UUID
	Date      string
	StartTime string
	EndTime   string
}

type AvailabilityQueries interface {
	CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (*AvailabilityView, error)
}

type availabilityQueriesImpl struct {
	src AvailabilitySource
}

func NewAvailabilityQueries(src AvailabilitySource) AvailabilityQueries {
	return &availabilityQueriesImpl{src: src}
}

func (q *availabilityQueriesImpl) CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (*AvailabilityView, error) {
	ve := &errs.ValidationError{}
	date, slot, ok := shared.ParseSlot("date", in.Date, in.StartTime, in.EndTime, ve)
	if !ok {
		return nil, ve
	}

	result, err := ResolveAvailability(ctx, q.src, in.GuideID, date, slot)
	if err != nil {
		return nil, err
	}
	return &AvailabilityView{
		GuideID:              in.GuideID,
		Date:                 schedule.FormatDate(date),
		StartTime:            slot.Start().String(),
		EndTime:              slot.End().String(),
		Available:            result.Available,
		Reason:               string(result.Reason),
		ConflictingBookingID: result.ConflictingBookingID,
	}, nil
}
