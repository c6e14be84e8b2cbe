package converter

import (
	"fmt"
	"math"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/schedule"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

func BookingToCreateParams(b *booking.Booking) sqlc.CreateBookingParams {
	people := b.NumberOfPeople()
	if people > math.MaxInt32 || people < 0 {
		panic(fmt.Sprintf("number of people out of int32 range: %d", people))
	}

	return sqlc.CreateBookingParams{
		ID:              b.ID(),
		TouristID:       b.TouristID(),
		GuideID:         b.GuideID(),
		ItineraryID:     pgconv.UUIDPtrToPgtype(b.ItineraryID()),
		PoiID:           pgconv.UUIDPtrToPgtype(b.PoiID()),
		TourDate:        pgconv.DateToPgtype(b.TourDate()),
		StartTime:       pgconv.MinutesToPgtime(b.Slot().Start().Minutes()),
		EndTime:         pgconv.MinutesToPgtime(b.Slot().End().Minutes()),
		DurationHours:   pgconv.DecimalToNumeric(b.DurationHours()),
		NumberOfPeople:  int32(people),
		Subtotal:        pgconv.DecimalToNumeric(b.Subtotal()),
		PlatformFee:     pgconv.DecimalToNumeric(b.PlatformFee()),
		GuideCommission: pgconv.DecimalToNumeric(b.GuideCommission()),
		CommissionRate:  pgconv.DecimalPtrToNumeric(b.CommissionRate()),
		TotalAmount:     pgconv.DecimalToNumeric(b.TotalAmount()),
		Status:          b.Status().String(),
		SpecialRequests: pgconv.StringPtrToPgtype(b.SpecialRequests()),
		CreatedAt:       pgconv.TimeToPgtype(b.CreatedAt()),
		UpdatedAt:       pgconv.TimeToPgtype(b.UpdatedAt()),
	}
}

func BookingToStatusParams(b *booking.Booking) sqlc.UpdateBookingStatusParams {
	return sqlc.UpdateBookingStatusParams{
		ID:                 b.ID(),
		Status:             b.Status().String(),
		CancellationReason: pgconv.StringPtrToPgtype(b.CancellationReason()),
		UpdatedAt:          pgconv.TimeToPgtype(b.UpdatedAt()),
	}
}

func BookingFromRow(row sqlc.Bookings) (*booking.Booking, error) {
	tourDate, err := pgconv.DateFromPgtype(row.TourDate)
	if err != nil {
		return nil, err
	}
	slot, err := SlotFromPgtime(row.StartTime, row.EndTime)
	if err != nil {
		return nil, err
	}
	status, err := booking.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}

	snap := booking.Snapshot{
		ID:                 row.ID,
		TouristID:          row.TouristID,
		GuideID:            row.GuideID,
		ItineraryID:        pgconv.UUIDPtrFromPgtype(row.ItineraryID),
		PoiID:              pgconv.UUIDPtrFromPgtype(row.PoiID),
		TourDate:           tourDate,
		Slot:               slot,
		NumberOfPeople:     int(row.NumberOfPeople),
		Status:             status,
		SpecialRequests:    pgconv.StringPtrFromPgtype(row.SpecialRequests),
		CancellationReason: pgconv.StringPtrFromPgtype(row.CancellationReason),
		CreatedAt:          pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:          pgconv.TimeFromPgtype(row.UpdatedAt),
	}

	if snap.DurationHours, err = pgconv.DecimalFromNumeric(row.DurationHours); err != nil {
		return nil, err
	}
	if snap.Subtotal, err = pgconv.DecimalFromNumeric(row.Subtotal); err != nil {
		return nil, err
	}
	if snap.PlatformFee, err = pgconv.DecimalFromNumeric(row.PlatformFee); err != nil {
		return nil, err
	}
	if snap.GuideCommission, err = pgconv.DecimalFromNumeric(row.GuideCommission); err != nil {
		return nil, err
	}
	if snap.TotalAmount, err = pgconv.DecimalFromNumeric(row.TotalAmount); err != nil {
		return nil, err
	}
	if snap.CommissionRate, err = pgconv.DecimalPtrFromNumeric(row.CommissionRate); err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(snap), nil
}

func SlotFromPgtime(start, end pgtype.Time) (schedule.TimeRange, error) {
	s, err := pgconv.MinutesFromPgtime(start)
	if err != nil {
		return schedule.TimeRange{}, err
	}
	e, err := pgconv.MinutesFromPgtime(end)
	if err != nil {
		return schedule.TimeRange{}, err
	}
	return schedule.NewTimeRange(schedule.TimeOfDay(s), schedule.TimeOfDay(e))
}
