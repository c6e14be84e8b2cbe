package readstore

import (
	"context"
	"time"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/infra"
	"tourbook/internal/infra/repository/converter"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/pgconv"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingReadQueries interface {
	GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error)
	ListActiveBookingSlots(ctx context.Context, db sqlc.DBTX, arg sqlc.ListActiveBookingSlotsParams) ([]sqlc.ListActiveBookingSlotsRow, error)
	ListBookings(ctx context.Context, db sqlc.DBTX, arg sqlc.ListBookingsParams) ([]sqlc.Bookings, error)
	GetPaymentByBookingID(ctx context.Context, db sqlc.DBTX, bookingID uuid.UUID) (sqlc.Payments, error)
}

type BookingReadStore struct {
	queries BookingReadQueries
	db      sqlc.DBTX
}

func NewBookingReadStore(queries BookingReadQueries, db sqlc.DBTX) *BookingReadStore {
	return &BookingReadStore{
		queries: queries,
		db:      db,
	}
}

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row, err := s.queries.GetBookingByID(ctx, s.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}

	b, err := converter.BookingFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode booking row", err, infra.KindDBFailure)
	}
	return b, nil
}

// BookedSlots returns the bookings of one guide and day that still occupy time
func (s *BookingReadStore) BookedSlots(ctx context.Context, guideID uuid.UUID, date time.Time) ([]availability.BookedSlot, error) {
	rows, err := s.queries.ListActiveBookingSlots(ctx, s.db, sqlc.ListActiveBookingSlotsParams{
		GuideID:  guideID,
		TourDate: pgconv.DateToPgtype(date),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booked slots", err)
	}

	slots := make([]availability.BookedSlot, 0, len(rows))
	for _, row := range rows {
		r, err := converter.SlotFromPgtime(row.StartTime, row.EndTime)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid booking slot", err, infra.KindDBFailure)
		}
		slots = append(slots, availability.BookedSlot{BookingID: row.ID, Range: r})
	}
	return slots, nil
}

func (s *BookingReadStore) List(ctx context.Context, filter queries.BookingFilter) ([]*booking.Booking, error) {
	params := sqlc.ListBookingsParams{
		TouristID: pgconv.UUIDPtrToPgtype(filter.TouristID),
		GuideID:   pgconv.UUIDPtrToPgtype(filter.GuideID),
		RowLimit:  filter.Limit,
	}
	if filter.Status != nil {
		params.Status = pgconv.OptionalStringToPgtype(filter.Status.String())
	}
	if filter.After != nil {
		params.CursorCreatedAt = pgconv.TimeToPgtype(filter.After.CreatedAt)
		params.CursorID = pgconv.UUIDPtrToPgtype(&filter.After.ID)
	}

	rows, err := s.queries.ListBookings(ctx, s.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}

	result := make([]*booking.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := converter.BookingFromRow(row)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode booking row", err, infra.KindDBFailure)
		}
		result = append(result, b)
	}
	return result, nil
}

func (s *BookingReadStore) PaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	row, err := s.queries.GetPaymentByBookingID(ctx, s.db, bookingID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}

	p, err := converter.PaymentFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode payment row", err, infra.KindDBFailure)
	}
	return p, nil
}
