package repository

import (
	"context"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/infra"
	"tourbook/internal/infra/repository/converter"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type BookingWriteQueries interface {
	LockGuideDate(ctx context.Context, db sqlc.DBTX, arg sqlc.LockGuideDateParams) error
	CreateBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateBookingParams) error
	UpdateBookingStatus(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateBookingStatusParams) error
	GetBookingForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error)
	ListStalePendingBookingIDs(ctx context.Context, db sqlc.DBTX, arg sqlc.ListStalePendingBookingIDsParams) ([]uuid.UUID, error)
}

type BookingRepository struct {
	queries BookingWriteQueries
	db      sqlc.DBTX
}

func NewBookingRepository(queries BookingWriteQueries, db sqlc.DBTX) *BookingRepository {
	return &BookingRepository{
		queries: queries,
		db:      db,
	}
}

func (r *BookingRepository) LockGuideDate(ctx context.Context, guideID uuid.UUID, date time.Time) error {
	err := r.queries.LockGuideDate(ctx, r.db, sqlc.LockGuideDateParams{
		GuideID:  guideID,
		TourDate: pgconv.DateToPgtype(date),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to lock guide calendar day", err)
	}
	return nil
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	if err := r.queries.CreateBooking(ctx, r.db, converter.BookingToCreateParams(b)); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *booking.Booking) error {
	if err := r.queries.UpdateBookingStatus(ctx, r.db, converter.BookingToStatusParams(b)); err != nil {
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	return nil
}

func (r *BookingRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row, err := r.queries.GetBookingForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock booking", err)
	}

	b, err := converter.BookingFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode booking row", err, infra.KindDBFailure)
	}
	return b, nil
}

func (r *BookingRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int32) ([]uuid.UUID, error) {
	ids, err := r.queries.ListStalePendingBookingIDs(ctx, r.db, sqlc.ListStalePendingBookingIDsParams{
		CreatedAt: pgconv.TimeToPgtype(createdBefore),
		Limit:     limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list stale pending bookings", err)
	}
	return ids, nil
}
