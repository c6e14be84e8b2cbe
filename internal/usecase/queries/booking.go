package queries

//go:generate mockgen -destination=../../../tests/mock/queries/mock_queries.go -package=queriesmock tourbook/internal/usecase/queries AvailabilityQueries,BookingQueries

import (
	"context"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/user"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCursor = errs.New("invalid cursor")
	ErrBookingAccess = errs.New("booking access denied")
)

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*booking.Booking, error)
	PaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
}

type ListBookingsInput struct {
	GuideID *uuid.UUID
	Status  string
	After   string
	Limit   int
}

type BookingQueries interface {
	GetBooking(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error)
	ListBookings(ctx context.Context, actor user.Actor, in ListBookingsInput) (*BookingPage, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetBooking(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error) {
	b, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, shared.ErrBookingNotFound
		}
		return nil, err
	}
	// Strangers get the same answer as for a missing id
	if !b.CanView(actor) {
		return nil, shared.ErrBookingNotFound
	}

	p, err := q.store.PaymentByBookingID(ctx, id)
	if err != nil {
		if !infra.IsNotFound(err) {
			return nil, err
		}
		p = nil
	}
	return NewBookingView(b, p), nil
}

// ListBookings scopes tourists and guides to their own bookings; operators see everything
func (q *bookingQueriesImpl) ListBookings(ctx context.Context, actor user.Actor, in ListBookingsInput) (*BookingPage, error) {
	limit := ValidateLimit(in.Limit)
	filter := BookingFilter{Limit: int32(limit + 1)}

	switch actor.Role {
	case user.RoleTourist:
		filter.TouristID = &actor.ID
		filter.GuideID = in.GuideID
	case user.RoleGuide:
		if in.GuideID != nil && *in.GuideID != actor.ID {
			return nil, ErrBookingAccess
		}
		filter.GuideID = &actor.ID
	case user.RoleOperator, user.RoleSystem:
		filter.GuideID = in.GuideID
	default:
		return nil, ErrBookingAccess
	}

	if in.Status != "" {
		status, err := booking.ParseStatus(in.Status)
		if err != nil {
			return nil, errs.NewValidationError("status", "unknown booking status")
		}
		filter.Status = &status
	}
	if in.After != "" {
		cursor, err := DecodeAfterCursor(in.After)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidCursor)
		}
		filter.After = cursor
	}

	rows, err := q.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &BookingPage{Items: make([]*BookingView, 0, min(len(rows), limit))}
	if len(rows) > limit {
		last := rows[limit-1]
		next := EncodeAfterCursor(last.CreatedAt(), last.ID())
		page.NextCursor = &next
		rows = rows[:limit]
	}
	for _, b := range rows {
		page.Items = append(page.Items, NewBookingView(b, nil))
	}
	return page, nil
}
