package commands

//go:generate mockgen -destination=../../../tests/mock/commands/mock_commands.go -package=commandsmock tourbook/internal/usecase/commands BookingCommands,LifecycleCommands,PaymentCommands

import (
	"context"
	"log/slog"
	"strings"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/domain/user"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/queries"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrGuideInactive = errs.New("guide is not accepting bookings")

type CreateBookingInput struct {
	GuideID     uuid.UUID
	ItineraryID *uuid.UUID
	PoiID       *uuid.UUID
	TourDate    string
	StartTime   string
	EndTime     string
	// DurationHours is optional; when present it must equal the requested window
	DurationHours   *decimal.Decimal
	NumberOfPeople  int
	SpecialRequests *string
	// IdempotencyKey makes a retried create return the booking of the first request
	IdempotencyKey *uuid.UUID `json:"-"`
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, actor user.Actor, in CreateBookingInput) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow        shared.UnitOfWork
	calculator pricing.Calculator
	settings   Settings
	clock      clock.Clock
}

func NewBookingCommands(uow shared.UnitOfWork, calculator pricing.Calculator, settings Settings, clk clock.Clock) BookingCommands {
	return &bookingCommandsImpl{
		uow:        uow,
		calculator: calculator,
		settings:   settings,
		clock:      clk,
	}
}

func (uc *bookingCommandsImpl) CreateBooking(ctx context.Context, actor user.Actor, in CreateBookingInput) (*queries.BookingView, error) {
	if actor.Role != user.RoleTourist {
		return nil, booking.ErrForbidden
	}

	params, err := uc.validate(actor, in)
	if err != nil {
		return nil, err
	}

	draft, err := uc.priceDraft(ctx, params)
	if err != nil {
		return nil, err
	}
	quote, err := uc.calculator.ComputePrice(draft)
	if err != nil {
		return nil, errs.Wrap(err, "compute price")
	}

	idem, err := newIdempotentRequest(in.IdempotencyKey, actor.ID, EndpointCreateBooking, in)
	if err != nil {
		return nil, err
	}

	var (
		created  *booking.Booking
		replayed *queries.BookingView
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created, replayed = nil, nil
		prior, err := idem.claim(ctx, tx, uc.clock.Now())
		if err != nil {
			return err
		}
		if prior != nil {
			replayed, err = bookingView(ctx, tx.Reads(), *prior.ResultID)
			return err
		}

		if err := tx.Bookings().LockGuideDate(ctx, params.GuideID, params.TourDate); err != nil {
			return err
		}

		result, err := queries.ResolveAvailability(ctx, tx.Reads(), params.GuideID, params.TourDate, params.Slot)
		if err != nil {
			return err
		}
		if !result.Available {
			return result.Err()
		}

		b := booking.NewBooking(params, quote, uc.clock.Now())
		if err := tx.Bookings().Create(ctx, b); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, availability.ErrTimeConflict)
			}
			return err
		}
		if err := enqueueBookingEvent(ctx, tx, shared.JobBookingCreated, b, actor, uc.clock.Now()); err != nil {
			return err
		}
		if err := idem.complete(ctx, tx, b.ID(), nil, uc.clock.Now()); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		slog.InfoContext(ctx, "booking create replayed",
			slog.String("booking_id", replayed.ID.String()),
			slog.String("idempotency_key", in.IdempotencyKey.String()),
		)
		return replayed, nil
	}

	slog.InfoContext(ctx, "booking created",
		slog.String("booking_id", created.ID().String()),
		slog.String("guide_id", created.GuideID().String()),
		slog.String("slot", created.Slot().String()),
	)
	return queries.NewBookingView(created, nil), nil
}

func bookingView(ctx context.Context, reads shared.CommandReads, id uuid.UUID) (*queries.BookingView, error) {
	b, err := reads.BookingByID(ctx, id)
	if err != nil {
		return nil, shared.MarkNotFound(err, shared.ErrBookingNotFound)
	}
	p, err := reads.PaymentByBookingID(ctx, id)
	if err != nil {
		if !infra.IsNotFound(err) {
			return nil, err
		}
		p = nil
	}
	return queries.NewBookingView(b, p), nil
}

// validate reports every invalid field, not just the first
func (uc *bookingCommandsImpl) validate(actor user.Actor, in CreateBookingInput) (booking.NewParams, error) {
	ve := &errs.ValidationError{}
	if in.GuideID == uuid.Nil {
		ve.Add("guide_id", "is required")
	}

	tourDate, slot, ok := shared.ParseSlot("tour_date", in.TourDate, in.StartTime, in.EndTime, ve)
	if ok {
		today := schedule.DateOf(uc.clock.Now(), uc.settings.location())
		if tourDate.Before(today) {
			ve.Add("tour_date", "must not be in the past")
		}
		maxHours := decimal.NewFromInt(int64(uc.settings.MaxDurationHours))
		if uc.settings.MaxDurationHours > 0 && slot.Hours().GreaterThan(maxHours) {
			ve.Add("end_time", "booking may not exceed "+maxHours.String()+" hours")
		}
		if in.DurationHours != nil && !in.DurationHours.Equal(slot.Hours()) {
			ve.Add("duration_hours", "must equal the time between start_time and end_time")
		}
	}

	if in.NumberOfPeople < uc.settings.MinPeople || (uc.settings.MaxPeople > 0 && in.NumberOfPeople > uc.settings.MaxPeople) {
		ve.Add("number_of_people", "out of allowed range")
	}

	if err := ve.OrNil(); err != nil {
		return booking.NewParams{}, err
	}

	var special *string
	if in.SpecialRequests != nil {
		if s := strings.TrimSpace(*in.SpecialRequests); s != "" {
			special = &s
		}
	}
	return booking.NewParams{
		TouristID:       actor.ID,
		GuideID:         in.GuideID,
		ItineraryID:     in.ItineraryID,
		PoiID:           in.PoiID,
		TourDate:        tourDate,
		Slot:            slot,
		DurationHours:   slot.Hours(),
		NumberOfPeople:  in.NumberOfPeople,
		SpecialRequests: special,
	}, nil
}

func (uc *bookingCommandsImpl) priceDraft(ctx context.Context, p booking.NewParams) (pricing.Draft, error) {
	reads := uc.uow.CommandReads()
	guide, err := reads.GuideByID(ctx, p.GuideID)
	if err != nil {
		return pricing.Draft{}, shared.MarkNotFound(err, shared.ErrGuideNotFound)
	}
	if !guide.IsActive {
		return pricing.Draft{}, ErrGuideInactive
	}

	if p.ItineraryID == nil {
		return pricing.Draft{
			Mode:           pricing.ModeDirectHourly,
			HourlyRate:     guide.HourlyRate,
			DurationHours:  p.DurationHours,
			NumberOfPeople: p.NumberOfPeople,
		}, nil
	}

	itinerary, err := reads.GuideItinerary(ctx, p.GuideID, *p.ItineraryID)
	if err != nil {
		return pricing.Draft{}, shared.MarkNotFound(err, shared.ErrItineraryNotFound)
	}
	return pricing.Draft{
		Mode:           pricing.ModeItinerary,
		BasePrice:      itinerary.BasePrice,
		DurationHours:  p.DurationHours,
		NumberOfPeople: p.NumberOfPeople,
		CommissionRate: itinerary.CommissionRate,
	}, nil
}
