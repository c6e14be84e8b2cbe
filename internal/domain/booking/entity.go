package booking

import (
	"errors"
	"fmt"
	"time"

	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/domain/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus            = errors.New("invalid booking status")
	ErrIllegalTransition        = errors.New("illegal booking status transition")
	ErrForbidden                = errors.New("actor is not allowed to perform this transition")
	ErrCancellationWindowClosed = errors.New("booking can no longer be cancelled by the tourist")
	ErrTourNotFinished          = errors.New("tour has not finished yet")
)

// IllegalTransitionError names the rejected edge of the lifecycle table
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal booking status transition: %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

type Booking struct {
	id                 uuid.UUID
	touristID          uuid.UUID
	guideID            uuid.UUID
	itineraryID        *uuid.UUID
	poiID              *uuid.UUID
	tourDate           time.Time
	slot               schedule.TimeRange
	durationHours      decimal.Decimal
	numberOfPeople     int
	subtotal           decimal.Decimal
	platformFee        decimal.Decimal
	guideCommission    decimal.Decimal
	commissionRate     *decimal.Decimal
	totalAmount        decimal.Decimal
	status             Status
	specialRequests    *string
	cancellationReason *string
	createdAt          time.Time
	updatedAt          time.Time
}

type NewParams struct {
	TouristID       uuid.UUID
	GuideID         uuid.UUID
	ItineraryID     *uuid.UUID
	PoiID           *uuid.UUID
	TourDate        time.Time
	Slot            schedule.TimeRange
	DurationHours   decimal.Decimal
	NumberOfPeople  int
	SpecialRequests *string
}

// NewBooking creates a pending booking priced by quote. Amounts are rounded here,
// the point at which they become persistent.
func NewBooking(p NewParams, quote pricing.Quote, now time.Time) *Booking {
	rounded := quote.Rounded()
	return &Booking{
		id:              uuid.New(),
		touristID:       p.TouristID,
		guideID:         p.GuideID,
		itineraryID:     p.ItineraryID,
		poiID:           p.PoiID,
		tourDate:        p.TourDate,
		slot:            p.Slot,
		durationHours:   p.DurationHours.Round(2),
		numberOfPeople:  p.NumberOfPeople,
		subtotal:        rounded.Subtotal,
		platformFee:     rounded.PlatformFee,
		guideCommission: rounded.GuideCommission,
		commissionRate:  quote.CommissionRate,
		totalAmount:     rounded.Total,
		status:          StatusPending,
		specialRequests: p.SpecialRequests,
		createdAt:       now,
		updatedAt:       now,
	}
}

type Snapshot struct {
	ID                 uuid.UUID
	TouristID          uuid.UUID
	GuideID            uuid.UUID
	ItineraryID        *uuid.UUID
	PoiID              *uuid.UUID
	TourDate           time.Time
	Slot               schedule.TimeRange
	DurationHours      decimal.Decimal
	NumberOfPeople     int
	Subtotal           decimal.Decimal
	PlatformFee        decimal.Decimal
	GuideCommission    decimal.Decimal
	CommissionRate     *decimal.Decimal
	TotalAmount        decimal.Decimal
	Status             Status
	SpecialRequests    *string
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructBooking(s Snapshot) *Booking {
	return &Booking{
		id:                 s.ID,
		touristID:          s.TouristID,
		guideID:            s.GuideID,
		itineraryID:        s.ItineraryID,
		poiID:              s.PoiID,
		tourDate:           s.TourDate,
		slot:               s.Slot,
		durationHours:      s.DurationHours,
		numberOfPeople:     s.NumberOfPeople,
		subtotal:           s.Subtotal,
		platformFee:        s.PlatformFee,
		guideCommission:    s.GuideCommission,
		commissionRate:     s.CommissionRate,
		totalAmount:        s.TotalAmount,
		status:             s.Status,
		specialRequests:    s.SpecialRequests,
		cancellationReason: s.CancellationReason,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                    { return b.id }
func (b *Booking) TouristID() uuid.UUID             { return b.touristID }
func (b *Booking) GuideID() uuid.UUID               { return b.guideID }
func (b *Booking) ItineraryID() *uuid.UUID          { return b.itineraryID }
func (b *Booking) PoiID() *uuid.UUID                { return b.poiID }
func (b *Booking) TourDate() time.Time              { return b.tourDate }
func (b *Booking) Slot() schedule.TimeRange         { return b.slot }
func (b *Booking) DurationHours() decimal.Decimal   { return b.durationHours }
func (b *Booking) NumberOfPeople() int              { return b.numberOfPeople }
func (b *Booking) Subtotal() decimal.Decimal        { return b.subtotal }
func (b *Booking) PlatformFee() decimal.Decimal     { return b.platformFee }
func (b *Booking) GuideCommission() decimal.Decimal { return b.guideCommission }
func (b *Booking) CommissionRate() *decimal.Decimal { return b.commissionRate }
func (b *Booking) TotalAmount() decimal.Decimal     { return b.totalAmount }
func (b *Booking) Status() Status                   { return b.status }
func (b *Booking) SpecialRequests() *string         { return b.specialRequests }
func (b *Booking) CancellationReason() *string      { return b.cancellationReason }
func (b *Booking) CreatedAt() time.Time             { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time             { return b.updatedAt }

func (b *Booking) PricingMode() pricing.Mode {
	if b.itineraryID != nil {
		return pricing.ModeItinerary
	}
	return pricing.ModeDirectHourly
}

func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.slot.Start().On(b.tourDate, loc)
}

func (b *Booking) EndsAt(loc *time.Location) time.Time {
	return b.slot.End().On(b.tourDate, loc)
}

// IsParticipant is true for the booking's own tourist and guide
func (b *Booking) IsParticipant(actor user.Actor) bool {
	return actor.IsTourist(b.touristID) || actor.IsGuide(b.guideID)
}

// CanView is the read-side access rule
func (b *Booking) CanView(actor user.Actor) bool {
	return actor.IsOperator() || actor.IsSystem() || b.IsParticipant(actor)
}
