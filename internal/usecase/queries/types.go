package queries

import (
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/pkg/money"

	"github.com/google/uuid"
)

// BookingView represents read-optimized booking data. Amounts are fixed two-decimal strings.
type BookingView struct {
	ID                 uuid.UUID    `json:"id"`
	TouristID          uuid.UUID    `json:"tourist_id"`
	GuideID            uuid.UUID    `json:"guide_id"`
	ItineraryID        *uuid.UUID   `json:"itinerary_id,omitempty"`
	PoiID              *uuid.UUID   `json:"poi_id,omitempty"`
	TourDate           string       `json:"tour_date"`
	StartTime          string       `json:"start_time"`
	EndTime            string       `json:"end_time"`
	DurationHours      string       `json:"duration_hours"`
	NumberOfPeople     int          `json:"number_of_people"`
	PricingMode        string       `json:"pricing_mode"`
	Subtotal           string       `json:"subtotal"`
	PlatformFee        string       `json:"platform_fee"`
	GuideCommission    string       `json:"guide_commission"`
	CommissionRate     *string      `json:"commission_rate,omitempty"`
	TotalAmount        string       `json:"total_amount"`
	Status             string       `json:"status"`
	SpecialRequests    *string      `json:"special_requests,omitempty"`
	CancellationReason *string      `json:"cancellation_reason,omitempty"`
	Payment            *PaymentView `json:"payment,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

type PaymentView struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	Method        string     `json:"payment_method"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	Amount        string     `json:"amount"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingFilter narrows a booking listing; nil fields do not filter
type BookingFilter struct {
	TouristID *uuid.UUID
	GuideID   *uuid.UUID
	Status    *booking.Status
	After     *BookingCursor
	Limit     int32
}

type BookingPage struct {
	Items      []*BookingView `json:"items"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

type AvailabilityView struct {
	GuideID              uuid.UUID  `json:"guide_id"`
	Date                 string     `json:"date"`
	StartTime            string     `json:"start_time"`
	EndTime              string     `json:"end_time"`
	Available            bool       `json:"available"`
	Reason               string     `json:"reason,omitempty"`
	ConflictingBookingID *uuid.UUID `json:"conflicting_booking_id,omitempty"`
}

func NewBookingView(b *booking.Booking, p *payment.Payment) *BookingView {
	v := &BookingView{
		ID:                 b.ID(),
		TouristID:          b.TouristID(),
		GuideID:            b.GuideID(),
		ItineraryID:        b.ItineraryID(),
		PoiID:              b.PoiID(),
		TourDate:           schedule.FormatDate(b.TourDate()),
		StartTime:          b.Slot().Start().String(),
		EndTime:            b.Slot().End().String(),
		DurationHours:      b.DurationHours().StringFixed(2),
		NumberOfPeople:     b.NumberOfPeople(),
		PricingMode:        string(b.PricingMode()),
		Subtotal:           money.String(b.Subtotal()),
		PlatformFee:        money.String(b.PlatformFee()),
		GuideCommission:    money.String(b.GuideCommission()),
		TotalAmount:        money.String(b.TotalAmount()),
		Status:             b.Status().String(),
		SpecialRequests:    b.SpecialRequests(),
		CancellationReason: b.CancellationReason(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
	if rate := b.CommissionRate(); rate != nil {
		s := rate.StringFixed(2)
		v.CommissionRate = &s
	}
	if p != nil {
		v.Payment = NewPaymentView(p)
	}
	return v
}

func NewPaymentView(p *payment.Payment) *PaymentView {
	return &PaymentView{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		Method:        p.Method().String(),
		TransactionID: p.TransactionID(),
		Amount:        money.String(p.Amount()),
		Status:        p.Status().String(),
		PaidAt:        p.PaidAt(),
		RefundedAt:    p.RefundedAt(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}
