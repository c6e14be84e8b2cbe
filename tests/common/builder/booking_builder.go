//go:build unit || e2e

package builder

import (
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/schedule"
	reqdto "tourbook/internal/handler/dto/request"
	"tourbook/internal/infra/repository/converter"
	sqlc "tourbook/internal/infra/sqlc/generated"
	"tourbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingBuilder struct {
	ID             uuid.UUID
	TouristID      uuid.UUID
	GuideID        uuid.UUID
	ItineraryID    *uuid.UUID
	TourDate       time.Time
	StartTime      string
	EndTime        string
	NumberOfPeople int
	Subtotal       decimal.Decimal
	PlatformFee    decimal.Decimal
	Commission     decimal.Decimal
	CommissionRate *decimal.Decimal
	Total          decimal.Decimal
	Status         booking.Status
	Reason         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewBookingBuilder describes a pending two hour direct booking priced at 50/h
func NewBookingBuilder() *BookingBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &BookingBuilder{
		ID:             uuid.New(),
		TouristID:      uuid.New(),
		GuideID:        uuid.New(),
		TourDate:       time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC),
		StartTime:      "10:00",
		EndTime:        "12:00",
		NumberOfPeople: 2,
		Subtotal:       decimal.NewFromInt(100),
		PlatformFee:    decimal.Zero,
		Commission:     decimal.Zero,
		Total:          decimal.NewFromInt(100),
		Status:         booking.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() *booking.Booking {
	slot := schedule.MustTimeRange(b.StartTime, b.EndTime)
	return booking.ReconstructBooking(booking.Snapshot{
		ID:                 b.ID,
		TouristID:          b.TouristID,
		GuideID:            b.GuideID,
		ItineraryID:        b.ItineraryID,
		TourDate:           b.TourDate,
		Slot:               slot,
		DurationHours:      slot.Hours(),
		NumberOfPeople:     b.NumberOfPeople,
		Subtotal:           b.Subtotal,
		PlatformFee:        b.PlatformFee,
		GuideCommission:    b.Commission,
		CommissionRate:     b.CommissionRate,
		TotalAmount:        b.Total,
		Status:             b.Status,
		CancellationReason: b.Reason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	})
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return queries.NewBookingView(b.BuildDomain(), nil)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		GuideID:        b.GuideID,
		ItineraryID:    b.ItineraryID,
		TourDate:       schedule.FormatDate(b.TourDate),
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		NumberOfPeople: b.NumberOfPeople,
	}
}

// BuildInfra renders the booking as the row the query layer returns
func (b *BookingBuilder) BuildInfra() sqlc.Bookings {
	p := converter.BookingToCreateParams(b.BuildDomain())
	return sqlc.Bookings{
		ID:                 p.ID,
		TouristID:          p.TouristID,
		GuideID:            p.GuideID,
		ItineraryID:        p.ItineraryID,
		PoiID:              p.PoiID,
		TourDate:           p.TourDate,
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		DurationHours:      p.DurationHours,
		NumberOfPeople:     p.NumberOfPeople,
		Subtotal:           p.Subtotal,
		PlatformFee:        p.PlatformFee,
		GuideCommission:    p.GuideCommission,
		CommissionRate:     p.CommissionRate,
		TotalAmount:        p.TotalAmount,
		Status:             p.Status,
		SpecialRequests:    p.SpecialRequests,
		CancellationReason: converter.BookingToStatusParams(b.BuildDomain()).CancellationReason,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type PaymentBuilder struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	Method        payment.Method
	TransactionID *string
	Amount        decimal.Decimal
	Status        payment.Status
	Details       payment.Details
	PaidAt        *time.Time
	CreatedAt     time.Time
}

func NewPaymentBuilder() *PaymentBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	txn := "chrg_test_" + uuid.NewString()[:8]
	return &PaymentBuilder{
		ID:            uuid.New(),
		BookingID:     uuid.New(),
		Method:        payment.MethodOmise,
		TransactionID: &txn,
		Amount:        decimal.NewFromInt(100),
		Status:        payment.StatusPending,
		Details:       payment.Details{},
		CreatedAt:     now,
	}
}

func (p *PaymentBuilder) With(mutate func(*PaymentBuilder)) *PaymentBuilder {
	mutate(p)
	return p
}

func (p *PaymentBuilder) BuildDomain() *payment.Payment {
	return payment.ReconstructPayment(payment.Snapshot{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Method:        p.Method,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Status:        p.Status,
		Details:       p.Details,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.CreatedAt,
	})
}

func (p *PaymentBuilder) BuildView() *queries.PaymentView {
	return queries.NewPaymentView(p.BuildDomain())
}
