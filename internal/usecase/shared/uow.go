package shared

import (
	"context"
	"time"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Payments() PaymentRepository
	Notifications() NotificationRepository
	Idempotency() IdempotencyRepository
	Reads() CommandReads
}

// CommandReads are the lookups commands need; inside Tx they see the transaction's snapshot
type CommandReads interface {
	GuideByID(ctx context.Context, id uuid.UUID) (*GuideSnapshot, error)
	GuideItinerary(ctx context.Context, guideID, itineraryID uuid.UUID) (*ItinerarySnapshot, error)
	AvailabilityWindows(ctx context.Context, guideID uuid.UUID, day schedule.DayOfWeek) ([]availability.Window, error)
	BookedSlots(ctx context.Context, guideID uuid.UUID, date time.Time) ([]availability.BookedSlot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	PaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
}

// Write-side snapshots of catalog data the engine only reads
type GuideSnapshot struct {
	ID         uuid.UUID
	HourlyRate decimal.Decimal
	IsActive   bool
}

type ItinerarySnapshot struct {
	ID             uuid.UUID
	GuideID        uuid.UUID
	Title          string
	BasePrice      decimal.Decimal
	CommissionRate *decimal.Decimal
}

type BookingRepository interface {
	// LockGuideDate serialises writers on one guide's calendar day until the transaction ends
	LockGuideDate(ctx context.Context, guideID uuid.UUID, date time.Time) error
	Create(ctx context.Context, b *booking.Booking) error
	UpdateStatus(ctx context.Context, b *booking.Booking) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int32) ([]uuid.UUID, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	Update(ctx context.Context, p *payment.Payment) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	FindByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
	// FindByTransactionIDForUpdate also resolves transactions the payment has since replaced
	FindByTransactionIDForUpdate(ctx context.Context, method payment.Method, transactionID string) (*payment.Payment, error)
	// BookingIDForTransaction is the unlocked form of FindByTransactionIDForUpdate
	BookingIDForTransaction(ctx context.Context, method payment.Method, transactionID string) (uuid.UUID, error)
	RecordAttempt(ctx context.Context, a *payment.Attempt) error
	UpdateAttempt(ctx context.Context, a *payment.Attempt) error
	FindAttemptForUpdate(ctx context.Context, method payment.Method, transactionID string) (*payment.Attempt, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
