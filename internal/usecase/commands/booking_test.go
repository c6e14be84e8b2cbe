//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/pricing"
	"tourbook/internal/domain/user"
	"tourbook/internal/infra"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/shared"
	"tourbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func decimalInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

type BookingCommandsTestSuite struct {
	suite.Suite
	store   *memStore
	clock   *clock.MockClock
	uc      commands.BookingCommands
	guideID uuid.UUID
	tourist user.Actor
}

func (s *BookingCommandsTestSuite) SetupTest() {
	s.store = newMemStore()
	s.clock = clock.NewMockClock(time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC))
	s.uc = commands.NewBookingCommands(&fakeUoW{store: s.store}, pricing.NewCalculator(pricing.DefaultPolicy()), testSettings, s.clock)
	s.guideID = s.store.addGuide(50)
	s.tourist = user.NewActor(uuid.New(), user.RoleTourist)
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsTestSuite))
}

func (s *BookingCommandsTestSuite) input(start, end string) commands.CreateBookingInput {
	return commands.CreateBookingInput{
		GuideID:        s.guideID,
		TourDate:       "2030-06-03",
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: 2,
	}
}

func (s *BookingCommandsTestSuite) TestCreateBooking_DirectHourly() {
	hours := decimal.RequireFromString("2.5")
	in := s.input("10:00", "12:30")
	in.DurationHours = &hours

	view, err := s.uc.CreateBooking(context.Background(), s.tourist, in)

	s.Require().NoError(err)
	s.Equal("pending", view.Status)
	s.Equal("direct_hourly", view.PricingMode)
	s.Equal("125.00", view.Subtotal)
	s.Equal("0.00", view.PlatformFee)
	s.Equal("125.00", view.TotalAmount)
	s.Equal("2.50", view.DurationHours)
	s.Equal(s.tourist.ID, view.TouristID)
	s.Equal(1, s.store.locks)
	s.Equal([]string{shared.JobBookingCreated}, s.store.jobKinds())
	s.Equal(shared.TopicBooking, s.store.jobs[0].Topic)
	s.Equal(view.ID.String(), s.store.jobs[0].Payload["booking_id"])
}

func (s *BookingCommandsTestSuite) TestCreateBooking_ItineraryPricing() {
	itineraryID := uuid.New()
	s.store.itineraries[itineraryID] = &shared.ItinerarySnapshot{
		ID:        itineraryID,
		GuideID:   s.guideID,
		Title:     "Old town walk",
		BasePrice: decimalInt(2500),
	}
	in := s.input("09:00", "13:00")
	in.ItineraryID = &itineraryID
	in.NumberOfPeople = 4

	view, err := s.uc.CreateBooking(context.Background(), s.tourist, in)

	s.Require().NoError(err)
	s.Equal("itinerary", view.PricingMode)
	s.Equal("10000.00", view.Subtotal)
	s.Equal("500.00", view.PlatformFee)
	s.Equal("1000.00", view.GuideCommission)
	s.Equal("10500.00", view.TotalAmount)
	s.Require().NotNil(view.CommissionRate)
	s.Equal("10.00", *view.CommissionRate)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_Validation() {
	mismatch := decimalInt(3)
	tests := []struct {
		name        string
		mutate      func(in *commands.CreateBookingInput)
		expectField string
	}{
		{name: "bad start time", mutate: func(in *commands.CreateBookingInput) { in.StartTime = "9am" }, expectField: "start_time"},
		{name: "end before start", mutate: func(in *commands.CreateBookingInput) { in.EndTime = "09:00" }, expectField: "end_time"},
		{name: "longer than allowed", mutate: func(in *commands.CreateBookingInput) { in.StartTime, in.EndTime = "06:00", "19:00" }, expectField: "end_time"},
		{name: "duration mismatch", mutate: func(in *commands.CreateBookingInput) { in.DurationHours = &mismatch }, expectField: "duration_hours"},
		{name: "too many people", mutate: func(in *commands.CreateBookingInput) { in.NumberOfPeople = 21 }, expectField: "number_of_people"},
		{name: "nobody", mutate: func(in *commands.CreateBookingInput) { in.NumberOfPeople = 0 }, expectField: "number_of_people"},
		{name: "past date", mutate: func(in *commands.CreateBookingInput) { in.TourDate = "2030-05-31" }, expectField: "tour_date"},
		{name: "missing guide", mutate: func(in *commands.CreateBookingInput) { in.GuideID = uuid.Nil }, expectField: "guide_id"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := s.input("10:00", "12:00")
			tt.mutate(&in)

			_, err := s.uc.CreateBooking(context.Background(), s.tourist, in)

			var ve *errs.ValidationError
			s.Require().True(errors.As(err, &ve), "got %v", err)
			s.Equal(tt.expectField, ve.Fields[0].Field)
			s.Empty(s.store.bookings)
		})
	}
}

func (s *BookingCommandsTestSuite) TestCreateBooking_OutsideAvailability() {
	_, err := s.uc.CreateBooking(context.Background(), s.tourist, s.input("16:00", "18:00"))

	s.True(errs.Is(err, availability.ErrOutsideAvailability), "got %v", err)
	s.Empty(s.store.bookings)
	s.Empty(s.store.jobs)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_TimeConflict() {
	first, err := s.uc.CreateBooking(context.Background(), s.tourist, s.input("10:00", "12:00"))
	s.Require().NoError(err)

	other := user.NewActor(uuid.New(), user.RoleTourist)
	_, err = s.uc.CreateBooking(context.Background(), other, s.input("11:00", "13:00"))

	var conflict *availability.ConflictError
	s.Require().True(errors.As(err, &conflict), "got %v", err)
	s.Equal(first.ID, conflict.BookingID)
	s.Len(s.store.bookings, 1)

	// back-to-back is not an overlap
	_, err = s.uc.CreateBooking(context.Background(), other, s.input("12:00", "13:00"))
	s.NoError(err)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_RetryWithIdempotencyKeyReturnsOriginal() {
	key := uuid.New()
	in := s.input("10:00", "12:00")
	in.IdempotencyKey = &key

	first, err := s.uc.CreateBooking(context.Background(), s.tourist, in)
	s.Require().NoError(err)

	// without the key the retry would collide with its own booking
	again, err := s.uc.CreateBooking(context.Background(), s.tourist, in)

	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)
	s.Equal(first.TotalAmount, again.TotalAmount)
	s.Len(s.store.bookings, 1)
	s.Equal(1, s.store.countJobs(shared.JobBookingCreated))

	other := s.input("13:00", "14:00")
	other.IdempotencyKey = &key
	_, err = s.uc.CreateBooking(context.Background(), s.tourist, other)
	s.ErrorIs(err, commands.ErrIdempotencyKeyReused)

	// keys are scoped to the caller
	stranger := user.NewActor(uuid.New(), user.RoleTourist)
	_, err = s.uc.CreateBooking(context.Background(), stranger, in)
	var conflict *availability.ConflictError
	s.True(errors.As(err, &conflict), "got %v", err)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_FailedCreateLeavesKeyReusable() {
	key := uuid.New()
	in := s.input("10:00", "12:00")
	in.IdempotencyKey = &key
	s.store.createErr = infra.WrapRepoErr("failed to create booking", &pgconn.PgError{Code: "23P01"})

	_, err := s.uc.CreateBooking(context.Background(), s.tourist, in)
	s.Require().Error(err)
	s.Empty(s.store.keys)

	s.store.createErr = nil
	view, err := s.uc.CreateBooking(context.Background(), s.tourist, in)
	s.Require().NoError(err)
	s.Equal("pending", view.Status)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_CancelledBookingFreesSlot() {
	cancelled := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.GuideID = s.guideID
		b.TourDate = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
		b.Status = booking.StatusCancelled
	}).BuildDomain()
	s.store.putBooking(cancelled)

	_, err := s.uc.CreateBooking(context.Background(), s.tourist, s.input("10:00", "12:00"))
	s.NoError(err)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_ExclusionViolationIsConflict() {
	s.store.createErr = infra.WrapRepoErr("failed to create booking", &pgconn.PgError{Code: "23P01"})

	_, err := s.uc.CreateBooking(context.Background(), s.tourist, s.input("10:00", "12:00"))

	s.True(errs.Is(err, availability.ErrTimeConflict), "got %v", err)
	s.Empty(s.store.jobs)
}

func (s *BookingCommandsTestSuite) TestCreateBooking_CatalogErrors() {
	inactive := s.store.addGuide(40)
	s.store.guides[inactive].IsActive = false
	missingItinerary := uuid.New()

	tests := []struct {
		name        string
		mutate      func(in *commands.CreateBookingInput)
		expectedErr error
	}{
		{name: "unknown guide", mutate: func(in *commands.CreateBookingInput) { in.GuideID = uuid.New() }, expectedErr: shared.ErrGuideNotFound},
		{name: "inactive guide", mutate: func(in *commands.CreateBookingInput) { in.GuideID = inactive }, expectedErr: commands.ErrGuideInactive},
		{name: "itinerary not offered", mutate: func(in *commands.CreateBookingInput) { in.ItineraryID = &missingItinerary }, expectedErr: shared.ErrItineraryNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := s.input("10:00", "12:00")
			tt.mutate(&in)

			_, err := s.uc.CreateBooking(context.Background(), s.tourist, in)

			s.True(errs.Is(err, tt.expectedErr), "got %v", err)
		})
	}
}

func TestCreateBooking_OnlyTouristsBook(t *testing.T) {
	store := newMemStore()
	guideID := store.addGuide(50)
	uc := commands.NewBookingCommands(&fakeUoW{store: store}, pricing.NewCalculator(pricing.DefaultPolicy()), testSettings,
		clock.NewMockClock(time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)))

	for _, actor := range []user.Actor{user.NewActor(guideID, user.RoleGuide), user.NewActor(uuid.New(), user.RoleOperator)} {
		_, err := uc.CreateBooking(context.Background(), actor, commands.CreateBookingInput{
			GuideID: guideID, TourDate: "2030-06-03", StartTime: "10:00", EndTime: "11:00", NumberOfPeople: 1,
		})
		assert.ErrorIs(t, err, booking.ErrForbidden)
	}
	require.Empty(t, store.bookings)
}
