//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/user"
	"tourbook/internal/pkg/clock"
	"tourbook/internal/pkg/errs"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/shared"
	"tourbook/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type LifecycleCommandsTestSuite struct {
	suite.Suite
	store    *memStore
	clock    *clock.MockClock
	gateway  *fakeGateway
	uc       commands.LifecycleCommands
	tourist  user.Actor
	guide    user.Actor
	operator user.Actor
}

func (s *LifecycleCommandsTestSuite) SetupTest() {
	s.store = newMemStore()
	// the builder's tour runs 2030-06-03 10:00-12:00 UTC
	s.clock = clock.NewMockClock(time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC))
	s.gateway = &fakeGateway{method: payment.MethodOmise}
	uow := &fakeUoW{store: s.store}
	payments := commands.NewPaymentCommands(uow, commands.NewGateways(s.gateway), testSettings, s.clock)
	s.uc = commands.NewLifecycleCommands(uow, payments, testSettings, s.clock)
	s.tourist = user.NewActor(uuid.New(), user.RoleTourist)
	s.guide = user.NewActor(uuid.New(), user.RoleGuide)
	s.operator = user.NewActor(uuid.New(), user.RoleOperator)
}

func TestLifecycleCommandsSuite(t *testing.T) {
	suite.Run(t, new(LifecycleCommandsTestSuite))
}

func (s *LifecycleCommandsTestSuite) seedBooking(status booking.Status) *booking.Booking {
	b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.TouristID = s.tourist.ID
		b.GuideID = s.guide.ID
		b.Status = status
	}).BuildDomain()
	s.store.putBooking(b)
	return b
}

func (s *LifecycleCommandsTestSuite) seedPayment(bookingID uuid.UUID, status payment.Status) *payment.Payment {
	p := builder.NewPaymentBuilder().With(func(p *builder.PaymentBuilder) {
		p.BookingID = bookingID
		p.Status = status
	}).BuildDomain()
	s.store.putPayment(p)
	return p
}

func (s *LifecycleCommandsTestSuite) TestConfirm_IsIdempotent() {
	b := s.seedBooking(booking.StatusPending)
	in := commands.ChangeStatusInput{BookingID: b.ID(), Status: "confirmed"}

	first, err := s.uc.ChangeStatus(context.Background(), s.guide, in)
	s.Require().NoError(err)
	s.True(first.Changed)
	s.Equal("confirmed", first.Booking.Status)

	second, err := s.uc.ChangeStatus(context.Background(), s.guide, in)
	s.Require().NoError(err)
	s.False(second.Changed)
	s.Equal("confirmed", second.Booking.Status)

	s.Equal(1, s.store.countJobs(shared.JobBookingConfirmed))
	s.Equal(booking.StatusConfirmed, s.store.booking(b.ID()).Status())
}

func (s *LifecycleCommandsTestSuite) TestIllegalTransitionLeavesStateUntouched() {
	b := s.seedBooking(booking.StatusCompleted)

	_, err := s.uc.ChangeStatus(context.Background(), s.guide, commands.ChangeStatusInput{BookingID: b.ID(), Status: "confirmed"})

	s.True(errs.Is(err, booking.ErrIllegalTransition), "got %v", err)
	s.Equal(booking.StatusCompleted, s.store.booking(b.ID()).Status())
	s.Empty(s.store.jobs)
}

func (s *LifecycleCommandsTestSuite) TestAccessRules() {
	b := s.seedBooking(booking.StatusPending)

	_, err := s.uc.ChangeStatus(context.Background(), user.NewActor(uuid.New(), user.RoleGuide), commands.ChangeStatusInput{BookingID: b.ID(), Status: "confirmed"})
	s.True(errs.Is(err, shared.ErrBookingNotFound), "stranger: %v", err)

	_, err = s.uc.ChangeStatus(context.Background(), s.tourist, commands.ChangeStatusInput{BookingID: b.ID(), Status: "confirmed"})
	s.ErrorIs(err, booking.ErrForbidden)

	_, err = s.uc.ChangeStatus(context.Background(), s.guide, commands.ChangeStatusInput{BookingID: b.ID(), Status: "archived"})
	s.True(errs.Is(err, errs.ErrValidation), "unknown status: %v", err)

	_, err = s.uc.Cancel(context.Background(), s.operator, uuid.New(), "")
	s.True(errs.Is(err, shared.ErrBookingNotFound), "missing: %v", err)
}

func (s *LifecycleCommandsTestSuite) TestReject_KeepsReasonAndLeavesPayment() {
	b := s.seedBooking(booking.StatusPending)
	s.seedPayment(b.ID(), payment.StatusPending)

	res, err := s.uc.ChangeStatus(context.Background(), s.guide, commands.ChangeStatusInput{BookingID: b.ID(), Status: "rejected", Reason: "  fully booked "})

	s.Require().NoError(err)
	s.Equal("rejected", res.Booking.Status)
	s.Require().NotNil(res.Booking.CancellationReason)
	s.Equal("fully booked", *res.Booking.CancellationReason)
	s.Equal(payment.StatusPending, s.store.paymentFor(b.ID()).Status())
	s.Empty(s.gateway.refunds)
}

func (s *LifecycleCommandsTestSuite) TestCancel_RefundsCompletedPayment() {
	b := s.seedBooking(booking.StatusConfirmed)
	p := s.seedPayment(b.ID(), payment.StatusCompleted)

	res, err := s.uc.Cancel(context.Background(), s.tourist, b.ID(), "change of plans")

	s.Require().NoError(err)
	s.True(res.Changed)
	s.Nil(res.RefundError)
	s.Equal("cancelled", res.Booking.Status)
	s.Require().NotNil(res.Booking.Payment)
	s.Equal("refunded", res.Booking.Payment.Status)

	s.Require().Len(s.gateway.refunds, 1)
	s.Equal(*p.TransactionID(), s.gateway.refunds[0].TransactionID)
	s.True(p.Amount().Equal(s.gateway.refunds[0].Amount))
	s.Equal(payment.StatusRefunded, s.store.paymentFor(b.ID()).Status())
	s.Equal([]string{shared.JobBookingCancelled, shared.JobPaymentRefunded}, s.store.jobKinds())
}

func (s *LifecycleCommandsTestSuite) TestCancel_RefundFailureDoesNotUndoCancellation() {
	b := s.seedBooking(booking.StatusConfirmed)
	s.seedPayment(b.ID(), payment.StatusCompleted)
	s.gateway.refundErr = payment.NewGatewayError(payment.MethodOmise, "refund", 503, "service unavailable")

	res, err := s.uc.Cancel(context.Background(), s.guide, b.ID(), "")

	s.Require().NoError(err)
	s.Equal("cancelled", res.Booking.Status)
	s.Require().NotNil(res.RefundError)
	s.ErrorIs(res.RefundError, payment.ErrGateway)
	s.Equal(b.ID(), res.RefundError.BookingID)
	s.Equal(booking.StatusCancelled, s.store.booking(b.ID()).Status())
	s.Equal(payment.StatusCompleted, s.store.paymentFor(b.ID()).Status())
	s.Equal([]string{shared.JobBookingCancelled, shared.JobRefundFailed}, s.store.jobKinds())
	s.Equal(shared.TopicOperators, s.store.jobs[1].Topic)
}

func (s *LifecycleCommandsTestSuite) TestCancel_TouristInsideWindowIsRefused() {
	b := s.seedBooking(booking.StatusConfirmed)
	s.clock.Set(time.Date(2030, 6, 2, 12, 0, 0, 0, time.UTC))

	_, err := s.uc.Cancel(context.Background(), s.tourist, b.ID(), "")
	s.ErrorIs(err, booking.ErrCancellationWindowClosed)

	res, err := s.uc.Cancel(context.Background(), s.guide, b.ID(), "guide unwell")
	s.Require().NoError(err)
	s.Equal("cancelled", res.Booking.Status)
}

func (s *LifecycleCommandsTestSuite) TestComplete_SettlesPendingPaymentAndRequestsReview() {
	b := s.seedBooking(booking.StatusConfirmed)
	s.seedPayment(b.ID(), payment.StatusPending)

	_, err := s.uc.ChangeStatus(context.Background(), s.guide, commands.ChangeStatusInput{BookingID: b.ID(), Status: "completed"})
	s.ErrorIs(err, booking.ErrTourNotFinished)

	s.clock.Set(time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC))
	res, err := s.uc.ChangeStatus(context.Background(), s.guide, commands.ChangeStatusInput{BookingID: b.ID(), Status: "completed"})

	s.Require().NoError(err)
	s.Equal("completed", res.Booking.Status)
	s.Require().NotNil(res.Booking.Payment)
	s.Equal("completed", res.Booking.Payment.Status)
	s.ElementsMatch([]string{shared.JobBookingCompleted, shared.JobPaymentCompleted, shared.JobReviewRequested}, s.store.jobKinds())
}
