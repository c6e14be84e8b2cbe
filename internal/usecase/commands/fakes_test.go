//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"

	"tourbook/internal/domain/availability"
	"tourbook/internal/domain/booking"
	"tourbook/internal/domain/payment"
	"tourbook/internal/domain/schedule"
	"tourbook/internal/infra"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var testSettings = commands.Settings{
	MaxDurationHours:   12,
	MinPeople:          1,
	MaxPeople:          20,
	CancellationWindow: 24 * time.Hour,
	AutoConfirmAfter:   48 * time.Hour,
	SweepBatchSize:     100,
	Currency:           "USD",
	ReturnURL:          "http://localhost/return",
	CancelURL:          "http://localhost/cancel",
	Location:           time.UTC,
}

type queuedJob struct {
	Kind    string
	Topic   string
	Payload map[string]any
	RunAt   time.Time
}

// memStore is an in-memory stand-in for the database. Entities are cloned on the way
// in and out so a failed transaction can be rolled back by restoring the maps.
type memStore struct {
	mu sync.Mutex

	bookings    map[uuid.UUID]*booking.Booking
	payments    map[uuid.UUID]*payment.Payment
	guides      map[uuid.UUID]*shared.GuideSnapshot
	itineraries map[uuid.UUID]*shared.ItinerarySnapshot
	windows     map[uuid.UUID][]availability.Window
	attempts    map[attemptKey]*payment.Attempt
	keys        map[idemKey]shared.IdempotencyRecord
	jobs        []queuedJob

	locks     int
	commits   int
	createErr error
	// rowLocks lists the tables of each SELECT ... FOR UPDATE in the order they were taken
	rowLocks []string
}

func newMemStore() *memStore {
	return &memStore{
		bookings:    map[uuid.UUID]*booking.Booking{},
		payments:    map[uuid.UUID]*payment.Payment{},
		guides:      map[uuid.UUID]*shared.GuideSnapshot{},
		itineraries: map[uuid.UUID]*shared.ItinerarySnapshot{},
		windows:     map[uuid.UUID][]availability.Window{},
		attempts:    map[attemptKey]*payment.Attempt{},
		keys:        map[idemKey]shared.IdempotencyRecord{},
	}
}

type attemptKey struct {
	method payment.Method
	txID   string
}

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

func (s *memStore) attempt(method payment.Method, txID string) *payment.Attempt {
	return cloneAttempt(s.attempts[attemptKey{method, txID}])
}

func (s *memStore) putBooking(b *booking.Booking) {
	s.bookings[b.ID()] = cloneBooking(b)
}

func (s *memStore) putPayment(p *payment.Payment) {
	s.payments[p.ID()] = clonePayment(p)
}

func (s *memStore) booking(id uuid.UUID) *booking.Booking {
	return cloneBooking(s.bookings[id])
}

func (s *memStore) paymentFor(bookingID uuid.UUID) *payment.Payment {
	for _, p := range s.payments {
		if p.BookingID() == bookingID {
			return clonePayment(p)
		}
	}
	return nil
}

func (s *memStore) jobKinds() []string {
	kinds := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		kinds = append(kinds, j.Kind)
	}
	return kinds
}

func (s *memStore) countJobs(kind string) int {
	n := 0
	for _, j := range s.jobs {
		if j.Kind == kind {
			n++
		}
	}
	return n
}

// addGuide registers an active guide available 09:00-17:00 every day at the given hourly rate
func (s *memStore) addGuide(rate int64) uuid.UUID {
	id := uuid.New()
	s.guides[id] = &shared.GuideSnapshot{ID: id, HourlyRate: decimalInt(rate), IsActive: true}
	for _, day := range []schedule.DayOfWeek{schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday, schedule.Friday, schedule.Saturday, schedule.Sunday} {
		s.windows[id] = append(s.windows[id], availability.Window{
			DayOfWeek:   day,
			Range:       schedule.MustTimeRange("09:00", "17:00"),
			IsAvailable: true,
		})
	}
	return id
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	if b == nil {
		return nil
	}
	return booking.ReconstructBooking(booking.Snapshot{
		ID:                 b.ID(),
		TouristID:          b.TouristID(),
		GuideID:            b.GuideID(),
		ItineraryID:        b.ItineraryID(),
		PoiID:              b.PoiID(),
		TourDate:           b.TourDate(),
		Slot:               b.Slot(),
		DurationHours:      b.DurationHours(),
		NumberOfPeople:     b.NumberOfPeople(),
		Subtotal:           b.Subtotal(),
		PlatformFee:        b.PlatformFee(),
		GuideCommission:    b.GuideCommission(),
		CommissionRate:     b.CommissionRate(),
		TotalAmount:        b.TotalAmount(),
		Status:             b.Status(),
		SpecialRequests:    b.SpecialRequests(),
		CancellationReason: b.CancellationReason(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	})
}

func clonePayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	return payment.ReconstructPayment(payment.Snapshot{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		Method:        p.Method(),
		TransactionID: p.TransactionID(),
		Amount:        p.Amount(),
		Status:        p.Status(),
		Details:       p.Details(),
		PaidAt:        p.PaidAt(),
		RefundedAt:    p.RefundedAt(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	})
}

func cloneAttempt(a *payment.Attempt) *payment.Attempt {
	if a == nil {
		return nil
	}
	return payment.ReconstructAttempt(payment.AttemptSnapshot{
		ID:            a.ID(),
		PaymentID:     a.PaymentID(),
		Method:        a.Method(),
		TransactionID: a.TransactionID(),
		Amount:        a.Amount(),
		Status:        a.Status(),
		Details:       a.Details(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	})
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, pgx.ErrNoRows, infra.KindNotFound)
}

// fakeUoW runs every transaction under one mutex and restores the store when fn fails
type fakeUoW struct {
	store *memStore
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	savedBookings := maps.Clone(s.bookings)
	savedPayments := maps.Clone(s.payments)
	savedAttempts := maps.Clone(s.attempts)
	savedKeys := maps.Clone(s.keys)
	savedJobs := len(s.jobs)

	if err := fn(ctx, &fakeTx{store: s}); err != nil {
		s.bookings = savedBookings
		s.payments = savedPayments
		s.attempts = savedAttempts
		s.keys = savedKeys
		s.jobs = s.jobs[:savedJobs]
		return err
	}
	s.commits++
	return nil
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeReads{store: u.store, lock: true}
}

type fakeTx struct {
	store *memStore
}

func (t *fakeTx) Bookings() shared.BookingRepository           { return &fakeBookingRepo{store: t.store} }
func (t *fakeTx) Payments() shared.PaymentRepository           { return &fakePaymentRepo{store: t.store} }
func (t *fakeTx) Notifications() shared.NotificationRepository { return &fakeNotificationRepo{store: t.store} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository    { return &fakeIdempotencyRepo{store: t.store} }
func (t *fakeTx) Reads() shared.CommandReads                   { return &fakeReads{store: t.store} }

type fakeBookingRepo struct {
	store *memStore
}

func (r *fakeBookingRepo) LockGuideDate(_ context.Context, _ uuid.UUID, _ time.Time) error {
	r.store.locks++
	return nil
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if r.store.createErr != nil {
		return r.store.createErr
	}
	r.store.putBooking(b)
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, b *booking.Booking) error {
	if _, ok := r.store.bookings[b.ID()]; !ok {
		return notFound("booking not found")
	}
	r.store.putBooking(b)
	return nil
}

func (r *fakeBookingRepo) FindForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.store.rowLocks = append(r.store.rowLocks, "bookings")
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) ListStalePending(_ context.Context, createdBefore time.Time, limit int32) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, b := range r.store.bookings {
		if b.Status() == booking.StatusPending && b.CreatedAt().Before(createdBefore) && len(ids) < int(limit) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakePaymentRepo struct {
	store *memStore
}

func (r *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.store.putPayment(p)
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	r.store.putPayment(p)
	return nil
}

func (r *fakePaymentRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	r.store.rowLocks = append(r.store.rowLocks, "payments")
	p, ok := r.store.payments[id]
	if !ok {
		return nil, notFound("payment not found")
	}
	return clonePayment(p), nil
}

func (r *fakePaymentRepo) FindByBookingIDForUpdate(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	r.store.rowLocks = append(r.store.rowLocks, "payments")
	if p := r.store.paymentFor(bookingID); p != nil {
		return p, nil
	}
	return nil, notFound("payment not found")
}

func (r *fakePaymentRepo) FindByTransactionIDForUpdate(_ context.Context, method payment.Method, transactionID string) (*payment.Payment, error) {
	r.store.rowLocks = append(r.store.rowLocks, "payments")
	if p := r.holder(method, transactionID); p != nil {
		return clonePayment(p), nil
	}
	return nil, notFound("payment not found")
}

// holder finds the payment that holds or once held the transaction
func (r *fakePaymentRepo) holder(method payment.Method, transactionID string) *payment.Payment {
	for _, p := range r.store.payments {
		if p.HoldsTransaction(method, transactionID) {
			return p
		}
	}
	if a, ok := r.store.attempts[attemptKey{method, transactionID}]; ok {
		return r.store.payments[a.PaymentID()]
	}
	return nil
}

func (r *fakePaymentRepo) BookingIDForTransaction(_ context.Context, method payment.Method, transactionID string) (uuid.UUID, error) {
	if p := r.holder(method, transactionID); p != nil {
		return p.BookingID(), nil
	}
	return uuid.Nil, notFound("payment not found")
}

func (r *fakePaymentRepo) RecordAttempt(_ context.Context, a *payment.Attempt) error {
	k := attemptKey{a.Method(), a.TransactionID()}
	if existing, ok := r.store.attempts[k]; ok {
		// upsert keeps the original row identity
		a = payment.ReconstructAttempt(payment.AttemptSnapshot{
			ID:            existing.ID(),
			PaymentID:     existing.PaymentID(),
			Method:        existing.Method(),
			TransactionID: existing.TransactionID(),
			Amount:        existing.Amount(),
			Status:        a.Status(),
			Details:       a.Details(),
			CreatedAt:     existing.CreatedAt(),
			UpdatedAt:     a.UpdatedAt(),
		})
	}
	r.store.attempts[k] = cloneAttempt(a)
	return nil
}

func (r *fakePaymentRepo) UpdateAttempt(_ context.Context, a *payment.Attempt) error {
	k := attemptKey{a.Method(), a.TransactionID()}
	if _, ok := r.store.attempts[k]; !ok {
		return notFound("payment attempt not found")
	}
	r.store.attempts[k] = cloneAttempt(a)
	return nil
}

func (r *fakePaymentRepo) FindAttemptForUpdate(_ context.Context, method payment.Method, transactionID string) (*payment.Attempt, error) {
	a, ok := r.store.attempts[attemptKey{method, transactionID}]
	if !ok {
		return nil, notFound("payment attempt not found")
	}
	return cloneAttempt(a), nil
}

type fakeIdempotencyRepo struct {
	store *memStore
}

func (r *fakeIdempotencyRepo) Claim(_ context.Context, c shared.IdempotencyClaim, now time.Time) (bool, error) {
	k := idemKey{c.Key, c.UserID}
	if existing, ok := r.store.keys[k]; ok && existing.ExpiresAt.After(now) {
		return false, nil
	}
	r.store.keys[k] = shared.IdempotencyRecord{
		Key:         c.Key,
		UserID:      c.UserID,
		Endpoint:    c.Endpoint,
		RequestHash: c.RequestHash,
		Status:      shared.IdempotencyProcessing,
		ExpiresAt:   c.ExpiresAt,
	}
	return true, nil
}

func (r *fakeIdempotencyRepo) FindForUpdate(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.store.keys[idemKey{key, userID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return &rec, nil
}

func (r *fakeIdempotencyRepo) Complete(_ context.Context, key, userID, resultID uuid.UUID, response []byte, _ time.Time) error {
	k := idemKey{key, userID}
	rec, ok := r.store.keys[k]
	if !ok {
		return notFound("idempotency key not found")
	}
	rec.Status = shared.IdempotencyCompleted
	rec.ResultID = &resultID
	rec.Response = response
	r.store.keys[k] = rec
	return nil
}

func (r *fakeIdempotencyRepo) Release(_ context.Context, key, userID uuid.UUID) error {
	k := idemKey{key, userID}
	if rec, ok := r.store.keys[k]; ok && rec.Status == shared.IdempotencyProcessing {
		delete(r.store.keys, k)
	}
	return nil
}

func (r *fakeIdempotencyRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, rec := range r.store.keys {
		if !rec.ExpiresAt.After(now) {
			delete(r.store.keys, k)
			n++
		}
	}
	return n, nil
}

type fakeNotificationRepo struct {
	store *memStore
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return err
	}
	r.store.jobs = append(r.store.jobs, queuedJob{Kind: kind, Topic: topic, Payload: body, RunAt: runAt})
	return nil
}

// fakeReads locks the store itself only when used outside a transaction
type fakeReads struct {
	store *memStore
	lock  bool
}

func (r *fakeReads) guard() func() {
	if !r.lock {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *fakeReads) GuideByID(_ context.Context, id uuid.UUID) (*shared.GuideSnapshot, error) {
	defer r.guard()()
	g, ok := r.store.guides[id]
	if !ok {
		return nil, notFound("guide not found")
	}
	return g, nil
}

func (r *fakeReads) GuideItinerary(_ context.Context, guideID, itineraryID uuid.UUID) (*shared.ItinerarySnapshot, error) {
	defer r.guard()()
	it, ok := r.store.itineraries[itineraryID]
	if !ok || it.GuideID != guideID {
		return nil, notFound("itinerary not found")
	}
	return it, nil
}

func (r *fakeReads) AvailabilityWindows(_ context.Context, guideID uuid.UUID, day schedule.DayOfWeek) ([]availability.Window, error) {
	defer r.guard()()
	var out []availability.Window
	for _, w := range r.store.windows[guideID] {
		if w.DayOfWeek == day {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeReads) BookedSlots(_ context.Context, guideID uuid.UUID, date time.Time) ([]availability.BookedSlot, error) {
	defer r.guard()()
	var out []availability.BookedSlot
	for _, b := range r.store.bookings {
		if b.GuideID() == guideID && b.TourDate().Equal(date) && b.Status().OccupiesSlot() {
			out = append(out, availability.BookedSlot{BookingID: b.ID(), Range: b.Slot()})
		}
	}
	return out, nil
}

func (r *fakeReads) BookingByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	defer r.guard()()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return cloneBooking(b), nil
}

func (r *fakeReads) PaymentByBookingID(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	defer r.guard()()
	if p := r.store.paymentFor(bookingID); p != nil {
		return p, nil
	}
	return nil, notFound("payment not found")
}

// fakeGateway records calls and answers with canned results
type fakeGateway struct {
	method payment.Method

	order      *shared.GatewayOrder
	orderErr   error
	capture    *shared.GatewayCapture
	captureErr error
	refundErr  error
	event      *shared.WebhookEvent
	webhookErr error

	orders   []shared.GatewayOrderRequest
	captures []string
	refunds  []shared.GatewayRefundRequest

	// onOrder and onRefund run once before the call is answered, standing in for a
	// concurrent request
	onOrder  func()
	onRefund func()
}

func (g *fakeGateway) Method() payment.Method { return g.method }

func (g *fakeGateway) CreateOrder(_ context.Context, req shared.GatewayOrderRequest) (*shared.GatewayOrder, error) {
	g.orders = append(g.orders, req)
	if g.onOrder != nil {
		hook := g.onOrder
		g.onOrder = nil
		hook()
	}
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	return g.order, nil
}

func (g *fakeGateway) Capture(_ context.Context, transactionID string) (*shared.GatewayCapture, error) {
	g.captures = append(g.captures, transactionID)
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	return g.capture, nil
}

func (g *fakeGateway) Refund(_ context.Context, req shared.GatewayRefundRequest) (*shared.GatewayRefund, error) {
	g.refunds = append(g.refunds, req)
	if g.onRefund != nil {
		hook := g.onRefund
		g.onRefund = nil
		hook()
	}
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return &shared.GatewayRefund{Reference: "rfnd_" + req.TransactionID}, nil
}

func (g *fakeGateway) ParseWebhook(_ context.Context, _ shared.WebhookRequest) (*shared.WebhookEvent, error) {
	if g.webhookErr != nil {
		return nil, g.webhookErr
	}
	return g.event, nil
}
