package api

import (
	"log/slog"
	"net/http"
	"strings"

	reqdto "tourbook/internal/handler/dto/request"
	resdto "tourbook/internal/handler/dto/response"
	"tourbook/internal/handler/httperr"
	"tourbook/internal/handler/middleware"
	"tourbook/internal/usecase/commands"
	"tourbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type BookingHandler struct {
	bookings  commands.BookingCommands
	lifecycle commands.LifecycleCommands
	q         queries.BookingQueries
}

func NewBookingHandler(bookings commands.BookingCommands, lifecycle commands.LifecycleCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookings:  bookings,
		lifecycle: lifecycle,
		q:         q,
	}
}

// @Summary Create booking
// @Description Request a guided tour. The booking starts pending until it is paid.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} queries.BookingView
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	key, ok := idempotencyKeyHeader(c)
	if !ok {
		return
	}
	in := req.ToInput()
	in.IdempotencyKey = key

	view, err := h.bookings.CreateBooking(c.Request.Context(), actor, in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// @Summary Get booking
// @Description Get a booking visible to the caller, with its payment
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.BookingView
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	view, err := h.q.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List bookings
// @Description List bookings visible to the caller, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param guide_id query string false "Guide ID (operators only)"
// @Param status query string false "Booking status"
// @Param after query string false "Cursor from the previous page"
// @Param limit query int false "Page size"
// @Success 200 {object} queries.BookingPage
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var query reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	in := queries.ListBookingsInput{
		Status: query.Status,
		After:  query.After,
		Limit:  query.Limit,
	}
	if query.GuideID != nil && *query.GuideID != "" {
		guideID, err := uuid.Parse(*query.GuideID)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid guide ID format", nil)
			return
		}
		in.GuideID = &guideID
	}

	page, err := h.q.ListBookings(c.Request.Context(), actor, in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Summary Update booking status
// @Description Move a booking through its lifecycle. Repeating the current status is a no-op.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateStatusRequest true "Target status"
// @Success 200 {object} resdto.BookingTransitionResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var req reqdto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.lifecycle.ChangeStatus(c.Request.Context(), actor, req.ToInput(id))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.writeTransition(c, result)
}

// @Summary Cancel booking
// @Description Cancel a booking. A completed payment is refunded; a failed refund is reported in refund_error.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} resdto.BookingTransitionResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	result, err := h.lifecycle.Cancel(c.Request.Context(), actor, id, req.GetReason())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.writeTransition(c, result)
}

func (h *BookingHandler) writeTransition(c *gin.Context, result *commands.TransitionResult) {
	if result.RefundError != nil {
		slog.WarnContext(c.Request.Context(), "booking cancelled without refund",
			slog.String("booking_id", result.RefundError.BookingID.String()),
			slog.String("payment_id", result.RefundError.PaymentID.String()),
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.Any("error", result.RefundError.Err),
		)
	}
	c.JSON(http.StatusOK, resdto.FromTransitionResult(result))
}

func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// idempotencyKeyHeader reads the optional Idempotency-Key header. A nil key means the
// client did not send one.
func idempotencyKeyHeader(c *gin.Context) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if raw == "" {
		return nil, true
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid idempotency key format", nil)
		return nil, false
	}
	return &key, true
}
