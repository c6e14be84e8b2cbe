//go:build e2e

package booking_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"

	"tourbook/internal/domain/user"
	reqdto "tourbook/internal/handler/dto/request"
	resdto "tourbook/internal/handler/dto/response"
	"tourbook/internal/usecase/queries"
	"tourbook/tests/common/authtest"
	"tourbook/tests/common/dbtest"
	"tourbook/tests/common/httptest"
	"tourbook/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	bookingsURL = "/api/bookings"
	// 2030-06-03 は月曜日
	tourDate = "2030-06-03"
)

type bookingSuite struct {
	e2e.SharedSuite
	tokens   *authtest.JWTHelper
	guideID  uuid.UUID
	tourists []uuid.UUID
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(bookingSuite))
}

func (s *bookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.tokens = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *bookingSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	// 時給50のガイドと月曜 09:00-17:00 の枠を作成
	s.guideID = dbtest.CreateTestGuide(s.T(), s.DB, "guide@example.com", "50.00")
	dbtest.CreateTestAvailability(s.T(), s.DB, s.guideID, "monday", "09:00", "17:00")

	s.tourists = s.tourists[:0]
	for i := range 8 {
		s.tourists = append(s.tourists, dbtest.CreateTestUser(s.T(), s.DB, fmt.Sprintf("tourist%d@example.com", i), "tourist"))
	}
}

func (s *bookingSuite) touristToken(i int) string {
	return s.tokens.GenerateToken(s.T(), s.tourists[i], user.RoleTourist)
}

func (s *bookingSuite) request(start, end string) reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		GuideID:        s.guideID,
		TourDate:       tourDate,
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: 2,
	}
}

func (s *bookingSuite) TestCreateBooking() {
	s.Run("正常系: 直接予約が pending で作成され通知ジョブが積まれる", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("10:00", "12:00"), s.touristToken(0))

		var body queries.BookingView
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &body)
		s.Equal("pending", body.Status)
		s.Equal("direct_hourly", body.PricingMode)
		s.Equal("100.00", body.Subtotal)
		s.Equal("100.00", body.TotalAmount)
		s.Equal("2.00", body.DurationHours)

		jobs := dbtest.CountRows(s.T(), s.DB,
			"SELECT count(*) FROM notification_jobs WHERE kind = 'booking_created' AND payload->>'booking_id' = $1", body.ID.String())
		s.Equal(1, jobs)
	})

	s.Run("異常系: 重なる時間帯は 422 と競合予約IDを返し、隣接する時間帯は成功する", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("10:00", "12:00"), s.touristToken(0))
		var first queries.BookingView
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &first)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("11:00", "13:00"), s.touristToken(1))
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "conflicts with an existing booking")
		var conflict struct {
			Detail struct {
				ConflictingBookingID string `json:"conflicting_booking_id"`
			} `json:"detail"`
		}
		require.NoError(s.T(), httptest.DecodeResponseBody(s.T(), w.Body, &conflict))
		s.Equal(first.ID.String(), conflict.Detail.ConflictingBookingID)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("12:00", "14:00"), s.touristToken(1))
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, nil)
	})

	s.Run("異常系: 稼働時間外は 422", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("16:00", "18:00"), s.touristToken(0))
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "outside the guide's availability")
	})

	s.Run("異常系: トークンなしは 401", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("10:00", "12:00"), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Access token required")
	})
}

func (s *bookingSuite) TestIdempotentCreateBooking() {
	post := func(key string, req reqdto.CreateBookingRequest) *nethttptest.ResponseRecorder {
		payload, err := json.Marshal(req)
		require.NoError(s.T(), err)
		return httptest.PerformRawRequest(s.T(), s.Router, http.MethodPost, bookingsURL, payload, map[string]string{
			"Content-Type":    "application/json",
			"Authorization":   "Bearer " + s.touristToken(0),
			"Idempotency-Key": key,
		})
	}

	s.Run("正常系: 同じキーの再送は同じ予約を返し、予約は1件だけ作られる", func() {
		key := uuid.NewString()

		var first, second queries.BookingView
		httptest.AssertSuccessResponse(s.T(), post(key, s.request("10:00", "12:00")), http.StatusCreated, &first)
		httptest.AssertSuccessResponse(s.T(), post(key, s.request("10:00", "12:00")), http.StatusCreated, &second)
		s.Equal(first.ID, second.ID)

		bookings := dbtest.CountRows(s.T(), s.DB, "SELECT count(*) FROM bookings WHERE guide_id = $1", s.guideID)
		s.Equal(1, bookings)
		completed := dbtest.CountRows(s.T(), s.DB,
			"SELECT count(*) FROM idempotency_keys WHERE key = $1 AND status = 'completed' AND result_id = $2", key, first.ID)
		s.Equal(1, completed)
	})

	s.Run("異常系: 同じキーで別の内容を送ると 422", func() {
		key := uuid.NewString()
		httptest.AssertSuccessResponse(s.T(), post(key, s.request("10:00", "12:00")), http.StatusCreated, nil)
		httptest.AssertErrorResponse(s.T(), post(key, s.request("13:00", "15:00")), http.StatusUnprocessableEntity, "different request")
	})

	s.Run("異常系: 失敗した作成はキーを残さず、同じキーで再試行できる", func() {
		key := uuid.NewString()
		httptest.AssertErrorResponse(s.T(), post(key, s.request("16:00", "18:00")), http.StatusUnprocessableEntity, "outside the guide's availability")

		left := dbtest.CountRows(s.T(), s.DB, "SELECT count(*) FROM idempotency_keys WHERE key = $1", key)
		s.Equal(0, left)
	})
}

func (s *bookingSuite) TestConcurrentBookingsForSameSlot() {
	s.Run("同一枠への同時予約はちょうど1件だけ成功する", func() {
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			codes = map[int]int{}
		)
		for i := range s.tourists {
			token := s.touristToken(i)
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("13:00", "15:00"), token)
				mu.Lock()
				codes[w.Code]++
				mu.Unlock()
			}()
		}
		wg.Wait()

		s.Equal(1, codes[http.StatusCreated], "codes: %v", codes)
		s.Equal(len(s.tourists)-1, codes[http.StatusUnprocessableEntity], "codes: %v", codes)

		occupied := dbtest.CountRows(s.T(), s.DB,
			"SELECT count(*) FROM bookings WHERE guide_id = $1 AND status NOT IN ('cancelled', 'rejected')", s.guideID)
		s.Equal(1, occupied)
	})
}

func (s *bookingSuite) TestCancelReleasesSlot() {
	s.Run("キャンセル後は同じ枠を再予約できる", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("09:00", "11:00"), s.touristToken(0))
		var created queries.BookingView
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &created)

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL+"/"+created.ID.String()+"/cancel",
			reqdto.CancelBookingRequest{}, s.touristToken(0))
		var cancelled resdto.BookingTransitionResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &cancelled)
		s.Equal("cancelled", cancelled.Status)
		s.Nil(cancelled.RefundError)

		// 他人の予約は見えない
		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, bookingsURL+"/"+created.ID.String(), nil, s.touristToken(1))
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Booking not found")

		w = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("09:00", "11:00"), s.touristToken(1))
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, nil)
	})
}

func (s *bookingSuite) TestAvailability() {
	s.Run("予約済みの枠は利用不可として返る", func() {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, bookingsURL, s.request("10:00", "12:00"), s.touristToken(0))
		var created queries.BookingView
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &created)

		path := fmt.Sprintf("/api/guides/%s/availability?date=%s&start_time=11:00&end_time=12:30", s.guideID, tourDate)
		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil, s.touristToken(1))

		var view queries.AvailabilityView
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &view)
		s.False(view.Available)
		s.Require().NotNil(view.ConflictingBookingID)
		s.Equal(created.ID, *view.ConflictingBookingID)

		path = fmt.Sprintf("/api/guides/%s/availability?date=%s&start_time=14:00&end_time=16:00", s.guideID, tourDate)
		w = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil, s.touristToken(1))
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &view)
		s.True(view.Available)
	})
}
