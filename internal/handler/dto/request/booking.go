package request

import (
	"strings"

	"tourbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	GuideID         uuid.UUID        `json:"guide_id" binding:"required"`
	ItineraryID     *uuid.UUID       `json:"itinerary_id,omitempty"`
	PoiID           *uuid.UUID       `json:"poi_id,omitempty"`
	TourDate        string           `json:"tour_date"`
	StartTime       string           `json:"start_time"`
	EndTime         string           `json:"end_time"`
	DurationHours   *decimal.Decimal `json:"duration_hours,omitempty" swaggertype:"string"`
	NumberOfPeople  int              `json:"number_of_people"`
	SpecialRequests *string          `json:"special_requests,omitempty"`
}

func (r CreateBookingRequest) ToInput() commands.CreateBookingInput {
	return commands.CreateBookingInput{
		GuideID:         r.GuideID,
		ItineraryID:     r.ItineraryID,
		PoiID:           r.PoiID,
		TourDate:        strings.TrimSpace(r.TourDate),
		StartTime:       strings.TrimSpace(r.StartTime),
		EndTime:         strings.TrimSpace(r.EndTime),
		DurationHours:   r.DurationHours,
		NumberOfPeople:  r.NumberOfPeople,
		SpecialRequests: trimmedOrNil(r.SpecialRequests),
	}
}

type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

func (r UpdateStatusRequest) ToInput(bookingID uuid.UUID) commands.ChangeStatusInput {
	in := commands.ChangeStatusInput{
		BookingID: bookingID,
		Status:    strings.ToLower(strings.TrimSpace(r.Status)),
	}
	if reason := trimmedOrNil(r.Reason); reason != nil {
		in.Reason = *reason
	}
	return in
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (r CancelBookingRequest) GetReason() string {
	if reason := trimmedOrNil(r.Reason); reason != nil {
		return *reason
	}
	return ""
}

type ListBookingsQuery struct {
	GuideID *string `form:"guide_id"`
	Status  string  `form:"status"`
	After   string  `form:"after"`
	Limit   int     `form:"limit"`
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
