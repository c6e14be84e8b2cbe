package shared

import (
	"time"

	"tourbook/internal/domain/schedule"
	"tourbook/internal/pkg/errs"
)

// ParseSlot reads a calendar date and a half-open time window, recording every
// malformed field on ve. ok is false when any of them could not be used.
func ParseSlot(dateField, date, start, end string, ve *errs.ValidationError) (time.Time, schedule.TimeRange, bool) {
	tourDate, err := schedule.ParseDate(date)
	if err != nil {
		ve.Add(dateField, "must be a date in YYYY-MM-DD format")
	}
	startAt, startErr := schedule.ParseTimeOfDay(start)
	if startErr != nil {
		ve.Add("start_time", "must be a time in HH:MM format")
	}
	endAt, endErr := schedule.ParseTimeOfDay(end)
	if endErr != nil {
		ve.Add("end_time", "must be a time in HH:MM format")
	}
	if err != nil || startErr != nil || endErr != nil {
		return time.Time{}, schedule.TimeRange{}, false
	}

	slot, err := schedule.NewTimeRange(startAt, endAt)
	if err != nil {
		ve.Add("end_time", "must be after start_time")
		return time.Time{}, schedule.TimeRange{}, false
	}
	return tourDate, slot, true
}
