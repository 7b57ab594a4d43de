package booking

import (
	"fmt"
	"time"

	"barberli-backend/models"
)

// SlotGranularity is the fixed step between candidate start times.
const SlotGranularity = 30 * time.Minute

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// ReservationInterval builds the busy interval occupied by a reservation.
func ReservationInterval(r models.Reservation) Interval {
	return Interval{Start: r.StartTime, End: r.EndTime()}
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Boundary touches do not overlap: an appointment
// ending at 10:00 does not conflict with one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ParseClock parses a zero-padded 24-hour "HH:MM" wall-clock string.
func ParseClock(clock string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(clock, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: out of range", clock)
	}
	return hour, minute, nil
}

// ValidClock reports whether clock is a well-formed "HH:MM" string.
func ValidClock(clock string) bool {
	_, _, err := ParseClock(clock)
	return err == nil
}

// AvailableSlots returns the free start times for a service of the given
// duration on the given date, honouring the day's working hours and the busy
// intervals of existing active reservations.
//
// The walk starts at OpenTime and steps by SlotGranularity; a candidate is
// emitted while candidate+duration still fits before CloseTime and the
// candidate overlaps no busy interval. Output is ascending. A nil hours entry
// or a closed day yields an empty result, not an error.
//
// The date's wall clock is interpreted in date's own location; no timezone
// conversion happens here.
func AvailableSlots(hours *models.WorkingHours, date time.Time, serviceDuration time.Duration, busy []Interval) []time.Time {
	if hours == nil || hours.IsClosed || serviceDuration <= 0 {
		return nil
	}

	openH, openM, err := ParseClock(hours.OpenTime)
	if err != nil {
		return nil
	}
	closeH, closeM, err := ParseClock(hours.CloseTime)
	if err != nil {
		return nil
	}

	year, month, day := date.Date()
	open := time.Date(year, month, day, openH, openM, 0, 0, date.Location())
	close := time.Date(year, month, day, closeH, closeM, 0, 0, date.Location())

	var slots []time.Time
	for cursor := open; !cursor.Add(serviceDuration).After(close); cursor = cursor.Add(SlotGranularity) {
		if !overlapsAny(cursor, cursor.Add(serviceDuration), busy) {
			slots = append(slots, cursor)
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
