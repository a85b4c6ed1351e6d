// Package calendar turns external iCal booking feeds into normalized
// availability data for the apartment calendar widgets.
package calendar

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// BookingRange is one booked interval from a feed. Start is the check-in
// day (inclusive); End is the checkout day (exclusive, per ICS DTEND
// semantics), which is exactly what the calendar grid needs.
type BookingRange struct {
	Start time.Time
	End   time.Time
}

const dayFormat = "2006-01-02"

// MarshalJSON emits calendar-day precision, e.g. {"start":"2025-06-01","end":"2025-06-05"}.
func (b BookingRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Start: b.Start.Format(dayFormat),
		End:   b.End.Format(dayFormat),
	})
}

// UnmarshalJSON parses the day-precision wire form.
func (b *BookingRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(dayFormat, raw.Start)
	if err != nil {
		return fmt.Errorf("parsing booking start: %w", err)
	}
	end, err := time.Parse(dayFormat, raw.End)
	if err != nil {
		return fmt.Errorf("parsing booking end: %w", err)
	}
	b.Start = start
	b.End = end
	return nil
}

var (
	// Folded lines: a newline followed by a space or tab continues the
	// previous line and must be undone before splitting into events.
	foldedLine = regexp.MustCompile(`(?:\r?\n)[ \t]`)

	eventBoundary = regexp.MustCompile(`(?:\r?\n)END:VEVENT(?:\r?\n)?`)

	beginEvent = regexp.MustCompile(`BEGIN:VEVENT`)

	// Property value after an optional parameter block, e.g.
	// DTSTART;VALUE=DATE:20231215 or DTSTART:20231215T140000Z.
	dtStart = regexp.MustCompile(`(?i)DTSTART(?:;[^:\r\n]+)?:([0-9TZ]+)`)
	dtEnd   = regexp.MustCompile(`(?i)DTEND(?:;[^:\r\n]+)?:([0-9TZ]+)`)
)

// Parse extracts booking ranges from raw ICS text, sorted ascending by
// start day. Malformed input yields an empty or partial list; Parse never
// fails. Overlapping ranges are preserved as-is.
func Parse(raw string) []BookingRange {
	bookings := []BookingRange{}
	if raw == "" {
		return bookings
	}

	unfolded := foldedLine.ReplaceAllString(raw, "")

	for _, chunk := range eventBoundary.Split(unfolded, -1) {
		if !beginEvent.MatchString(chunk) {
			continue
		}

		start, ok := matchDay(dtStart, chunk)
		if !ok {
			continue
		}
		end, ok := matchDay(dtEnd, chunk)
		if !ok {
			// No usable DTEND: a single all-day event per ICS semantics.
			end = start.AddDate(0, 0, 1)
		}

		if !start.Before(end) {
			continue
		}
		bookings = append(bookings, BookingRange{Start: start, End: end})
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].Start.Before(bookings[j].Start)
	})
	return bookings
}

// matchDay extracts a property value with re and normalizes it to a UTC
// calendar day, dropping any time-of-day component.
func matchDay(re *regexp.Regexp, chunk string) (time.Time, bool) {
	m := re.FindStringSubmatch(chunk)
	if m == nil {
		return time.Time{}, false
	}
	v := m[1]
	if len(v) < 8 {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("20060102", v[:8], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
