package domain

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "15:04:05"

// Default daylight window.
const (
	DefaultDayStart = "08:30:00"
	DefaultDayEnd   = "18:30:00"
)

// TimeWindow is a wall-clock range within a day, inclusive at both ends.
type TimeWindow struct {
	Start time.Duration // offset from midnight
	End   time.Duration
}

// NewTimeWindow parses HH:MM:SS bounds.
func NewTimeWindow(start, end string) (TimeWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}
	if e < s {
		return TimeWindow{}, fmt.Errorf("window end %s before start %s", end, start)
	}
	return TimeWindow{Start: s, End: e}, nil
}

// ParseTimeWindow parses "HH:MM:SS-HH:MM:SS".
func ParseTimeWindow(s string) (TimeWindow, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return TimeWindow{}, fmt.Errorf("window %q: want START-END", s)
	}
	return NewTimeWindow(strings.TrimSpace(start), strings.TrimSpace(end))
}

// DefaultTimeWindow returns the 08:30–18:30 daylight window.
func DefaultTimeWindow() TimeWindow {
	w, _ := NewTimeWindow(DefaultDayStart, DefaultDayEnd)
	return w
}

// Contains reports whether the TimeLayout wall clock falls inside the window.
// Unparsable values are outside.
func (w TimeWindow) Contains(wallClock string) bool {
	_, clockPart, ok := strings.Cut(wallClock, " ")
	if !ok {
		return false
	}
	d, err := parseClock(clockPart)
	if err != nil {
		return false
	}
	return d >= w.Start && d <= w.End
}

// Filter returns the rows whose time falls inside the window.
func (w TimeWindow) Filter(rows []ProcessedSample) []ProcessedSample {
	out := make([]ProcessedSample, 0, len(rows))
	for _, r := range rows {
		if w.Contains(r.Time) {
			out = append(out, r)
		}
	}
	return out
}

func (w TimeWindow) String() string {
	return formatClock(w.Start) + "-" + formatClock(w.End)
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

func formatClock(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format(clockLayout)
}
