// Package session restricts candle series to the daily trading session of an exchange.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

const day = 24 * time.Hour

// TimeOfDay is a wall-clock offset from midnight, in the range [0, 24h).
type TimeOfDay time.Duration

// NewTimeOfDay builds a TimeOfDay from hour, minute and second components.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, errors.Newf(errors.ErrCodeInvalidSessionWindow, "time of day out of range: %02d:%02d:%02d", hour, minute, second)
	}

	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second

	return TimeOfDay(d), nil
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Newf(errors.ErrCodeInvalidSessionWindow, "invalid time of day %q, expected HH:MM or HH:MM:SS", s)
	}

	values := make([]int, 3)

	for i, p := range parts {
		if len(p) != 2 {
			return 0, errors.Newf(errors.ErrCodeInvalidSessionWindow, "invalid time of day %q, expected two digit fields", s)
		}

		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodeInvalidSessionWindow, err, "invalid time of day %q", s)
		}

		values[i] = v
	}

	return NewTimeOfDay(values[0], values[1], values[2])
}

// Of returns the time-of-day component of t in t's own location, to nanosecond precision.
func Of(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(t.Nanosecond())

	return TimeOfDay(d)
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

// String formats the value as HH:MM, or HH:MM:SS when seconds are set.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%02d:%02d", h, m)
}

// Window is a daily session with inclusive bounds on both ends.
// Overnight sessions are not supported, so Start never exceeds End.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewWindow validates and returns a window.
func NewWindow(start, end TimeOfDay) (Window, error) {
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}

	return w, nil
}

// ParseWindow builds a window from two "HH:MM[:SS]" strings, e.g. ParseWindow("09:15", "15:30").
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}

	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}

	return NewWindow(s, e)
}

// MustParseWindow is ParseWindow for constant inputs; it panics on error.
func MustParseWindow(start, end string) Window {
	w, err := ParseWindow(start, end)
	if err != nil {
		panic(err)
	}

	return w
}

// Validate checks both bounds lie within one day and Start <= End.
func (w Window) Validate() error {
	if w.Start < 0 || time.Duration(w.Start) >= day || w.End < 0 || time.Duration(w.End) >= day {
		return errors.Newf(errors.ErrCodeInvalidSessionWindow, "session bounds must lie within a single day: %s-%s", w.Start, w.End)
	}

	if w.Start > w.End {
		return errors.Newf(errors.ErrCodeInvalidSessionWindow, "session start %s is after end %s", w.Start, w.End)
	}

	return nil
}

// Contains reports whether tod lies within [Start, End].
func (w Window) Contains(tod TimeOfDay) bool {
	return tod >= w.Start && tod <= w.End
}

// String formats the window as "HH:MM-HH:MM".
func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
