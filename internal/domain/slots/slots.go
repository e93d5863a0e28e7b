// Package slots holds the pure time-slot arithmetic behind booking and
// blocking: whether a requested window fits a studio's published
// availability, and which dates in a range can be blocked at all.
package slots

import (
	"fmt"
	"iter"
	"time"
)

const minutesPerDay = 24 * 60

// ParseClock converts a wall-clock "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid clock value %q: out of range", s)
	}
	return hh*60 + mm, nil
}

// IsDayAllowed reports whether the date's weekday is one of the availability's
// allowed days.
func (a Availability) IsDayAllowed(date time.Time) bool {
	day := date.Weekday().String()
	for _, d := range a.Days {
		if d == day {
			return true
		}
	}
	return false
}

// FitsWindow reports whether a booking starting at startTime and lasting the
// given number of hours is contained in at least one opening interval.
// A window whose end exceeds the interval's closing time does not fit; it is
// never clamped to the interval.
func (a Availability) FitsWindow(startTime string, hours int) (bool, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return false, err
	}
	if hours <= 0 {
		return false, fmt.Errorf("invalid duration: %d hours", hours)
	}

	end := start + hours*60
	if end > minutesPerDay {
		return false, nil
	}

	for _, iv := range a.Times {
		open, err := ParseClock(iv.Start)
		if err != nil {
			return false, err
		}
		close, err := ParseClock(iv.End)
		if err != nil {
			return false, err
		}
		if start >= open && end <= close {
			return true, nil
		}
	}
	return false, nil
}

// OpeningTime returns the earliest interval start, used when a whole-day
// block should begin at opening.
func (a Availability) OpeningTime() (string, error) {
	if len(a.Times) == 0 {
		return "", fmt.Errorf("availability has no opening intervals")
	}

	earliest := a.Times[0].Start
	earliestMin, err := ParseClock(earliest)
	if err != nil {
		return "", err
	}
	for _, iv := range a.Times[1:] {
		m, err := ParseClock(iv.Start)
		if err != nil {
			return "", err
		}
		if m < earliestMin {
			earliest, earliestMin = iv.Start, m
		}
	}
	return earliest, nil
}

// EntireDayHours computes how many whole hours cover the full published
// window, rounding up. Blocking "the entire day" must cover a 09:00-17:30
// window with 9 hours, not 8.
func (a Availability) EntireDayHours() (int, error) {
	if len(a.Times) == 0 {
		return 0, fmt.Errorf("availability has no opening intervals")
	}

	opening := minutesPerDay
	closing := 0
	for _, iv := range a.Times {
		open, err := ParseClock(iv.Start)
		if err != nil {
			return 0, err
		}
		close, err := ParseClock(iv.End)
		if err != nil {
			return 0, err
		}
		if open < opening {
			opening = open
		}
		if close > closing {
			closing = close
		}
	}
	if closing <= opening {
		return 0, fmt.Errorf("availability closes before it opens")
	}

	return (closing - opening + 59) / 60, nil
}

// EnumerateRange yields each date between start and end (inclusive, date
// precision) whose weekday is allowed. Reversed bounds are swapped rather
// than rejected, tolerating a backwards manual selection. An empty day set
// yields nothing; callers must treat that as "no available days" instead of
// silently blocking nothing.
//
// The sequence is a pure function of its inputs and can be ranged over more
// than once.
func (a Availability) EnumerateRange(start, end time.Time) iter.Seq[time.Time] {
	start = DateOnly(start)
	end = DateOnly(end)
	if start.After(end) {
		start, end = end, start
	}

	return func(yield func(time.Time) bool) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !a.IsDayAllowed(d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// DateOnly truncates a timestamp to its calendar date, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AtClock combines a calendar date with a wall-clock "HH:MM" value.
func AtClock(date time.Time, clock string) (time.Time, error) {
	m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(date).Add(time.Duration(m) * time.Minute), nil
}
