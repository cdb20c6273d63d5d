// Package window decides whether the current wall-clock time falls inside one
// of the configured posting intervals.
package window

import (
	"fmt"
	"time"
)

// Window is a non-wrapping time-of-day interval, inclusive on both ends.
// Windows crossing midnight are rejected at parse time.
type Window struct {
	start int // minutes since midnight
	end   int
}

// Parse builds a Window from "HH:MM" bounds.
func Parse(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, err
	}
	if s > e {
		return Window{}, fmt.Errorf("window start %s is after end %s", start, end)
	}
	return Window{start: s, end: e}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("bad clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// InAny reports whether t's time of day falls inside any of the windows.
// An empty window set means posting is always allowed.
func InAny(windows []Window, t time.Time) bool {
	if len(windows) == 0 {
		return true
	}
	m := t.Hour()*60 + t.Minute()
	for _, w := range windows {
		if m >= w.start && m <= w.end {
			return true
		}
	}
	return false
}
