package domain

import (
	"fmt"
	"time"
)

// Window is a half-open reporting interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate rejects structurally invalid windows. Getting here with a bad
// window is a programmer error, so callers surface it rather than degrade.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: zero boundary", ErrInvalidWindow)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window. Start is inclusive,
// End exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// String renders the window for chart captions and log lines.
func (w Window) String() string {
	const layout = "02 January 2006 15:04"
	return w.Start.UTC().Format(layout) + " until " + w.End.UTC().Format(layout)
}

// RollingMonth returns the one-calendar-month window ending at now,
// [now - 1 month, now).
func RollingMonth(now time.Time) Window {
	return Window{Start: now.AddDate(0, -1, 0), End: now}
}

// CurrentWindow returns the rolling month ending at the injected clock's
// present. Freeze the clock via SetClock for reproducible reports.
func CurrentWindow() Window {
	return RollingMonth(clock.Now().UTC())
}
