// Package timeline implements the temporal core of the dashboard: the fixed
// 720-hour analysis window anchored on a base date, and value resolution of a
// cached hourly series against the current timeline selection.
package timeline

import (
	"time"

	"polyshade/internal/types"
)

// Window is the fixed 30x24-hour analysis grid centered on a base date.
// Offset 0 is 15 days before the base date at hour 0; offset 360 is the base
// date at hour 0; offset 719 is the final hour, late on the 14th day after.
type Window struct {
	start time.Time
}

// NewWindow anchors the analysis window on the given base date.
func NewWindow(base types.Date) Window {
	return Window{start: base.Time.AddDate(0, 0, -types.WindowDaysBack)}
}

// Start returns the first instant of the window (offset 0).
func (w Window) Start() time.Time {
	return w.start
}

// OffsetTime returns the absolute instant for an hour offset into the window.
// The offset is not range-checked; use ClampOffset or selection validation
// first.
func (w Window) OffsetTime(offset int) time.Time {
	return w.start.Add(time.Duration(offset) * time.Hour)
}

// StartDate returns the first calendar date of the window, used as the
// archive query's start_date.
func (w Window) StartDate() types.Date {
	return types.DateOf(w.start)
}

// EndDate returns the last calendar date of the window, used as the archive
// query's end_date.
func (w Window) EndDate() types.Date {
	return types.DateOf(w.OffsetTime(types.MaxHourOffset))
}

// ClampOffset clamps an hour offset into [0, MaxHourOffset].
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > types.MaxHourOffset {
		return types.MaxHourOffset
	}
	return offset
}
