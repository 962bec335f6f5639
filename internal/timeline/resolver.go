package timeline

import (
	"time"

	"polyshade/internal/types"
)

// ResolveValue computes the representative scalar of an hourly series for the
// given timeline selection. It is a pure function over its arguments and
// never fails: the second return value is false when no value can be derived
// (empty series, no entry at the selected hour, or an empty range).
//
// Single mode looks up the series entry matching the selected hour exactly
// (hour granularity, sub-hour precision ignored). Range mode averages the
// entries whose timestamps fall inside the selected hour range; offsets are
// clamped into the window before conversion. Matching by timestamp rather
// than by array position keeps both modes consistent when a series does not
// span the full 720-hour grid, e.g. fallback data of a different length.
func ResolveValue(series []types.TimeSeriesPoint, sel types.TimelineSelection) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}

	w := NewWindow(sel.BaseDate)

	switch sel.Mode {
	case types.ModeSingle:
		return resolveSingle(series, w, sel.Offset)
	case types.ModeRange:
		if sel.Range == nil {
			return 0, false
		}
		return resolveRange(series, w, sel.Range.Start, sel.Range.End)
	default:
		return 0, false
	}
}

// resolveSingle finds the entry whose timestamp matches the target instant at
// hour granularity.
func resolveSingle(series []types.TimeSeriesPoint, w Window, offset int) (float64, bool) {
	target := w.OffsetTime(ClampOffset(offset))
	for _, pt := range series {
		if hourOf(pt.Timestamp).Equal(target) {
			return pt.Value, true
		}
	}
	return 0, false
}

// resolveRange averages the entries inside [start, end] inclusive.
func resolveRange(series []types.TimeSeriesPoint, w Window, start, end int) (float64, bool) {
	from := w.OffsetTime(ClampOffset(start))
	to := w.OffsetTime(ClampOffset(end))

	var sum float64
	var count int
	for _, pt := range series {
		h := hourOf(pt.Timestamp)
		if h.Before(from) || h.After(to) {
			continue
		}
		sum += pt.Value
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// hourOf truncates a timestamp to its UTC hour.
func hourOf(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
