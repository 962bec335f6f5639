package types

import "fmt"

// Validate checks polygon structural invariants: vertex count within
// [MinPolygonVertices, MaxPolygonVertices] and coordinates within range.
// A missing data source assignment is allowed at the type level; handlers
// reject it where an assignment is required.
func (p *Polygon) Validate() error {
	if n := len(p.Vertices); n < MinPolygonVertices || n > MaxPolygonVertices {
		return NewAppErrorWithDetails(
			ErrCodeValidationVertexCount,
			fmt.Sprintf("polygon must have between %d and %d vertices", MinPolygonVertices, MaxPolygonVertices),
			nil,
			map[string]any{"vertex_count": n},
		)
	}
	for i, v := range p.Vertices {
		if v.Lat < -90 || v.Lat > 90 {
			return NewAppErrorWithDetails(
				ErrCodeValidationInvalidLat,
				"latitude must be between -90 and 90",
				nil,
				map[string]any{"vertex": i, "lat": v.Lat},
			)
		}
		if v.Lng < -180 || v.Lng > 180 {
			return NewAppErrorWithDetails(
				ErrCodeValidationInvalidLng,
				"longitude must be between -180 and 180",
				nil,
				map[string]any{"vertex": i, "lng": v.Lng},
			)
		}
	}
	return nil
}

// Validate checks that the data source references a known weather field and
// that every rule carries a supported operator and a non-empty color token.
func (d *DataSource) Validate() error {
	if !d.Field.IsValid() {
		return NewAppErrorWithDetails(
			ErrCodeValidationInvalidField,
			"unknown weather field",
			nil,
			map[string]any{"field": string(d.Field)},
		)
	}
	for i, rule := range d.Rules {
		if !rule.Operator.IsValid() {
			return NewAppErrorWithDetails(
				ErrCodeValidationInvalidOperator,
				"unsupported rule operator",
				nil,
				map[string]any{"rule": i, "operator": string(rule.Operator)},
			)
		}
		if rule.Color == "" {
			return NewAppErrorWithDetails(
				ErrCodeValidationMissingField,
				"rule color must not be empty",
				nil,
				map[string]any{"rule": i},
			)
		}
	}
	return nil
}

// Validate checks the timeline selection invariants: offsets within
// [0, MaxHourOffset] and, for range mode, start <= end.
func (s *TimelineSelection) Validate() error {
	if s.BaseDate.IsZero() {
		return NewAppError(ErrCodeValidationMissingField, "base date is required", nil)
	}
	switch s.Mode {
	case ModeSingle:
		if s.Offset < 0 || s.Offset > MaxHourOffset {
			return NewAppErrorWithDetails(
				ErrCodeValidationInvalidOffset,
				fmt.Sprintf("hour offset must be between 0 and %d", MaxHourOffset),
				nil,
				map[string]any{"offset": s.Offset},
			)
		}
	case ModeRange:
		if s.Range == nil {
			return NewAppError(ErrCodeValidationInvalidRange, "range mode requires a start/end pair", nil)
		}
		if s.Range.Start < 0 || s.Range.End > MaxHourOffset {
			return NewAppErrorWithDetails(
				ErrCodeValidationInvalidRange,
				fmt.Sprintf("range offsets must be between 0 and %d", MaxHourOffset),
				nil,
				map[string]any{"start": s.Range.Start, "end": s.Range.End},
			)
		}
		if s.Range.Start > s.Range.End {
			return NewAppErrorWithDetails(
				ErrCodeValidationInvalidRange,
				"range start must not exceed range end",
				nil,
				map[string]any{"start": s.Range.Start, "end": s.Range.End},
			)
		}
	default:
		return NewAppErrorWithDetails(
			ErrCodeValidationMissingField,
			"selection mode must be single or range",
			nil,
			map[string]any{"mode": string(s.Mode)},
		)
	}
	return nil
}
