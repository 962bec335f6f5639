package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayout is the wire format for civil dates (archive query params,
// timeline base date).
const dateLayout = "2006-01-02"

// Date is a civil date (no time-of-day component) that marshals to and from
// "YYYY-MM-DD". The zero value is invalid and rejected by Validate.
type Date struct {
	time.Time
}

// NewDate constructs a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{t.UTC()}, nil
}

// String returns the date in "YYYY-MM-DD" form.
func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LatLng is a geographic coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Bounds is an axis-aligned bounding box over latitude and longitude.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// TimeSeriesPoint is a single hourly observation. Timestamps are UTC at hour
// resolution; series are ordered ascending with one entry per hour of the
// fetch window.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ColorRule maps a threshold comparison to a display color. Rules within a
// data source form an unordered set but are always evaluated in ascending
// threshold order; the first passing rule wins.
type ColorRule struct {
	Operator  RuleOperator `json:"operator" validate:"required"`
	Threshold float64      `json:"threshold"`
	Color     string       `json:"color" validate:"required,max=32"`
}

// DataSource is a named weather parameter plus its ordered color rules.
type DataSource struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Field     WeatherField `json:"field"`
	Rules     []ColorRule  `json:"rules"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Polygon is the core domain entity: a user-drawn region assigned to a data
// source. Centroid and bounding box are derived from the current vertices on
// demand and never stored or mutated independently.
type Polygon struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Vertices     []LatLng  `json:"vertices"`
	DataSourceID string    `json:"data_source_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OffsetRange is an inclusive [Start, End] pair of hour offsets into the
// analysis window.
type OffsetRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TimelineSelection captures the timeline slider state: a base date anchoring
// the 720-hour window and either a single hour offset or an inclusive offset
// range.
type TimelineSelection struct {
	Mode     SelectionMode `json:"mode"`
	Offset   int           `json:"offset"`
	Range    *OffsetRange  `json:"range,omitempty"`
	BaseDate Date          `json:"base_date"`
}
