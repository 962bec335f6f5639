package types

// WeatherField identifies an hourly parameter of the upstream weather archive.
// The string values are the archive's query parameter names.
type WeatherField string

const (
	FieldTemperature   WeatherField = "temperature_2m"
	FieldHumidity      WeatherField = "relative_humidity_2m"
	FieldPrecipitation WeatherField = "precipitation"
	FieldWindSpeed     WeatherField = "wind_speed_10m"
	FieldCloudCover    WeatherField = "cloud_cover"
	FieldPressure      WeatherField = "surface_pressure"
)

// AllWeatherFields is the complete set of fields a data source may reference.
// Used by validators to reject unknown parameters before they reach the
// archive client.
var AllWeatherFields = []WeatherField{
	FieldTemperature,
	FieldHumidity,
	FieldPrecipitation,
	FieldWindSpeed,
	FieldCloudCover,
	FieldPressure,
}

// IsValid reports whether f is a known archive parameter.
func (f WeatherField) IsValid() bool {
	for _, known := range AllWeatherFields {
		if f == known {
			return true
		}
	}
	return false
}

// RuleOperator defines comparison operators for color rule evaluation.
type RuleOperator string

const (
	OpEqual         RuleOperator = "="
	OpLessThan      RuleOperator = "<"
	OpGreaterThan   RuleOperator = ">"
	OpLessThanEq    RuleOperator = "<="
	OpGreaterThanEq RuleOperator = ">="
)

// IsValid reports whether op is a supported comparison operator.
func (op RuleOperator) IsValid() bool {
	switch op {
	case OpEqual, OpLessThan, OpGreaterThan, OpLessThanEq, OpGreaterThanEq:
		return true
	}
	return false
}

// SelectionMode determines how the timeline slider position maps to a value:
// a single hour lookup or an averaged hour range.
type SelectionMode string

const (
	ModeSingle SelectionMode = "single"
	ModeRange  SelectionMode = "range"
)

// Timeline window geometry. The analysis window is a fixed 30x24-hour grid
// centered on the selection's base date: offset 0 is 15 days before the base
// date at hour 0, offset 360 is the base date at hour 0, offset 719 is the
// final hour, 14 days after.
const (
	WindowHours     = 720
	WindowDaysBack  = 15
	WindowDaysAhead = 15
	MaxHourOffset   = WindowHours - 1
)

// Polygon vertex count bounds, enforced on create and vertex mutation.
// The drawing gesture enforces the lower bound upstream as well.
const (
	MinPolygonVertices = 3
	MaxPolygonVertices = 12
)
