package weather

import (
	"hash/fnv"
	"math"

	"polyshade/internal/timeline"
	"polyshade/internal/types"
)

// fieldProfile shapes the synthetic signal for one weather field.
type fieldProfile struct {
	base      float64 // signal midline
	amplitude float64 // daily swing
	min, max  float64 // physical clamp
}

// fallbackProfiles keeps synthetic values in a plausible range per field so
// color rules written for real data still produce a populated overlay.
var fallbackProfiles = map[types.WeatherField]fieldProfile{
	types.FieldTemperature:   {base: 18, amplitude: 8, min: -60, max: 60},
	types.FieldHumidity:      {base: 60, amplitude: 25, min: 0, max: 100},
	types.FieldPrecipitation: {base: 0.4, amplitude: 0.6, min: 0, max: 50},
	types.FieldWindSpeed:     {base: 12, amplitude: 8, min: 0, max: 120},
	types.FieldCloudCover:    {base: 50, amplitude: 40, min: 0, max: 100},
	types.FieldPressure:      {base: 1013, amplitude: 9, min: 900, max: 1090},
}

// defaultProfile covers fields without a tuned profile.
var defaultProfile = fieldProfile{base: 10, amplitude: 5, min: -1000, max: 1000}

// FallbackSeries generates a deterministic smooth pseudo-periodic series
// covering the full analysis window, used when the archive fetch fails so
// the overlay stays populated. The signal is seeded by polygon id and field:
// the same polygon always gets the same fallback, and neighboring polygons
// get visibly different ones. Fallback data is non-authoritative; cache
// entries built from it carry the Synthetic flag.
func FallbackSeries(polygonID string, w timeline.Window, field types.WeatherField) []types.TimeSeriesPoint {
	profile, ok := fallbackProfiles[field]
	if !ok {
		profile = defaultProfile
	}

	phase := seedPhase(polygonID, field)
	series := make([]types.TimeSeriesPoint, 0, types.WindowHours)
	for i := 0; i < types.WindowHours; i++ {
		h := float64(i)
		// Daily cycle plus a slow multi-day drift, phase-shifted per polygon.
		daily := math.Sin(2*math.Pi*h/24 + phase)
		drift := 0.35 * math.Sin(2*math.Pi*h/(24*7)+phase/2)
		value := profile.base + profile.amplitude*(daily+drift)
		value = math.Max(profile.min, math.Min(profile.max, value))

		series = append(series, types.TimeSeriesPoint{
			Timestamp: w.OffsetTime(i),
			Value:     value,
		})
	}
	return series
}

// seedPhase derives a stable phase in [0, 2π) from the polygon id and field.
func seedPhase(polygonID string, field types.WeatherField) float64 {
	h := fnv.New64a()
	h.Write([]byte(polygonID))
	h.Write([]byte{0})
	h.Write([]byte(field))
	return 2 * math.Pi * float64(h.Sum64()%1000) / 1000
}
