// Package weather implements the fetch adapter for the public weather
// archive: it translates a polygon's centroid, analysis window, and field
// into an archive query and normalizes the response into the internal hourly
// series shape. Synthetic fallback generation for failed fetches also lives
// here; deciding WHEN to fall back is the caller's responsibility.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"polyshade/internal/external"
	"polyshade/internal/telemetry"
	"polyshade/internal/timeline"
	"polyshade/internal/types"
)

// archiveTimeLayout is the timestamp format of the archive's hourly time
// axis (minute resolution, no zone designator; values are UTC because every
// query pins timezone=UTC).
const archiveTimeLayout = "2006-01-02T15:04"

// archiveFloor is the earliest date the archive serves.
var archiveFloor = types.NewDate(1940, time.January, 1)

// archiveLagDays is the archive's publication lag: data newer than
// now - archiveLagDays is not yet available.
const archiveLagDays = 5

// ValidDateWindow reports whether a date can be requested from the archive:
// 1940-01-01 <= date <= now - 5 days. Dates outside this window must be
// rejected before any network call is made.
func ValidDateWindow(date types.Date, now time.Time) bool {
	if date.Before(archiveFloor.Time) {
		return false
	}
	latest := types.DateOf(now.AddDate(0, 0, -archiveLagDays))
	return !date.After(latest.Time)
}

// ArchiveClient fetches hourly series from the weather archive HTTP API.
// All requests go through the resilient BaseClient (circuit breaker, retry,
// backoff).
type ArchiveClient struct {
	base    *external.BaseClient
	baseURL string
	logger  *slog.Logger
	nowFn   func() time.Time // injected for date-window tests
}

// NewArchiveClient creates an archive client. baseURL is the full endpoint
// URL without query parameters.
func NewArchiveClient(base *external.BaseClient, baseURL string, logger *slog.Logger) *ArchiveClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveClient{
		base:    base,
		baseURL: baseURL,
		logger:  logger,
		nowFn:   time.Now,
	}
}

// archiveResponse mirrors the archive's JSON shape: an hourly object with a
// time array and one value array per requested field. Values are pointers
// because the archive emits null for missing hours.
type archiveResponse struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
}

// FetchSeries retrieves the hourly series for the field at the given
// location over the analysis window. The returned series is ascending with
// one entry per hour; hours the archive reports as null are skipped.
//
// The date window is pre-validated: a window extending outside
// [1940-01-01, now-5d] returns a validation error without touching the
// network.
func (c *ArchiveClient) FetchSeries(
	ctx context.Context,
	loc types.LatLng,
	w timeline.Window,
	field types.WeatherField,
) ([]types.TimeSeriesPoint, error) {
	now := c.nowFn()
	for _, d := range []types.Date{w.StartDate(), w.EndDate()} {
		if !ValidDateWindow(d, now) {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeValidationDateWindow,
				"requested window is outside the archive's available range",
				nil,
				map[string]any{"date": d.String()},
			)
		}
	}

	reqURL, err := c.buildURL(loc, w, field)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "building archive URL", err)
	}

	start := time.Now()
	series, err := c.fetch(ctx, reqURL, field)
	telemetry.ObserveArchiveFetch(string(field), err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "archive fetch complete",
		"field", string(field),
		"points", len(series),
		"window_start", w.StartDate().String(),
	)
	return series, nil
}

// buildURL assembles the archive query: latitude, longitude, start_date,
// end_date, hourly field name, timezone=UTC.
func (c *ArchiveClient) buildURL(loc types.LatLng, w timeline.Window, field types.WeatherField) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%.4f", loc.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", loc.Lng))
	q.Set("start_date", w.StartDate().String())
	q.Set("end_date", w.EndDate().String())
	q.Set("hourly", string(field))
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// fetch performs the HTTP round trip and normalizes the response.
func (c *ArchiveClient) fetch(ctx context.Context, reqURL string, field types.WeatherField) ([]types.TimeSeriesPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "creating archive request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamArchive,
			fmt.Sprintf("archive returned status %d", resp.StatusCode),
			nil,
			map[string]any{"body": string(body)},
		)
	}

	var decoded archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamArchive, "decoding archive response", err)
	}

	return zipHourly(decoded, field)
}

// zipHourly pairs the hourly time axis with the field's value array
// positionally. Null values (missing hours) are skipped; a length mismatch
// between the two arrays is a corrupt response.
func zipHourly(decoded archiveResponse, field types.WeatherField) ([]types.TimeSeriesPoint, error) {
	rawTimes, ok := decoded.Hourly["time"]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeUpstreamArchive, "archive response has no hourly time axis", nil)
	}
	rawValues, ok := decoded.Hourly[string(field)]
	if !ok {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamArchive,
			"archive response is missing the requested field",
			nil,
			map[string]any{"field": string(field)},
		)
	}

	var timeAxis []string
	if err := json.Unmarshal(rawTimes, &timeAxis); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamArchive, "decoding archive time axis", err)
	}
	var values []*float64
	if err := json.Unmarshal(rawValues, &values); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamArchive, "decoding archive values", err)
	}

	if len(timeAxis) != len(values) {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamArchive,
			"archive time and value arrays differ in length",
			nil,
			map[string]any{"times": len(timeAxis), "values": len(values)},
		)
	}

	series := make([]types.TimeSeriesPoint, 0, len(values))
	for i, raw := range timeAxis {
		if values[i] == nil {
			continue
		}
		ts, err := time.Parse(archiveTimeLayout, raw)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeUpstreamArchive, "parsing archive timestamp", err)
		}
		series = append(series, types.TimeSeriesPoint{
			Timestamp: ts.UTC(),
			Value:     *values[i],
		})
	}

	return series, nil
}
