package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyshade/internal/api/handlers"
	"polyshade/internal/cache"
	"polyshade/internal/config"
	"polyshade/internal/core"
	"polyshade/internal/external"
	"polyshade/internal/overlay"
	"polyshade/internal/store"
	"polyshade/internal/weather"
)

// buildTestServer wires the full production dependency graph against an
// httptest archive and a temp snapshot path.
func buildTestServer(t *testing.T, archiveURL string) *core.Server {
	t.Helper()
	t.Setenv("STATE_SNAPSHOT_PATH", filepath.Join(t.TempDir(), "state.json.zst"))

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))

	st := store.New(cfg.State.SnapshotPath, logger)
	baseClient := external.NewBaseClient(
		&http.Client{Timeout: cfg.Archive.HTTPTimeout},
		"weather-archive-test",
		external.RetryPolicy{MaxRetries: 0},
		"polyshade-test",
		external.WithSleepFunc(func(time.Duration) {}),
	)
	archive := weather.NewArchiveClient(baseClient, archiveURL, logger)
	svc := overlay.NewService(st, cache.New(), archive, logger)

	srv, err := core.NewServer(cfg, logger)
	require.NoError(t, err)
	srv.HealthCheck = func(ctx context.Context) map[string]any {
		return map[string]any{"polygons": len(st.ListPolygons())}
	}

	polygonHandler := handlers.NewPolygonHandler(st, svc, srv.Validator, logger)
	dataSourceHandler := handlers.NewDataSourceHandler(st, svc, srv.Validator, logger)
	timelineHandler := handlers.NewTimelineHandler(st, svc, srv.Validator, logger)
	overlayHandler := handlers.NewOverlayHandler(st, svc, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		polygonHandler.RegisterRoutes(r)
		dataSourceHandler.RegisterRoutes(r)
		timelineHandler.RegisterRoutes(r)
		overlayHandler.RegisterRoutes(r)
	})
	srv.MountRoutes()
	return srv
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestWiredServer_HealthAndOverlay(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	srv := buildTestServer(t, upstream.URL)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"polygons":0`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/overlay", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"selection"`)
}

func TestNewLogger_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		assert.NotNil(t, newLogger(level))
	}
}
