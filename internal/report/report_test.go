package report_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/UnknownOlympus/homebound/internal/report"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureEvents points the global hub at a client that records events instead of sending them.
func captureEvents(t *testing.T) func() []*sentry.Event {
	t.Helper()

	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	err := sentry.Init(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)

	return func() []*sentry.Event {
		mu.Lock()
		defer mu.Unlock()
		return events
	}
}

func TestSetupSentry(t *testing.T) {
	t.Run("Valid DSN", func(t *testing.T) {
		require.NoError(t, report.SetupSentry("https://public@sentry.example.com/1", "local", "test"))
		report.FlushSentry()
	})

	t.Run("Empty DSN disables reporting", func(t *testing.T) {
		require.NoError(t, report.SetupSentry("", "local", "test"))
	})

	t.Run("Invalid DSN", func(t *testing.T) {
		require.Error(t, report.SetupSentry("not a dsn", "local", "test"))
	})
}

func TestReportError(t *testing.T) {
	events := captureEvents(t)

	report.ReportError(nil)
	report.ReportError(errors.New("boom"))
	report.ReportError(errors.New("fatal boom"), sentry.LevelFatal)

	captured := events()
	require.Len(t, captured, 2)
	assert.Equal(t, sentry.LevelError, captured[0].Level)
	assert.Equal(t, sentry.LevelFatal, captured[1].Level)
}

func TestReportErrorWithOptions(t *testing.T) {
	events := captureEvents(t)

	report.ReportErrorWithOptions(nil, report.Options{})
	report.ReportErrorWithOptions(errors.New("compare panicked"), report.Options{
		Tags:         map[string]string{"component": "trip"},
		ExtraContext: map[string]interface{}{"origin": "127.0,37.5"},
		Level:        sentry.LevelWarning,
	})

	captured := events()
	require.Len(t, captured, 1)
	assert.Equal(t, "trip", captured[0].Tags["component"])
	assert.Equal(t, sentry.LevelWarning, captured[0].Level)
	assert.Contains(t, captured[0].Contexts, "extra")
}

func TestMiddleware(t *testing.T) {
	_ = captureEvents(t)

	var hubAttached bool
	handler := report.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hubAttached = sentry.GetHubFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, hubAttached)
}
