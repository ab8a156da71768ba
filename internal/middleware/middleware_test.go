package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revpulse/internal/config"
	apierrors "revpulse/internal/errors"
	"revpulse/internal/infrastructure"
	"revpulse/internal/shared/testutil"
	api "revpulse/pkg/contracts/api/v1"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
	}{
		{"generated", ""},
		{"propagated", "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenID, seenTrace string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenID = GetRequestID(r.Context())
				seenTrace = infrastructure.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seenID)
			assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
			assert.Equal(t, seenID, seenTrace)
			if tt.inbound != "" {
				assert.Equal(t, tt.inbound, seenID)
			}
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  slog.Level
	}{
		{"success", http.StatusOK, slog.LevelInfo},
		{"client error", http.StatusNotFound, slog.LevelWarn},
		{"server error", http.StatusInternalServerError, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := RequestID(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/report", nil))

			testutil.AssertLogContains(t, logs, tt.level, "request completed")
			testutil.AssertLogAttr(t, logs, "status", int64(tt.status))
			testutil.AssertLogAttr(t, logs, "path", "/api/report")
		})
	}
}

func TestRecoverer(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := Recoverer(apierrors.NewErrorHandler(logger, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("aggregation blew up")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/")
}

func TestRateLimiter(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	limiter := NewRateLimiter(0.5, 2, apierrors.NewErrorHandler(logger, false), logger)
	h := limiter.Handler(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "2", rec.Header().Get("Retry-After"))
			assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "rate limit exceeded")
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Timeout(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	ok = true
	Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}})(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantAllowed bool
		wantStatus  int
	}{
		{"allowed origin", http.MethodGet, "http://localhost:8080", false, true, http.StatusOK},
		{"foreign origin", http.MethodGet, "http://evil.example", false, false, http.StatusOK},
		{"preflight", http.MethodOptions, "http://localhost:8080", true, true, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/report", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantAllowed {
				assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, OriginAllowed(nil, "http://anything"))
	assert.True(t, OriginAllowed([]string{"*"}, "http://anything"))
	assert.True(t, OriginAllowed([]string{"http://LOCALHOST:8080"}, "http://localhost:8080"))
	assert.False(t, OriginAllowed([]string{"http://localhost:8080"}, "http://localhost:9090"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddleware_RecordsRoutePattern(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		ServiceName:    "revpulse-test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		MetricExporter: "prometheus",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.NewMetrics(providers.Meter)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(NewOTelMiddleware(providers, metrics).Handler)
	r.Get("/api/export/{format}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	scrape := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()

	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/api/export/{format}"`)
	assert.NotContains(t, body, `route="/api/export/csv"`)
}

func TestValidator_DecodeAndValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantStatus int
		wantField  string
	}{
		{name: "valid", body: `{"locations":["Aylesbury"],"periods":null}`},
		{name: "empty arrays are valid", body: `{"locations":[],"items":[]}`},
		{name: "empty body", body: ``, wantErr: true, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"items":[`, wantErr: true, wantStatus: http.StatusBadRequest},
		{name: "duplicate", body: `{"periods":["June","June"]}`, wantErr: true, wantStatus: http.StatusBadRequest, wantField: "periods"},
		{name: "blank label", body: `{"items":["Gym",""]}`, wantErr: true, wantStatus: http.StatusBadRequest, wantField: "items[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(tt.body))
			var dst api.FilterRequest
			err := v.DecodeAndValidate(req, &dst)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			apiErr, ok := err.(*apierrors.APIError)
			require.True(t, ok, "want *APIError, got %T", err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			if tt.wantField != "" {
				details, ok := apiErr.Details.(apierrors.ValidationErrors)
				require.True(t, ok)
				require.NotEmpty(t, details.Errors)
				assert.Equal(t, tt.wantField, details.Errors[0].Field)
			}
		})
	}
}

func TestValidator_PreservesNullVersusEmpty(t *testing.T) {
	v := NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"locations":null,"items":[]}`))

	var dst api.FilterRequest
	require.NoError(t, v.DecodeAndValidate(req, &dst))

	filter := dst.ToFilterState()
	assert.Nil(t, filter.Locations)
	assert.Nil(t, filter.Periods)
	assert.NotNil(t, filter.Items)
	assert.Empty(t, filter.Items)
}

func TestContentTypeValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := ContentTypeValidator(apierrors.NewErrorHandler(logger, false), "application/json")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`a=b`))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
