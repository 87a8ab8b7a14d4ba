package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/fleet/internal/domain"
	"github.com/DukeRupert/fleet/internal/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubInspections struct {
	deadline bool
}

func (s *stubInspections) Create(ctx context.Context, input domain.InspectionInput) (*domain.InspectionRecord, error) {
	_, s.deadline = ctx.Deadline()
	return nil, domain.Invalid("inspection.create", "plate number is required")
}

func (s *stubInspections) Update(context.Context, uuid.UUID, domain.InspectionInput) (*domain.InspectionRecord, error) {
	return nil, domain.NotFound("inspection.update", "inspection", "x")
}

func (s *stubInspections) GetByID(context.Context, uuid.UUID) (*domain.InspectionRecord, error) {
	return nil, domain.NotFound("inspection.get", "inspection", "x")
}

func (s *stubInspections) ListByPlate(context.Context, string) ([]domain.InspectionRecord, error) {
	return nil, nil
}

func (s *stubInspections) List(context.Context) ([]domain.InspectionRecord, error) {
	return nil, nil
}

func (s *stubInspections) Delete(context.Context, uuid.UUID) error {
	return domain.NotFound("inspection.delete", "inspection", "x")
}

type stubVehicles struct{}

func (stubVehicles) GetByPlate(context.Context, string) (*domain.VehicleFleetRecord, error) {
	return nil, domain.NotFound("vehicle.get", "vehicle", "x")
}

func newTestRouter(t *testing.T, dbErr error, limiter *middleware.RateLimiter) (http.Handler, *stubInspections) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inspections := &stubInspections{}
	return newRouter(routerDeps{
		logger:            logger,
		db:                stubPinger{err: dbErr},
		inspectionService: inspections,
		vehicleService:    stubVehicles{},
		metricsAuth:       middleware.NewMetricsAuthMiddleware("prom", "secret", logger),
		writeLimiter:      limiter,
		requestTimeout:    5 * time.Second,
	}), inspections
}

func TestRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{"GET", "/health", "", http.StatusOK},
		{"GET", "/ready", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusUnauthorized},
		{"GET", "/api/inspections", "", http.StatusOK},
		{"POST", "/api/inspections", `{}`, http.StatusBadRequest},
		{"GET", "/api/inspections/" + uuid.NewString(), "", http.StatusNotFound},
		{"PUT", "/api/inspections/" + uuid.NewString(), `{}`, http.StatusNotFound},
		{"DELETE", "/api/inspections/" + uuid.NewString(), "", http.StatusNotFound},
		{"GET", "/api/vehicles/ABC123", "", http.StatusNotFound},
		{"PATCH", "/api/inspections", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_MetricsWithCredentials(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fleet_http_requests_in_flight")
}

func TestRouter_ReadyFailsWithoutDatabase(t *testing.T) {
	router, _ := newTestRouter(t, errors.New("connection refused"), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_AppliesTimeoutAndSecurityHeaders(t *testing.T) {
	router, inspections := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/inspections", strings.NewReader(`{}`)))

	assert.True(t, inspections.deadline, "request context should carry a deadline")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_WriteLimiter(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	router, _ := newTestRouter(t, nil, limiter)

	post := func() int {
		req := httptest.NewRequest("POST", "/api/inspections", strings.NewReader(`{}`))
		req.Header.Set("X-Fleet-Caller", "dana")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/inspections", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Equal(t, "fleet", cmd.Name())
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, cmd.RunE, "running without a subcommand starts the server")
}
