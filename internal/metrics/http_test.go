package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/inspections", "/api/inspections"},
		{"/api/inspections/3f2b8c1e-9a4d-4f6e-8b7a-1c2d3e4f5a6b", "/api/inspections/{id}"},
		{"/api/vehicles/AB-123", "/api/vehicles/{plate}"},
		{"/api/vehicles/", "/api/vehicles/"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/vehicles/{plate}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/vehicles/ZZ-1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestVehicleSynced(t *testing.T) {
	saved := testutil.ToFloat64(VehicleSyncWrites.WithLabelValues("saved"))
	unchanged := testutil.ToFloat64(VehicleSyncWrites.WithLabelValues("unchanged"))

	VehicleSynced(3)
	VehicleSynced(0)

	assert.Equal(t, saved+1, testutil.ToFloat64(VehicleSyncWrites.WithLabelValues("saved")))
	assert.Equal(t, unchanged+1, testutil.ToFloat64(VehicleSyncWrites.WithLabelValues("unchanged")))
}

func TestInspectionCommitted(t *testing.T) {
	gate := testutil.ToFloat64(GateFailures)
	score := testutil.ToFloat64(ScoreFailures)
	processed := testutil.ToFloat64(InspectionsProcessed.WithLabelValues(OperationCreate, "REJECTED"))

	InspectionCommitted(OperationCreate, "REJECTED", false, false)
	InspectionCommitted(OperationCreate, "REJECTED", true, true)

	assert.Equal(t, gate+1, testutil.ToFloat64(GateFailures))
	assert.Equal(t, score+1, testutil.ToFloat64(ScoreFailures))
	assert.Equal(t, processed+2, testutil.ToFloat64(InspectionsProcessed.WithLabelValues(OperationCreate, "REJECTED")))
}
