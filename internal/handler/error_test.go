package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/fleet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func TestValidationErrorResponse_DoesNotExposeOperationName(t *testing.T) {
	ve := domain.NewValidationError("InspectionService.Create", "plateNumber", "Plate number is required")

	rec := httptest.NewRecorder()
	ValidationErrorResponse(rec, httptest.NewRequest("POST", "/api/inspections", nil), discardLogger(), ve)

	body := rec.Body.String()

	if strings.Contains(body, "InspectionService") {
		t.Errorf("response exposes internal operation name: %s", body)
	}
	if !strings.Contains(body, "check your input") {
		t.Errorf("response should have helpful guidance, got: %s", body)
	}

	var resp JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.EINVALID, resp.Error.Code)
	assert.Equal(t, "Plate number is required", resp.Error.Fields["plateNumber"])
}

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	dbErr := &mockDatabaseError{message: "pq: relation \"inspections\" does not exist"}
	internalErr := domain.Internal(dbErr, "inspection.find", "Database query failed")

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("GET", "/api/inspections", nil), discardLogger(), internalErr)

	body := rec.Body.String()

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	if strings.Contains(body, "pq:") {
		t.Errorf("response exposes database error: %s", body)
	}
	if strings.Contains(body, "relation") {
		t.Errorf("response exposes database schema: %s", body)
	}
	if strings.Contains(body, "inspection.find") {
		t.Errorf("response exposes internal operation: %s", body)
	}
	if !strings.Contains(body, "internal error") {
		t.Errorf("response should contain generic internal error message, got: %s", body)
	}
}

func TestErrorResponse_WrappedInternalErrorHidesDetails(t *testing.T) {
	sensitiveErr := &mockDatabaseError{message: "connection to 192.168.1.100:5432 refused"}
	wrapped := fmt.Errorf("commit: %w", domain.Internal(sensitiveErr, "store.tx", "Failed to connect"))

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("PUT", "/api/inspections/x", nil), discardLogger(), wrapped)

	body := rec.Body.String()
	if strings.Contains(body, "192.168") || strings.Contains(body, "5432") {
		t.Errorf("response exposes connection details: %s", body)
	}
}

func TestErrorResponse_UnwrappedErrorReturnsGeneric(t *testing.T) {
	rawErr := &mockDatabaseError{message: "FATAL: password authentication failed for user \"postgres\""}

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("GET", "/api/vehicles/ABC", nil), discardLogger(), rawErr)

	body := rec.Body.String()

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	if strings.Contains(body, "FATAL") || strings.Contains(body, "postgres") {
		t.Errorf("response exposes raw error: %s", body)
	}
	if !strings.Contains(body, "internal error") {
		t.Errorf("response should contain generic message, got: %s", body)
	}
}

func TestErrorResponse_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", domain.Invalid("inspection.create", "plate number is required"), http.StatusBadRequest, domain.EINVALID},
		{"mapping", domain.Mapping("inspection.decode", "severity", "CRITICAL"), http.StatusBadRequest, domain.EMAPPING},
		{"not found", domain.NotFound("inspection.get", "inspection", "abc"), http.StatusNotFound, domain.ENOTFOUND},
		{"conflict", domain.Conflict("vehicle.provision", "plate already registered"), http.StatusConflict, domain.ECONFLICT},
		{"internal", domain.Internal(nil, "store.tx", "boom"), http.StatusInternalServerError, domain.EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorResponse(rec, httptest.NewRequest("POST", "/api/inspections", nil), discardLogger(), tt.err)

			var resp JSONError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestErrorResponse_MappingMessageQuotesValue(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("POST", "/api/inspections", nil), discardLogger(),
		domain.Mapping("inspection.decode", "inspection status", "MAYBE"))

	var resp JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, `unknown inspection status value "MAYBE"`, resp.Error.Message)
}

func TestNotFoundResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundResponse(rec, httptest.NewRequest("GET", "/api/inspections/nope", nil), discardLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestErrorResponse_LogLevel(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"client error logs info", domain.Invalid("inspection.create", "bad"), "level=INFO"},
		{"server error logs error", domain.Internal(nil, "store.tx", "boom"), "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			ErrorResponse(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/inspections", nil), logger, tt.err)

			assert.Contains(t, buf.String(), tt.level)
		})
	}
}

// mockDatabaseError simulates a database error for testing
type mockDatabaseError struct {
	message string
}

func (e *mockDatabaseError) Error() string {
	return e.message
}
