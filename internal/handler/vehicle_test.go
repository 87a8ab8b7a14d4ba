package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DukeRupert/fleet/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVehicleService struct {
	vehicle  *domain.VehicleFleetRecord
	err      error
	gotPlate string
}

func (f *fakeVehicleService) GetByPlate(_ context.Context, plate string) (*domain.VehicleFleetRecord, error) {
	f.gotPlate = plate
	return f.vehicle, f.err
}

func serveVehicle(svc *fakeVehicleService, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	NewVehicleHandler(svc, discardLogger()).RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestVehicleHandler_Show(t *testing.T) {
	latest := uuid.MustParse("7b0f3c1e-3c1a-4f38-9a55-0e1d3c1b2a10")
	vehicle := domain.NewPlaceholderVehicle("ABC123", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	vehicle.LatestInspectionID = &latest
	vehicle.EverInspected = true
	vehicle.FleetStatus = domain.FleetStatusInspectedAndReady

	svc := &fakeVehicleService{vehicle: vehicle}
	rec := serveVehicle(svc, "/api/vehicles/abc123")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", svc.gotPlate)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ABC123", resp["plateNumber"])
	assert.Equal(t, "car", resp["kind"])
	assert.Equal(t, domain.PlaceholderOwner, resp["ownerName"])
	assert.Equal(t, latest.String(), resp["latestInspectionId"])
	assert.Equal(t, "inspected-and-ready", resp["fleetStatus"])
	assert.Equal(t, true, resp["everInspected"])
}

func TestVehicleHandler_Show_NoLatestInspection(t *testing.T) {
	vehicle := domain.NewPlaceholderVehicle("XYZ9", time.Now())
	rec := serveVehicle(&fakeVehicleService{vehicle: vehicle}, "/api/vehicles/XYZ9")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "latestInspectionId")
	assert.Nil(t, resp["latestInspectionId"])
	assert.Equal(t, "pending-inspection", resp["fleetStatus"])
}

func TestVehicleHandler_Show_NotFound(t *testing.T) {
	svc := &fakeVehicleService{err: domain.NotFound("vehicle.get", "vehicle", "NOPE")}
	rec := serveVehicle(svc, "/api/vehicles/NOPE")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
