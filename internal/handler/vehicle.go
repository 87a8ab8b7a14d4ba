package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/fleet/internal/service"
)

// VehicleHandler serves vehicle fleet records.
type VehicleHandler struct {
	vehicleService service.VehicleService
	logger         *slog.Logger
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService service.VehicleService, logger *slog.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// RegisterRoutes registers vehicle routes with the provided mux.
//
// Routes:
// - GET /api/vehicles/{plate} -> Show
func (h *VehicleHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/vehicles/{plate}", h.Show)
}

// Show returns the fleet record of one vehicle.
func (h *VehicleHandler) Show(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicleService.GetByPlate(r.Context(), r.PathValue("plate"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, newVehicleResponse(vehicle))
}
