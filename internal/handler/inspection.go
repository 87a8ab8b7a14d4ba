// Package handler contains HTTP handlers for the fleet inspection API.
//
// This file implements the inspection JSON handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/DukeRupert/fleet/internal/domain"
	"github.com/DukeRupert/fleet/internal/service"
	"github.com/google/uuid"
)

// maxRequestBody bounds inspection submissions.
const maxRequestBody = 1 << 20

// =============================================================================
// Handler Configuration
// =============================================================================

// InspectionHandler handles inspection-related HTTP requests.
type InspectionHandler struct {
	inspectionService service.InspectionService
	logger            *slog.Logger
}

// NewInspectionHandler creates a new InspectionHandler.
func NewInspectionHandler(inspectionService service.InspectionService, logger *slog.Logger) *InspectionHandler {
	return &InspectionHandler{
		inspectionService: inspectionService,
		logger:            logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers all inspection routes with the provided mux.
//
// Routes:
// - POST   /api/inspections        -> Create
// - GET    /api/inspections        -> List (?plate= filters by plate)
// - GET    /api/inspections/{id}   -> Show
// - PUT    /api/inspections/{id}   -> Update
// - DELETE /api/inspections/{id}   -> Delete
func (h *InspectionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/inspections", h.Create)
	mux.HandleFunc("GET /api/inspections", h.List)
	mux.HandleFunc("GET /api/inspections/{id}", h.Show)
	mux.HandleFunc("PUT /api/inspections/{id}", h.Update)
	mux.HandleFunc("DELETE /api/inspections/{id}", h.Delete)
}

// =============================================================================
// POST /api/inspections - Create Inspection
// =============================================================================

// Create submits a new inspection and returns the resolved record.
func (h *InspectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInspection(w, r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rec, err := h.inspectionService.Create(r.Context(), input)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.writeInspection(w, r, http.StatusCreated, rec)
}

// =============================================================================
// GET /api/inspections - List Inspections
// =============================================================================

// List returns the inspections of one plate, or every inspection when no
// plate is given.
func (h *InspectionHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		records []domain.InspectionRecord
		err     error
	)
	if r.URL.Query().Has("plate") {
		records, err = h.inspectionService.ListByPlate(r.Context(), r.URL.Query().Get("plate"))
	} else {
		records, err = h.inspectionService.List(r.Context())
	}
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp, err := newInspectionListResponse(records)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"inspections": resp,
		"total":       len(resp),
	})
}

// =============================================================================
// GET /api/inspections/{id} - Show Inspection
// =============================================================================

// Show returns one inspection.
func (h *InspectionHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	rec, err := h.inspectionService.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.writeInspection(w, r, http.StatusOK, rec)
}

// =============================================================================
// PUT /api/inspections/{id} - Update Inspection
// =============================================================================

// Update replaces an inspection and returns the resolved record.
func (h *InspectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	input, err := decodeInspection(w, r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	rec, err := h.inspectionService.Update(r.Context(), id, input)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.writeInspection(w, r, http.StatusOK, rec)
}

// =============================================================================
// DELETE /api/inspections/{id} - Delete Inspection
// =============================================================================

// Delete removes an inspection.
func (h *InspectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.inspectionService.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// parseID reads the {id} path value. An unparseable id cannot name an
// inspection, so it is answered with 404.
func (h *InspectionHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *InspectionHandler) writeInspection(w http.ResponseWriter, r *http.Request, status int, rec *domain.InspectionRecord) {
	resp, err := newInspectionResponse(rec)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, status, resp)
}

// decodeInspection reads and converts a create or update body.
func decodeInspection(w http.ResponseWriter, r *http.Request) (domain.InspectionInput, error) {
	const op = "inspection.decode"

	var req inspectionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var (
			maxErr  *http.MaxBytesError
			typeErr *json.UnmarshalTypeError
		)
		switch {
		case errors.Is(err, io.EOF):
			return domain.InspectionInput{}, domain.Invalid(op, "request body is required")
		case errors.As(err, &maxErr):
			return domain.InspectionInput{}, domain.Invalid(op, "request body is too large")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return domain.InspectionInput{}, domain.NewValidationError(op, typeErr.Field,
				fmt.Sprintf("Expected a %s value", jsonKind(typeErr.Type)))
		default:
			return domain.InspectionInput{}, domain.Invalid(op, "request body is not a valid inspection: "+err.Error())
		}
	}

	return req.toInput()
}

// jsonKind names a Go type the way a JSON client would see it.
func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Ptr:
		return jsonKind(t.Elem())
	default:
		return "object"
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
