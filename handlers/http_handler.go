// Package handlers provides HTTP request handlers for the pharma assistant API endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/pharma-assistant-api/analysis"
	"github.com/giygas/pharma-assistant-api/interfaces"
	"github.com/giygas/pharma-assistant-api/logging"
)

// AllergyOptions is the fixed list offered by the intake form. The analyze
// endpoint also accepts free-text allergies beyond these.
var AllergyOptions = []string{"Penicillin", "Sulfa Drugs", "NSAIDs", "Statins"}

// Defaults applied when the analyze payload omits age or weight
const (
	defaultPatientAge    = 40
	defaultPatientWeight = 70.0
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	catalog   interfaces.CatalogStore
	analyzer  interfaces.Analyzer
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	catalog interfaces.CatalogStore,
	analyzer interfaces.Analyzer,
	validator interfaces.DataValidator,
	health interfaces.HealthChecker,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		catalog:   catalog,
		analyzer:  analyzer,
		validator: validator,
		health:    health,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// This is a placeholder - the actual routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// HealthResponseImpl defines the structure for consistent JSON ordering
type HealthResponseImpl struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details"`
}

// RespondWithJSON writes a JSON response with compression optimization
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// analyzePayload is the wire shape of the analyze request. Age and weight
// are pointers so an omitted field can take the documented default while
// an explicit zero is kept and rejected by validation where appropriate.
type analyzePayload struct {
	PatientID   string   `json:"patient_id"`
	PatientName string   `json:"patient_name"`
	Age         *int     `json:"age"`
	Weight      *float64 `json:"weight"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`
}

// Analyze runs the interaction analysis for a patient's medication list
func (h *HTTPHandlerImpl) Analyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	req := analysis.Request{
		PatientID:   payload.PatientID,
		PatientName: payload.PatientName,
		Age:         defaultPatientAge,
		Weight:      defaultPatientWeight,
		Allergies:   payload.Allergies,
		Medications: payload.Medications,
	}
	if payload.Age != nil {
		req.Age = *payload.Age
	}
	if payload.Weight != nil {
		req.Weight = *payload.Weight
	}

	doc, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		var clientErr *analysis.ClientInputError
		if errors.As(err, &clientErr) {
			h.RespondWithError(w, http.StatusBadRequest, clientErr.Message)
			return
		}

		logging.Error("Analysis failed unexpectedly", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Unexpected analysis error. See logs for details.")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, doc)
}

// ServeMedications returns the names of all catalog medications, for
// populating the intake form
func (h *HTTPHandlerImpl) ServeMedications(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"medications": h.catalog.Names(),
		"count":       h.catalog.Count(),
	}
	h.RespondWithJSON(w, http.StatusOK, response)
}

// FindMedication returns a single catalog record by name
func (h *HTTPHandlerImpl) FindMedication(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing medication name")
		return
	}

	// Validate input using the validator
	if err := h.validator.ValidateInput(name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, ok := h.catalog.Lookup(name)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, rec)
}

// ServeAllergyOptions returns the allergy choices offered by the intake form
func (h *HTTPHandlerImpl) ServeAllergyOptions(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"allergies": AllergyOptions,
	}
	h.RespondWithJSON(w, http.StatusOK, response)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.HealthCheck()

	response := HealthResponseImpl{
		Status:  status,
		Details: details,
	}

	h.RespondWithJSON(w, httpStatus, response)
}
