package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/carbonlens/carbon-engine/pkg/apperrors"
	"github.com/carbonlens/carbon-engine/pkg/auth"
	"github.com/carbonlens/carbon-engine/pkg/models"
	"github.com/carbonlens/carbon-engine/pkg/services"
)

// CalculateRequest is the request body for both calculate variants. The
// canonical field is `input`; the per-domain aliases the original clients
// post (`energyConsumed` for electricity, `milesDriven` for transport, ...)
// are accepted too.
type CalculateRequest struct {
	Input            *float64 `json:"input"`
	EnergyConsumed   *float64 `json:"energyConsumed"`
	MilesDriven      *float64 `json:"milesDriven"`
	ProductsProduced *float64 `json:"productsProduced"`
	MaterialsUsed    *float64 `json:"materialsUsed"`
	CropsGrown       *float64 `json:"cropsGrown"`
}

// valueFor picks the input value for a domain: `input` wins, then the
// domain's own alias.
func (r *CalculateRequest) valueFor(domain models.Domain) (float64, bool) {
	if r.Input != nil {
		return *r.Input, true
	}

	var alias *float64
	switch domain {
	case models.DomainElectricity:
		alias = r.EnergyConsumed
	case models.DomainTransport:
		alias = r.MilesDriven
	case models.DomainManufacturing:
		alias = r.ProductsProduced
	case models.DomainConstruction:
		alias = r.MaterialsUsed
	case models.DomainAgriculture:
		alias = r.CropsGrown
	}
	if alias != nil {
		return *alias, true
	}
	return 0, false
}

// CalculationResponse is the public payload: the full pipeline result
// without persistence fields.
type CalculationResponse struct {
	Category    models.Domain        `json:"category"`
	InputData   map[string]float64   `json:"inputData"`
	Result      float64              `json:"result"`
	Predictions models.PredictionSet `json:"predictions"`
	Comparison  models.ComparisonSet `json:"comparison"`
	Suggestion  string               `json:"suggestion"`
}

// FootprintHandler handles the per-domain calculation and history endpoints.
type FootprintHandler struct {
	service services.FootprintService
	logger  *zap.Logger
}

// NewFootprintHandler creates a new footprint handler.
func NewFootprintHandler(service services.FootprintService, logger *zap.Logger) *FootprintHandler {
	return &FootprintHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the footprint routes on the given mux. One
// generic handler pair serves all five domains via the {domain} path value.
func (h *FootprintHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/{domain}/calculate", h.Calculate)
	mux.HandleFunc("POST /api/{domain}/calculate-auth", authMiddleware.RequireAuth(h.CalculateAuth))
	mux.HandleFunc("GET /api/history", authMiddleware.RequireAuth(h.History))
	mux.HandleFunc("GET /api/forecast/health", h.ForecastHealth)
}

// Calculate handles POST /api/{domain}/calculate - the public variant,
// nothing is persisted.
func (h *FootprintHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	domain, input, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	fp, err := h.service.Calculate(r.Context(), domain, input, nil)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := CalculationResponse{
		Category:    fp.Category,
		InputData:   fp.InputData,
		Result:      fp.Result,
		Predictions: fp.Predictions,
		Comparison:  fp.Comparison,
		Suggestion:  fp.Suggestion,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode calculation response", zap.Error(err))
	}
}

// CalculateAuth handles POST /api/{domain}/calculate-auth - the protected
// variant. Identical pipeline, plus one append to the footprint store; the
// stored record (with id and createdAt) is returned.
func (h *FootprintHandler) CalculateAuth(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserUUIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	domain, input, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	fp, err := h.service.Calculate(r.Context(), domain, input, &userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, fp); err != nil {
		h.logger.Error("Failed to encode footprint record", zap.Error(err))
	}
}

// History handles GET /api/history - the authenticated principal's records,
// newest first.
func (h *FootprintHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserUUIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	records, err := h.service.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load history",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		h.writeServiceError(w, err)
		return
	}

	if records == nil {
		records = []*models.Footprint{}
	}
	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}

// ForecastHealth handles GET /api/forecast/health - a non-fatal probe of the
// external prediction service.
func (h *FootprintHandler) ForecastHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.PredictionServiceHealth(r.Context()); err != nil {
		h.logger.Warn("Prediction service health probe failed", zap.Error(err))
		if err := WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}); err != nil {
			h.logger.Error("Failed to encode health response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// parseRequest extracts and validates the domain path value and input body.
// Writes the error response itself and returns ok=false on failure.
func (h *FootprintHandler) parseRequest(w http.ResponseWriter, r *http.Request) (models.Domain, float64, bool) {
	domain, err := models.ParseDomain(r.PathValue("domain"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_domain", "Unknown emission category"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", 0, false
	}

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", 0, false
	}

	input, ok := req.valueFor(domain)
	if !ok {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_input", "Missing input value"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", 0, false
	}

	return domain, input, true
}

// writeServiceError maps pipeline errors to HTTP responses.
func (h *FootprintHandler) writeServiceError(w http.ResponseWriter, err error) {
	var status int
	var code, message string

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "invalid_input", "Input must be a positive number"
	case errors.Is(err, apperrors.ErrPredictionUnavailable):
		status, code, message = http.StatusInternalServerError, "prediction_unavailable", "Failed to get predictions"
	case errors.Is(err, apperrors.ErrPersistence):
		status, code, message = http.StatusInternalServerError, "persistence_failure", "Failed to save footprint record"
	default:
		status, code, message = http.StatusInternalServerError, "internal_error", "Internal server error"
	}

	if writeErr := ErrorResponse(w, status, code, message); writeErr != nil {
		h.logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
