package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/carbonlens/carbon-engine/pkg/apperrors"
	"github.com/carbonlens/carbon-engine/pkg/models"
	"github.com/carbonlens/carbon-engine/pkg/testhelpers"
)

func TestCalculate_AllDomains(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	for _, domain := range models.AllDomains {
		t.Run(string(domain), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/api/%s/calculate", domain),
				strings.NewReader(`{"input": 500}`))
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
			}
			if svc.lastDomain != domain {
				t.Errorf("service called with domain %q, want %q", svc.lastDomain, domain)
			}
			if svc.lastOwner != nil {
				t.Errorf("public variant passed owner %v, want nil", svc.lastOwner)
			}
		})
	}
}

func TestCalculate_ResponseShape(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate",
		strings.NewReader(`{"input": 500}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp CalculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Category != models.DomainElectricity {
		t.Errorf("category = %q, want electricity", resp.Category)
	}
	if resp.Result != 460 {
		t.Errorf("result = %v, want 460", resp.Result)
	}
	if resp.Predictions.Ensemble != 465.75 {
		t.Errorf("ensemble = %v, want 465.75", resp.Predictions.Ensemble)
	}
	if resp.Suggestion == "" {
		t.Error("suggestion missing from response")
	}

	// Public responses carry no persistence fields.
	var raw map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &raw)
	if _, ok := raw["id"]; ok {
		t.Error("public response contains an id field")
	}
	if _, ok := raw["user"]; ok {
		t.Error("public response contains a user field")
	}
}

func TestCalculate_DomainAliasField(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	tests := []struct {
		domain models.Domain
		body   string
		want   float64
	}{
		{models.DomainElectricity, `{"energyConsumed": 500}`, 500},
		{models.DomainTransport, `{"milesDriven": 1000}`, 1000},
		{models.DomainManufacturing, `{"productsProduced": 10}`, 10},
		{models.DomainConstruction, `{"materialsUsed": 5}`, 5},
		{models.DomainAgriculture, `{"cropsGrown": 3}`, 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/api/%s/calculate", tt.domain),
				strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
			}
			if svc.lastInput != tt.want {
				t.Errorf("service called with input %v, want %v", svc.lastInput, tt.want)
			}
		})
	}
}

func TestCalculate_CanonicalInputWinsOverAlias(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate",
		strings.NewReader(`{"input": 100, "energyConsumed": 500}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastInput != 100 {
		t.Errorf("service called with input %v, want canonical 100", svc.lastInput)
	}
}

func TestCalculate_UnknownDomain(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/aviation/calculate",
		strings.NewReader(`{"input": 500}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCalculate_BadRequestBody(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"input": `},
		{"missing input", `{}`},
		{"wrong alias for domain", `{"milesDriven": 100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate",
				strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCalculate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", fmt.Errorf("%w: input must be positive", apperrors.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"prediction unavailable", fmt.Errorf("%w: connection refused", apperrors.ErrPredictionUnavailable), http.StatusInternalServerError, "prediction_unavailable"},
		{"persistence failure", fmt.Errorf("%w: insert failed", apperrors.ErrPersistence), http.StatusInternalServerError, "persistence_failure"},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockFootprintService{calculateErr: tt.err}
			mux := newTestMux(t, svc)

			req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate",
				strings.NewReader(`{"input": 500}`))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["error"] != tt.wantCode {
				t.Errorf("error code = %q, want %q", body["error"], tt.wantCode)
			}
		})
	}
}

func TestCalculateAuth_RequiresToken(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate-auth",
		strings.NewReader(`{"input": 500}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCalculateAuth_PersistsForPrincipal(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate-auth",
		strings.NewReader(`{"input": 500}`))
	req.Header.Set("Authorization", testhelpers.GenerateTestJWTWithBearer(userID.String(), "user@example.com"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	if svc.lastOwner == nil || *svc.lastOwner != userID {
		t.Errorf("service called with owner %v, want %v", svc.lastOwner, userID)
	}

	var fp models.Footprint
	if err := json.Unmarshal(rec.Body.Bytes(), &fp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fp.ID == uuid.Nil {
		t.Error("stored record has no id")
	}
	if fp.UserID != userID {
		t.Errorf("record user = %v, want %v", fp.UserID, userID)
	}
}

func TestCalculateAuth_TokenInCookie(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/transport/calculate-auth",
		strings.NewReader(`{"input": 1000}`))
	req.AddCookie(&http.Cookie{Name: "token", Value: testhelpers.GenerateTestJWT(userID.String(), "")})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	if svc.lastOwner == nil || *svc.lastOwner != userID {
		t.Errorf("service called with owner %v, want %v", svc.lastOwner, userID)
	}
}

func TestCalculateAuth_RejectsNonUUIDSubject(t *testing.T) {
	svc := &mockFootprintService{calculateResult: sampleFootprint()}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/electricity/calculate-auth",
		strings.NewReader(`{"input": 500}`))
	req.Header.Set("Authorization", testhelpers.GenerateTestJWTWithBearer("not-a-uuid", ""))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	userID := uuid.New()
	svc := &mockFootprintService{
		historyResult: []*models.Footprint{
			{ID: uuid.New(), Category: models.DomainTransport, Result: 411, UserID: userID},
			{ID: uuid.New(), Category: models.DomainElectricity, Result: 460, UserID: userID},
		},
	}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", testhelpers.GenerateTestJWTWithBearer(userID.String(), ""))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var records []*models.Footprint
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestHistory_EmptyIsArrayNotNull(t *testing.T) {
	svc := &mockFootprintService{historyResult: nil}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", testhelpers.GenerateTestJWTWithBearer(uuid.NewString(), ""))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestHistory_RequiresToken(t *testing.T) {
	svc := &mockFootprintService{}
	mux := newTestMux(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestForecastHealth(t *testing.T) {
	tests := []struct {
		name       string
		healthErr  error
		wantStatus int
		wantBody   string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"unavailable", fmt.Errorf("%w: down", apperrors.ErrPredictionUnavailable), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockFootprintService{healthErr: tt.healthErr}
			mux := newTestMux(t, svc)

			req := httptest.NewRequest(http.MethodGet, "/api/forecast/health", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["status"] != tt.wantBody {
				t.Errorf("status field = %q, want %q", body["status"], tt.wantBody)
			}
		})
	}
}
