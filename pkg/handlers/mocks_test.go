package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carbonlens/carbon-engine/pkg/auth"
	"github.com/carbonlens/carbon-engine/pkg/models"
)

// mockFootprintService is a configurable services.FootprintService.
type mockFootprintService struct {
	calculateResult *models.Footprint
	calculateErr    error
	historyResult   []*models.Footprint
	historyErr      error
	healthErr       error

	lastDomain models.Domain
	lastInput  float64
	lastOwner  *uuid.UUID
}

func (m *mockFootprintService) Calculate(ctx context.Context, domain models.Domain, input float64, owner *uuid.UUID) (*models.Footprint, error) {
	m.lastDomain = domain
	m.lastInput = input
	m.lastOwner = owner
	if m.calculateErr != nil {
		return nil, m.calculateErr
	}
	fp := *m.calculateResult
	if owner != nil {
		fp.ID = uuid.New()
		fp.UserID = *owner
	}
	return &fp, nil
}

func (m *mockFootprintService) History(ctx context.Context, userID uuid.UUID) ([]*models.Footprint, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.historyResult, nil
}

func (m *mockFootprintService) PredictionServiceHealth(ctx context.Context) error {
	return m.healthErr
}

// mockChatService is a configurable services.ChatService.
type mockChatService struct {
	reply       string
	err         error
	lastMessage string
}

func (m *mockChatService) Reply(ctx context.Context, message string) (string, error) {
	m.lastMessage = message
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// newTestMux builds a mux with the footprint routes registered behind a
// dev-mode auth middleware (tokens parsed, signatures not verified).
func newTestMux(t *testing.T, svc *mockFootprintService) *http.ServeMux {
	t.Helper()

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{EnableVerification: false})
	if err != nil {
		t.Fatalf("NewJWKSClient() error = %v", err)
	}
	authService := auth.NewAuthService(jwksClient, zap.NewNop())
	authMiddleware := auth.NewMiddleware(authService, zap.NewNop())

	mux := http.NewServeMux()
	NewFootprintHandler(svc, zap.NewNop()).RegisterRoutes(mux, authMiddleware)
	return mux
}

func sampleFootprint() *models.Footprint {
	return &models.Footprint{
		Category:  models.DomainElectricity,
		InputData: map[string]float64{"energyConsumed": 500},
		Result:    460,
		Predictions: models.PredictionSet{
			Linear:       506,
			RandomForest: 414,
			XGBoost:      460,
			Neural:       483,
			Ensemble:     465.75,
		},
		Comparison: models.ComparisonSet{
			LinearChange:       10,
			RandomForestChange: -10,
			XGBoostChange:      0,
			NeuralChange:       5,
		},
		Suggestion: "Moderate emissions. Switch to energy-efficient appliances, unplug devices when not in use, and consider solar panels for your home.",
	}
}
