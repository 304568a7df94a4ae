package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carbonlens/carbon-engine/pkg/apperrors"
	"github.com/carbonlens/carbon-engine/pkg/models"
	"github.com/carbonlens/carbon-engine/pkg/repositories"
)

// PredictionProvider is the contract with the external forecasting service.
// The ensemble of underlying algorithms is opaque to the orchestrator; one
// operation returns everything it produces, and Health reports liveness
// without failing a calculation.
type PredictionProvider interface {
	Predict(ctx context.Context, domain models.Domain, input float64) (*models.PredictionResult, error)
	Health(ctx context.Context) error
}

// FootprintService orchestrates one calculation: validate, compute the
// current footprint, fetch forecasts, derive comparisons, attach a
// suggestion, and persist when an owner is present.
type FootprintService interface {
	// Calculate runs the full pipeline. owner nil is the public variant
	// (no persistence); owner set is the protected variant, returning the
	// stored record with id and createdAt assigned.
	Calculate(ctx context.Context, domain models.Domain, input float64, owner *uuid.UUID) (*models.Footprint, error)

	// History returns the owner's records, newest first.
	History(ctx context.Context, userID uuid.UUID) ([]*models.Footprint, error)

	// PredictionServiceHealth probes the forecasting service.
	PredictionServiceHealth(ctx context.Context) error
}

type footprintService struct {
	repo      repositories.FootprintRepository
	predictor PredictionProvider
	logger    *zap.Logger
}

// NewFootprintService wires the orchestrator and verifies the startup
// invariant that every domain has an emission factor, an input field name,
// and a complete suggestion table. A malformed table is a construction
// error, not a per-request guess.
func NewFootprintService(repo repositories.FootprintRepository, predictor PredictionProvider, logger *zap.Logger) (FootprintService, error) {
	if err := ValidateSuggestionTables(); err != nil {
		return nil, fmt.Errorf("suggestion tables: %w", err)
	}
	for _, domain := range models.AllDomains {
		if factor, ok := models.EmissionFactors[domain]; !ok || factor <= 0 {
			return nil, fmt.Errorf("domain %s has no positive emission factor", domain)
		}
		if _, ok := models.InputFields[domain]; !ok {
			return nil, fmt.Errorf("domain %s has no input field name", domain)
		}
	}

	return &footprintService{
		repo:      repo,
		predictor: predictor,
		logger:    logger,
	}, nil
}

func (s *footprintService) Calculate(ctx context.Context, domain models.Domain, input float64, owner *uuid.UUID) (*models.Footprint, error) {
	if !domain.IsValid() {
		return nil, fmt.Errorf("%w: unknown domain %q", apperrors.ErrInvalidInput, domain)
	}

	current, err := ComputeFootprint(domain, input)
	if err != nil {
		return nil, err
	}

	// The forecast call is the only blocking step; the suggestion lookup is
	// independent of its outcome, so run them concurrently and join. The
	// request context cancels the in-flight call if the caller goes away.
	type forecastResult struct {
		res *models.PredictionResult
		err error
	}
	forecastCh := make(chan forecastResult, 1)
	go func() {
		res, err := s.predictor.Predict(ctx, domain, input)
		forecastCh <- forecastResult{res: res, err: err}
	}()

	suggestion := GetSuggestion(domain, current)

	out := <-forecastCh
	if out.err != nil {
		s.logger.Warn("Prediction service call failed",
			zap.String("domain", string(domain)),
			zap.Error(out.err))
		if !errors.Is(out.err, apperrors.ErrPredictionUnavailable) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPredictionUnavailable, out.err)
		}
		return nil, out.err
	}

	predictions := out.res.Predictions
	if predictions.Ensemble == 0 {
		predictions.Ensemble = round2(predictions.Mean())
	}

	comparison := out.res.Comparison
	if comparison == nil {
		derived := ComputeComparison(current, predictions)
		comparison = &derived
	}

	fp := &models.Footprint{
		Category:    domain,
		InputData:   map[string]float64{domain.InputField(): input},
		Result:      current,
		Predictions: predictions,
		Comparison:  *comparison,
		Suggestion:  suggestion,
	}

	if owner == nil {
		return fp, nil
	}

	// Persistence only after a fully successful pipeline; one append, no
	// partial commits.
	fp.UserID = *owner
	if err := s.repo.Insert(ctx, fp); err != nil {
		s.logger.Error("Failed to persist footprint record",
			zap.String("domain", string(domain)),
			zap.String("user_id", owner.String()),
			zap.Error(err))
		return nil, err
	}

	return fp, nil
}

func (s *footprintService) History(ctx context.Context, userID uuid.UUID) ([]*models.Footprint, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *footprintService) PredictionServiceHealth(ctx context.Context) error {
	return s.predictor.Health(ctx)
}

// Ensure footprintService implements FootprintService at compile time.
var _ FootprintService = (*footprintService)(nil)
