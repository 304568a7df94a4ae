package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionModels lists the four forecasting models the external service
// runs per request. The ensemble is the arithmetic mean of their outputs.
var PredictionModels = []string{"linear", "random_forest", "xgboost", "neural"}

// PredictionSet holds the per-model forecasts plus the derived ensemble.
type PredictionSet struct {
	Linear       float64 `json:"linear"`
	RandomForest float64 `json:"random_forest"`
	XGBoost      float64 `json:"xgboost"`
	Neural       float64 `json:"neural"`
	Ensemble     float64 `json:"ensemble"`
}

// Mean returns the arithmetic mean of the four model outputs.
func (p PredictionSet) Mean() float64 {
	return (p.Linear + p.RandomForest + p.XGBoost + p.Neural) / 4
}

// ComparisonSet holds each model's signed percentage change relative to the
// current footprint, rounded to two decimals.
type ComparisonSet struct {
	LinearChange       float64 `json:"linear_change"`
	RandomForestChange float64 `json:"random_forest_change"`
	XGBoostChange      float64 `json:"xgboost_change"`
	NeuralChange       float64 `json:"neural_change"`
}

// PredictionResult is what the forecasting service returns for one request.
// Comparison is nil when the service omits its comparison block; the
// orchestrator then computes it locally.
type PredictionResult struct {
	Predictions PredictionSet  `json:"predictions"`
	Comparison  *ComparisonSet `json:"comparison,omitempty"`
}

// Footprint is one persisted calculation. Records are append-only: created
// once inside the authenticated orchestration path and never updated. UserID
// is the owning principal, set at creation.
type Footprint struct {
	ID          uuid.UUID          `json:"id"`
	Category    Domain             `json:"category"`
	InputData   map[string]float64 `json:"inputData"`
	Result      float64            `json:"result"`
	Predictions PredictionSet      `json:"predictions"`
	Comparison  ComparisonSet      `json:"comparison"`
	Suggestion  string             `json:"suggestion"`
	UserID      uuid.UUID          `json:"user"`
	CreatedAt   time.Time          `json:"createdAt"`
}
