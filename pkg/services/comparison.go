package services

import (
	"math"

	"github.com/carbonlens/carbon-engine/pkg/models"
)

// ComputeComparison derives each model's signed percentage change relative
// to the current footprint: (prediction - current) / current * 100, rounded
// to two decimals. Defined only for current != 0, which the calculator's
// positive-input invariant guarantees.
//
// The forecasting service normally sends its own comparison block; this is
// the local equivalent for when that block is absent, and the reference
// arithmetic for cross-checking it.
func ComputeComparison(current float64, p models.PredictionSet) models.ComparisonSet {
	return models.ComparisonSet{
		LinearChange:       percentChange(current, p.Linear),
		RandomForestChange: percentChange(current, p.RandomForest),
		XGBoostChange:      percentChange(current, p.XGBoost),
		NeuralChange:       percentChange(current, p.Neural),
	}
}

func percentChange(current, prediction float64) float64 {
	return round2((prediction - current) / current * 100)
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
