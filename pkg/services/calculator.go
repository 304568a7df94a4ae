// Package services contains the business logic of carbon-engine: the domain
// calculator, the suggestion and comparison engines, the calculation
// orchestrator, and the chat assistant.
package services

import (
	"fmt"
	"math"

	"github.com/carbonlens/carbon-engine/pkg/apperrors"
	"github.com/carbonlens/carbon-engine/pkg/models"
)

// ComputeFootprint returns the current footprint for one domain input:
// input multiplied by the domain's emission factor, at full precision.
// Pure; no rounding happens here so downstream consumers see exact values.
func ComputeFootprint(domain models.Domain, input float64) (float64, error) {
	factor, ok := models.EmissionFactors[domain]
	if !ok {
		return 0, fmt.Errorf("%w: unknown domain %q", apperrors.ErrInvalidInput, domain)
	}
	if err := ValidateInput(input); err != nil {
		return 0, err
	}
	return input * factor, nil
}

// ValidateInput rejects non-positive and non-finite input values before any
// computation or network call is made.
func ValidateInput(input float64) error {
	if math.IsNaN(input) || math.IsInf(input, 0) {
		return fmt.Errorf("%w: input must be finite", apperrors.ErrInvalidInput)
	}
	if input <= 0 {
		return fmt.Errorf("%w: input must be positive, got %v", apperrors.ErrInvalidInput, input)
	}
	return nil
}
