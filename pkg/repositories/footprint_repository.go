// Package repositories contains the PostgreSQL data access layer.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/carbonlens/carbon-engine/pkg/apperrors"
	"github.com/carbonlens/carbon-engine/pkg/database"
	"github.com/carbonlens/carbon-engine/pkg/models"
)

// FootprintRepository is the append/query contract the orchestrator consumes.
// Records are immutable after Insert; there is no update operation.
type FootprintRepository interface {
	// Insert appends one record, assigning its id and createdAt. Storage
	// failures surface as apperrors.ErrPersistence.
	Insert(ctx context.Context, fp *models.Footprint) error

	// ListByUser returns the owner's records ordered by creation time
	// descending. Each call is a fresh consistent snapshot.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Footprint, error)
}

// footprintRepository implements FootprintRepository using PostgreSQL.
type footprintRepository struct {
	db *database.DB
}

// NewFootprintRepository creates a new footprint repository over the pool.
func NewFootprintRepository(db *database.DB) FootprintRepository {
	return &footprintRepository{db: db}
}

func (r *footprintRepository) Insert(ctx context.Context, fp *models.Footprint) error {
	inputData, err := json.Marshal(fp.InputData)
	if err != nil {
		return fmt.Errorf("failed to encode input data: %w", err)
	}
	predictions, err := json.Marshal(fp.Predictions)
	if err != nil {
		return fmt.Errorf("failed to encode predictions: %w", err)
	}
	comparison, err := json.Marshal(fp.Comparison)
	if err != nil {
		return fmt.Errorf("failed to encode comparison: %w", err)
	}

	query := `
		INSERT INTO footprints (category, input_data, result, predictions, comparison, suggestion, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		string(fp.Category),
		inputData,
		fp.Result,
		predictions,
		comparison,
		fp.Suggestion,
		fp.UserID,
	).Scan(&fp.ID, &fp.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to insert footprint: %v", apperrors.ErrPersistence, err)
	}

	return nil
}

func (r *footprintRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Footprint, error) {
	query := `
		SELECT id, category, input_data, result, predictions, comparison, suggestion, user_id, created_at
		FROM footprints
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query footprints: %v", apperrors.ErrPersistence, err)
	}
	defer rows.Close()

	var footprints []*models.Footprint
	for rows.Next() {
		var fp models.Footprint
		var category string
		var inputData, predictions, comparison []byte

		if err := rows.Scan(&fp.ID, &category, &inputData, &fp.Result, &predictions, &comparison, &fp.Suggestion, &fp.UserID, &fp.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan footprint: %v", apperrors.ErrPersistence, err)
		}

		fp.Category = models.Domain(category)
		if err := json.Unmarshal(inputData, &fp.InputData); err != nil {
			return nil, fmt.Errorf("failed to decode input data: %w", err)
		}
		if err := json.Unmarshal(predictions, &fp.Predictions); err != nil {
			return nil, fmt.Errorf("failed to decode predictions: %w", err)
		}
		if err := json.Unmarshal(comparison, &fp.Comparison); err != nil {
			return nil, fmt.Errorf("failed to decode comparison: %w", err)
		}

		footprints = append(footprints, &fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read footprints: %v", apperrors.ErrPersistence, err)
	}

	return footprints, nil
}
