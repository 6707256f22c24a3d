package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/google/uuid"
)

// PredictionRepository handles persisted forecast points.
type PredictionRepository struct {
	db *sql.DB
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// SavePredictions replaces the stored forecast for a (disease,
// district, horizon) run with the given points, atomically. An empty
// slice clears the stored run.
func (r *PredictionRepository) SavePredictions(ctx context.Context, diseaseID, districtID string, horizonDays int, predictions []models.Prediction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := `
		DELETE FROM predictions
		WHERE disease_id = $1 AND district_id = $2 AND horizon_days = $3
	`
	if _, err := tx.ExecContext(ctx, deleteQuery, diseaseID, districtID, horizonDays); err != nil {
		return fmt.Errorf("failed to clear previous predictions: %w", err)
	}

	insertQuery := `
		INSERT INTO predictions (id, disease_id, district_id, date, horizon_days,
			predicted_cases, lower_bound, upper_bound, confidence_score, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	for _, p := range predictions {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, insertQuery,
			id,
			diseaseID,
			districtID,
			p.Date,
			horizonDays,
			p.PredictedCases,
			p.LowerBound,
			p.UpperBound,
			p.ConfidenceScore,
			p.Model,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert prediction for %s: %w", p.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// ListPredictions retrieves the stored forecast points for a (disease,
// district, horizon) run in date order.
func (r *PredictionRepository) ListPredictions(ctx context.Context, diseaseID, districtID string, horizonDays int) ([]models.Prediction, error) {
	query := `
		SELECT id, disease_id, district_id, date, horizon_days,
			predicted_cases, lower_bound, upper_bound, confidence_score, model, created_at
		FROM predictions
		WHERE disease_id = $1 AND district_id = $2 AND horizon_days = $3
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, diseaseID, districtID, horizonDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		err := rows.Scan(
			&p.ID,
			&p.DiseaseID,
			&p.DistrictID,
			&p.Date,
			&p.HorizonDays,
			&p.PredictedCases,
			&p.LowerBound,
			&p.UpperBound,
			&p.ConfidenceScore,
			&p.Model,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// DeleteOlderThan removes forecast points created before the cutoff.
func (r *PredictionRepository) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	query := `DELETE FROM predictions WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-age))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
