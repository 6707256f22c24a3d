package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/google/uuid"
)

// ErrInterventionNotFound is returned when an intervention lookup
// matches no row.
var ErrInterventionNotFound = errors.New("intervention not found")

// InterventionRepository handles field intervention storage.
type InterventionRepository struct {
	db *sql.DB
}

// NewInterventionRepository creates a new intervention repository.
func NewInterventionRepository(db *sql.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

// CreateIntervention stores a planned or ongoing field response.
func (r *InterventionRepository) CreateIntervention(ctx context.Context, iv *models.Intervention) error {
	if iv.Title == "" {
		return fmt.Errorf("intervention title is required")
	}
	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	if iv.Status == "" {
		iv.Status = models.InterventionPlanned
	}
	iv.CreatedAt = time.Now()

	query := `
		INSERT INTO interventions (id, alert_id, disease_id, district_id, type, status,
			title, description, start_date, end_date, effectiveness_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		iv.ID,
		nullString(iv.AlertID),
		iv.DiseaseID,
		iv.DistrictID,
		iv.Type,
		iv.Status,
		iv.Title,
		nullString(iv.Description),
		iv.StartDate,
		iv.EndDate,
		iv.EffectivenessScore,
		iv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert intervention: %w", err)
	}

	return nil
}

// ListInterventionsForAlert retrieves the interventions tied to an
// alert, oldest first.
func (r *InterventionRepository) ListInterventionsForAlert(ctx context.Context, alertID string) ([]models.Intervention, error) {
	query := `
		SELECT id, alert_id, disease_id, district_id, type, status,
			title, description, start_date, end_date, effectiveness_score, created_at
		FROM interventions
		WHERE alert_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interventions := []models.Intervention{}
	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		interventions = append(interventions, *iv)
	}

	return interventions, rows.Err()
}

// UpdateInterventionStatus moves an intervention through its lifecycle,
// optionally recording a post-hoc effectiveness score.
func (r *InterventionRepository) UpdateInterventionStatus(ctx context.Context, id string, status models.InterventionStatus, effectiveness *int) error {
	query := `
		UPDATE interventions
		SET status = $1,
		    effectiveness_score = COALESCE($2, effectiveness_score),
		    end_date = CASE WHEN $1 IN ('completed', 'cancelled') THEN NOW() ELSE end_date END
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, effectiveness, id)
	if err != nil {
		return fmt.Errorf("failed to update intervention: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInterventionNotFound
	}

	return nil
}

func scanIntervention(row rowScanner) (*models.Intervention, error) {
	var iv models.Intervention
	var alertID, description sql.NullString

	err := row.Scan(
		&iv.ID,
		&alertID,
		&iv.DiseaseID,
		&iv.DistrictID,
		&iv.Type,
		&iv.Status,
		&iv.Title,
		&description,
		&iv.StartDate,
		&iv.EndDate,
		&iv.EffectivenessScore,
		&iv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	iv.AlertID = alertID.String
	iv.Description = description.String

	return &iv, nil
}
