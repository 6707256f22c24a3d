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

// ErrDiseaseNotFound is returned when a disease lookup matches no row.
var ErrDiseaseNotFound = errors.New("disease not found")

// DiseaseRepository handles disease catalog and threshold storage.
type DiseaseRepository struct {
	db *sql.DB
}

// NewDiseaseRepository creates a new disease repository.
func NewDiseaseRepository(db *sql.DB) *DiseaseRepository {
	return &DiseaseRepository{db: db}
}

// CreateDisease stores a new surveilled disease.
func (r *DiseaseRepository) CreateDisease(ctx context.Context, d *models.Disease) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO diseases (id, name, code, icd10_code, alert_threshold, epidemic_threshold,
			priority, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.Name,
		nullString(d.Code),
		nullString(d.ICD10Code),
		d.AlertThreshold,
		d.EpidemicThreshold,
		d.Priority,
		nullString(d.Description),
		d.Active,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert disease: %w", err)
	}

	return nil
}

// GetDisease retrieves a disease by ID.
func (r *DiseaseRepository) GetDisease(ctx context.Context, id string) (*models.Disease, error) {
	query := `
		SELECT id, name, code, icd10_code, alert_threshold, epidemic_threshold,
			priority, description, active
		FROM diseases
		WHERE id = $1
	`

	return r.scanDisease(r.db.QueryRowContext(ctx, query, id))
}

// ListDiseases retrieves all diseases, active first, by priority.
func (r *DiseaseRepository) ListDiseases(ctx context.Context) ([]models.Disease, error) {
	query := `
		SELECT id, name, code, icd10_code, alert_threshold, epidemic_threshold,
			priority, description, active
		FROM diseases
		ORDER BY active DESC, priority DESC, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	diseases := []models.Disease{}
	for rows.Next() {
		d, err := r.scanDiseaseRow(rows)
		if err != nil {
			return nil, err
		}
		diseases = append(diseases, *d)
	}

	return diseases, rows.Err()
}

// UpdateThresholds updates the alert and epidemic thresholds for a
// disease.
func (r *DiseaseRepository) UpdateThresholds(ctx context.Context, id string, alertThreshold, epidemicThreshold int) error {
	if epidemicThreshold <= alertThreshold {
		return fmt.Errorf("epidemic threshold (%d) must be greater than alert threshold (%d)",
			epidemicThreshold, alertThreshold)
	}
	if alertThreshold < 1 {
		return fmt.Errorf("alert threshold must be at least 1")
	}

	query := `UPDATE diseases SET alert_threshold = $1, epidemic_threshold = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, alertThreshold, epidemicThreshold, id)
	if err != nil {
		return fmt.Errorf("failed to update thresholds: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDiseaseNotFound
	}

	return nil
}

func (r *DiseaseRepository) scanDisease(row *sql.Row) (*models.Disease, error) {
	d, err := scanDiseaseFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiseaseNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DiseaseRepository) scanDiseaseRow(rows *sql.Rows) (*models.Disease, error) {
	return scanDiseaseFrom(rows)
}

func scanDiseaseFrom(row rowScanner) (*models.Disease, error) {
	var d models.Disease
	var code, icd10, description sql.NullString

	err := row.Scan(
		&d.ID,
		&d.Name,
		&code,
		&icd10,
		&d.AlertThreshold,
		&d.EpidemicThreshold,
		&d.Priority,
		&description,
		&d.Active,
	)
	if err != nil {
		return nil, err
	}

	d.Code = code.String
	d.ICD10Code = icd10.String
	d.Description = description.String

	return &d, nil
}
