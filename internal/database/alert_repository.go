package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/alerting"
	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/google/uuid"
)

// AlertRepository handles epidemic alert storage. It enforces the
// at-most-one-active-alert-per-(disease, district) invariant through a
// partial unique index on active rows, so concurrent evaluations cannot
// create duplicates.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// GetAlert retrieves an alert by ID.
func (r *AlertRepository) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	query := alertSelect + ` WHERE id = $1`

	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, alerting.ErrAlertNotFound
		}
		return nil, err
	}

	return a, nil
}

// GetActiveAlert retrieves the active alert for a (disease, district)
// pair, or nil when none exists.
func (r *AlertRepository) GetActiveAlert(ctx context.Context, diseaseID, districtID string) (*models.Alert, error) {
	query := alertSelect + ` WHERE disease_id = $1 AND district_id = $2 AND status = 'active'`

	a, err := scanAlert(r.db.QueryRowContext(ctx, query, diseaseID, districtID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return a, nil
}

// CreateAlert inserts a new alert. The insert is guarded by the partial
// unique index on (disease_id, district_id) WHERE status = 'active';
// when a concurrent run already created the active alert, no row is
// inserted and alerting.ErrActiveAlertExists is returned.
func (r *AlertRepository) CreateAlert(ctx context.Context, a *models.Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO alerts (id, type, severity, status, disease_id, district_id, case_count,
			triggered_threshold, detection_date, description, recommended_actions,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (disease_id, district_id) WHERE status = 'active' DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Type,
		a.Severity,
		a.Status,
		a.DiseaseID,
		a.DistrictID,
		a.CaseCount,
		a.TriggeredThreshold,
		a.DetectionDate,
		a.Description,
		nullString(a.RecommendedActions),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alerting.ErrActiveAlertExists
	}

	return nil
}

// UpdateAlert persists severity, count and description changes to an
// existing alert.
func (r *AlertRepository) UpdateAlert(ctx context.Context, a *models.Alert) error {
	query := `
		UPDATE alerts
		SET type = $1,
		    severity = $2,
		    case_count = $3,
		    triggered_threshold = $4,
		    description = $5,
		    recommended_actions = $6,
		    updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		a.Type,
		a.Severity,
		a.CaseCount,
		a.TriggeredThreshold,
		a.Description,
		nullString(a.RecommendedActions),
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alerting.ErrAlertNotFound
	}

	return nil
}

// ResolveAlert closes an alert, recording the resolution date and the
// actions taken, and returns the updated row.
func (r *AlertRepository) ResolveAlert(ctx context.Context, id, actions string, date time.Time) (*models.Alert, error) {
	query := `
		UPDATE alerts
		SET status = 'resolved',
		    resolution_date = $1,
		    actions_taken = $2,
		    updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, date, nullString(actions), time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, alerting.ErrAlertNotFound
	}

	return r.GetAlert(ctx, id)
}

// ListAlerts retrieves alerts matching the query filters, most recent
// detection first.
func (r *AlertRepository) ListAlerts(ctx context.Context, q models.AlertQuery) ([]models.Alert, error) {
	query := alertSelect + ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if q.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, q.Status)
		argPos++
	}
	if q.Severity != "" {
		query += fmt.Sprintf(" AND severity = $%d", argPos)
		args = append(args, q.Severity)
		argPos++
	}
	if q.DiseaseID != "" {
		query += fmt.Sprintf(" AND disease_id = $%d", argPos)
		args = append(args, q.DiseaseID)
		argPos++
	}
	if q.DistrictID != "" {
		query += fmt.Sprintf(" AND district_id = $%d", argPos)
		args = append(args, q.DistrictID)
		argPos++
	}
	if q.DateFrom != nil {
		query += fmt.Sprintf(" AND detection_date >= $%d", argPos)
		args = append(args, *q.DateFrom)
		argPos++
	}
	if q.DateTo != nil {
		query += fmt.Sprintf(" AND detection_date <= $%d", argPos)
		args = append(args, *q.DateTo)
		argPos++
	}

	query += " ORDER BY detection_date DESC, created_at DESC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, q.Limit)
		argPos++
	}
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}

	return alerts, rows.Err()
}

// SetRecommendedActions stores generated recommendations on an alert.
func (r *AlertRepository) SetRecommendedActions(ctx context.Context, id, actions string) error {
	query := `UPDATE alerts SET recommended_actions = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, actions, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set recommended actions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alerting.ErrAlertNotFound
	}

	return nil
}

const alertSelect = `
	SELECT id, type, severity, status, disease_id, district_id, case_count,
		triggered_threshold, detection_date, resolution_date, description,
		recommended_actions, actions_taken, created_at, updated_at
	FROM alerts`

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	var recommended, taken sql.NullString

	err := row.Scan(
		&a.ID,
		&a.Type,
		&a.Severity,
		&a.Status,
		&a.DiseaseID,
		&a.DistrictID,
		&a.CaseCount,
		&a.TriggeredThreshold,
		&a.DetectionDate,
		&a.ResolutionDate,
		&a.Description,
		&recommended,
		&taken,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.RecommendedActions = recommended.String
	a.ActionsTaken = taken.String

	return &a, nil
}
