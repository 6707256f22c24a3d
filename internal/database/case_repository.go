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

// ErrCaseNotFound is returned when a case lookup matches no row.
var ErrCaseNotFound = errors.New("case not found")

// CaseRepository handles case declaration storage and retrieval.
type CaseRepository struct {
	db *sql.DB
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// CreateCase stores a new case declaration. The case number is generated
// when not supplied.
func (r *CaseRepository) CreateCase(ctx context.Context, c *models.Case) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CaseNumber == "" {
		c.CaseNumber = generateCaseNumber(c.DeclaredAt)
	}
	if c.Status == "" {
		c.Status = models.CaseStatusSuspected
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO cases (id, case_number, patient_name, disease_id, district_id, health_center_id,
			symptom_onset, declared_at, age, sex, status, latitude, longitude, observations,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.CaseNumber,
		nullString(c.PatientName),
		c.DiseaseID,
		c.DistrictID,
		nullString(c.HealthCenterID),
		c.SymptomOnset,
		c.DeclaredAt,
		c.Age,
		nullString(string(c.Sex)),
		c.Status,
		c.Latitude,
		c.Longitude,
		nullString(c.Observations),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}

	return nil
}

// GetCase retrieves a case by ID.
func (r *CaseRepository) GetCase(ctx context.Context, id string) (*models.Case, error) {
	query := `
		SELECT id, case_number, patient_name, disease_id, district_id, health_center_id,
			symptom_onset, declared_at, age, sex, status, latitude, longitude, observations,
			created_at, updated_at
		FROM cases
		WHERE id = $1
	`

	c, err := scanCase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	return c, nil
}

// ListCases retrieves cases matching the query filters, most recent
// declaration first. The DateFrom/DateTo filters apply to the symptom
// onset date, which drives epidemiological aggregation.
func (r *CaseRepository) ListCases(ctx context.Context, q models.CaseQuery) ([]models.Case, error) {
	query := `
		SELECT id, case_number, patient_name, disease_id, district_id, health_center_id,
			symptom_onset, declared_at, age, sex, status, latitude, longitude, observations,
			created_at, updated_at
		FROM cases
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

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
	if q.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, q.Status)
		argPos++
	}
	if q.DateFrom != nil {
		query += fmt.Sprintf(" AND symptom_onset >= $%d", argPos)
		args = append(args, *q.DateFrom)
		argPos++
	}
	if q.DateTo != nil {
		query += fmt.Sprintf(" AND symptom_onset <= $%d", argPos)
		args = append(args, *q.DateTo)
		argPos++
	}

	query += " ORDER BY declared_at DESC"

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

	cases := []models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}

	return cases, rows.Err()
}

// UpdateCaseStatus moves a case through its diagnostic lifecycle.
func (r *CaseRepository) UpdateCaseStatus(ctx context.Context, id string, status models.CaseStatus) error {
	query := `UPDATE cases SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCaseNotFound
	}

	return nil
}

// CountByStatus returns case counts grouped by diagnostic status since
// the given date.
func (r *CaseRepository) CountByStatus(ctx context.Context, since time.Time) (map[models.CaseStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM cases
		WHERE symptom_onset >= $1
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.CaseStatus]int)
	for rows.Next() {
		var status models.CaseStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(row rowScanner) (*models.Case, error) {
	var c models.Case
	var patientName, healthCenterID, sex, observations sql.NullString

	err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&patientName,
		&c.DiseaseID,
		&c.DistrictID,
		&healthCenterID,
		&c.SymptomOnset,
		&c.DeclaredAt,
		&c.Age,
		&sex,
		&c.Status,
		&c.Latitude,
		&c.Longitude,
		&observations,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.PatientName = patientName.String
	c.HealthCenterID = healthCenterID.String
	c.Sex = models.Sex(sex.String)
	c.Observations = observations.String

	return &c, nil
}

// generateCaseNumber builds a human-readable case reference, e.g.
// CAS-20260831-1A2B3C.
func generateCaseNumber(declared time.Time) string {
	if declared.IsZero() {
		declared = time.Now()
	}
	suffix := uuid.New().String()[:6]
	return fmt.Sprintf("CAS-%s-%s", declared.Format("20060102"), suffix)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
