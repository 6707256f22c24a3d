package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Laza-adina/drsp-vak/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrDistrictNotFound is returned when a district lookup matches no row.
	ErrDistrictNotFound = errors.New("district not found")

	// ErrHealthCenterNotFound is returned when a health center lookup
	// matches no row.
	ErrHealthCenterNotFound = errors.New("health center not found")
)

// DistrictRepository handles district and health center storage.
type DistrictRepository struct {
	db *sql.DB
}

// NewDistrictRepository creates a new district repository.
func NewDistrictRepository(db *sql.DB) *DistrictRepository {
	return &DistrictRepository{db: db}
}

// GetDistrict retrieves a district by ID.
func (r *DistrictRepository) GetDistrict(ctx context.Context, id string) (*models.District, error) {
	query := `
		SELECT id, name, code, region, population, latitude, longitude
		FROM districts
		WHERE id = $1
	`

	d, err := scanDistrict(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDistrictNotFound
		}
		return nil, err
	}

	return d, nil
}

// ListDistricts retrieves all districts ordered by name.
func (r *DistrictRepository) ListDistricts(ctx context.Context) ([]models.District, error) {
	query := `
		SELECT id, name, code, region, population, latitude, longitude
		FROM districts
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	districts := []models.District{}
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, err
		}
		districts = append(districts, *d)
	}

	return districts, rows.Err()
}

// CreateDistrict stores a new district.
func (r *DistrictRepository) CreateDistrict(ctx context.Context, d *models.District) error {
	if d.Name == "" {
		return fmt.Errorf("district name is required")
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO districts (id, name, code, region, population, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.Name,
		nullString(d.Code),
		nullString(d.Region),
		d.Population,
		d.Latitude,
		d.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert district: %w", err)
	}

	return nil
}

// GetHealthCenter retrieves a health center by ID.
func (r *DistrictRepository) GetHealthCenter(ctx context.Context, id string) (*models.HealthCenter, error) {
	query := `
		SELECT id, name, type, district_id, latitude, longitude
		FROM health_centers
		WHERE id = $1
	`

	hc, err := scanHealthCenter(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHealthCenterNotFound
		}
		return nil, err
	}

	return hc, nil
}

// ListHealthCenters retrieves health centers, optionally filtered by
// district.
func (r *DistrictRepository) ListHealthCenters(ctx context.Context, districtID string) ([]models.HealthCenter, error) {
	query := `
		SELECT id, name, type, district_id, latitude, longitude
		FROM health_centers
		WHERE 1=1
	`
	args := []interface{}{}

	if districtID != "" {
		query += " AND district_id = $1"
		args = append(args, districtID)
	}

	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	centers := []models.HealthCenter{}
	for rows.Next() {
		hc, err := scanHealthCenter(rows)
		if err != nil {
			return nil, err
		}
		centers = append(centers, *hc)
	}

	return centers, rows.Err()
}

// CreateHealthCenter stores a new health center.
func (r *DistrictRepository) CreateHealthCenter(ctx context.Context, hc *models.HealthCenter) error {
	if hc.Name == "" {
		return fmt.Errorf("health center name is required")
	}
	if hc.DistrictID == "" {
		return fmt.Errorf("health center district is required")
	}
	if hc.ID == "" {
		hc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO health_centers (id, name, type, district_id, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		hc.ID,
		hc.Name,
		hc.Type,
		hc.DistrictID,
		hc.Latitude,
		hc.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert health center: %w", err)
	}

	return nil
}

func scanDistrict(row rowScanner) (*models.District, error) {
	var d models.District
	var code, region sql.NullString

	err := row.Scan(
		&d.ID,
		&d.Name,
		&code,
		&region,
		&d.Population,
		&d.Latitude,
		&d.Longitude,
	)
	if err != nil {
		return nil, err
	}

	d.Code = code.String
	d.Region = region.String

	return &d, nil
}

func scanHealthCenter(row rowScanner) (*models.HealthCenter, error) {
	var hc models.HealthCenter

	err := row.Scan(
		&hc.ID,
		&hc.Name,
		&hc.Type,
		&hc.DistrictID,
		&hc.Latitude,
		&hc.Longitude,
	)
	if err != nil {
		return nil, err
	}

	return &hc, nil
}
