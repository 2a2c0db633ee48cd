package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

type BikeRepository struct {
	db *sql.DB
}

func NewBikeRepository(db *sql.DB) *BikeRepository {
	return &BikeRepository{
		db,
	}
}

const bikeColumns = `bike_id, user_id, client_id, brand, model, serial_number, year, color, type, size, status,
	purchase_price, purchase_date, photo_urls, created_at, updated_at`

func scanBike(row interface{ Scan(...interface{}) error }) (*domain.Bike, error) {
	bike := &domain.Bike{}
	err := row.Scan(
		&bike.BikeID,
		&bike.UserID,
		&bike.ClientID,
		&bike.Brand,
		&bike.Model,
		&bike.SerialNumber,
		&bike.Year,
		&bike.Color,
		&bike.Type,
		&bike.Size,
		&bike.Status,
		&bike.PurchasePrice,
		&bike.PurchaseDate,
		pq.Array(&bike.PhotoURLs),
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bike, nil
}

func (r *BikeRepository) CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	query := `INSERT INTO bikes (bike_id, user_id, brand, model, serial_number, year, color, type, size, status,
		purchase_price, purchase_date, photo_urls)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING bike_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bike.BikeID,
		bike.UserID,
		bike.Brand,
		bike.Model,
		bike.SerialNumber,
		bike.Year,
		bike.Color,
		bike.Type,
		bike.Size,
		bike.Status,
		bike.PurchasePrice,
		bike.PurchaseDate,
		pq.Array(bike.PhotoURLs),
	).Scan(
		&bike.BikeID,
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("user does not exist")
			case "23505":
				return nil, fmt.Errorf("serial number already registered")
			default:
				return nil, err
			}
		}
		return nil, err
	}
	return bike, nil
}

func (r *BikeRepository) GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE bike_id = $1`

	bike, err := scanBike(r.db.QueryRowContext(ctx, query, bikeID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return bike, nil
}

func (r *BikeRepository) GetBikesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryBikes(ctx, query, userID)
}

func (r *BikeRepository) GetAvailableBikes(ctx context.Context) ([]*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE status = 'available' ORDER BY created_at DESC`
	return r.queryBikes(ctx, query)
}

func (r *BikeRepository) queryBikes(ctx context.Context, query string, args ...interface{}) ([]*domain.Bike, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bikes []*domain.Bike

	for rows.Next() {
		bike, err := scanBike(rows)
		if err != nil {
			return nil, err
		}
		bikes = append(bikes, bike)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (r *BikeRepository) UpdateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	query := `UPDATE bikes
		SET
			brand = COALESCE(NULLIF($1, ''), brand),
			model = COALESCE(NULLIF($2, ''), model),
			serial_number = COALESCE(NULLIF($3, ''), serial_number),
			year = COALESCE(NULLIF($4, 0), year),
			color = COALESCE(NULLIF($5, ''), color),
			type = COALESCE(NULLIF($6, ''), type),
			size = COALESCE(NULLIF($7, ''), size),
			purchase_price = COALESCE($8, purchase_price),
			purchase_date = COALESCE($9, purchase_date),
			updated_at = CURRENT_TIMESTAMP
		WHERE bike_id = $10
		RETURNING ` + bikeColumns

	updated, err := scanBike(r.db.QueryRowContext(ctx, query,
		bike.Brand,
		bike.Model,
		bike.SerialNumber,
		bike.Year,
		bike.Color,
		string(bike.Type),
		bike.Size,
		bike.PurchasePrice,
		bike.PurchaseDate,
		bike.BikeID,
	))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return nil, fmt.Errorf("required field is missing")
		}
		return nil, fmt.Errorf("error updating bike: %w", err)
	}

	return updated, nil
}

// SetBikeStatus is a conditional write: the row only changes if it is still
// in the expected `from` status, so concurrent transitions cannot stack.
func (r *BikeRepository) SetBikeStatus(ctx context.Context, bikeID uuid.UUID, from, to domain.BikeStatus) error {
	query := `UPDATE bikes SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE bike_id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, bikeID, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: bike %s is no longer %s", domain.ErrInvalidTransition, bikeID, from)
	}

	return nil
}

func (r *BikeRepository) DeleteBike(ctx context.Context, bikeID uuid.UUID) error {
	query := `DELETE FROM bikes WHERE bike_id = $1`

	result, err := r.db.ExecContext(ctx, query, bikeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
