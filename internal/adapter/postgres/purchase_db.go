package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `purchase_id, bike_id, buyer_id, bike_brand, bike_model, bike_serial, buyer_name,
	price, payment, sale_date, photo_urls, created_at`

func scanPurchase(row interface{ Scan(...interface{}) error }) (*domain.Purchase, error) {
	p := &domain.Purchase{}
	err := row.Scan(
		&p.PurchaseID,
		&p.BikeID,
		&p.BuyerID,
		&p.BikeBrand,
		&p.BikeModel,
		&p.BikeSerial,
		&p.BuyerName,
		&p.Price,
		&p.Payment,
		&p.SaleDate,
		pq.Array(&p.PhotoURLs),
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PurchaseBike performs the whole sale in one transaction:
//
//  1. conditionally mark the bike sold (no-op unless still available),
//  2. insert the immutable sale record,
//  3. append the bike to the buyer's list.
//
// The conditional update in step 1 is what closes the double-sale race: of
// two transactions racing on the same bike, the second sees zero rows
// affected and rolls back without writing anything.
func (r *PurchaseRepository) PurchaseBike(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE bikes SET status = 'sold', client_id = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE bike_id = $2 AND status = 'available'`,
		purchase.BuyerID, purchase.BikeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark bike sold: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, domain.ErrBikeNotAvailable
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO purchases (purchase_id, bike_id, buyer_id, bike_brand, bike_model, bike_serial,
			buyer_name, price, payment, sale_date, photo_urls)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		purchase.PurchaseID,
		purchase.BikeID,
		purchase.BuyerID,
		purchase.BikeBrand,
		purchase.BikeModel,
		purchase.BikeSerial,
		purchase.BuyerName,
		purchase.Price,
		purchase.Payment,
		purchase.SaleDate,
		pq.Array(purchase.PhotoURLs),
	).Scan(&purchase.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, fmt.Errorf("bike or buyer does not exist")
		}
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET bike_ids = array_append(bike_ids, $1), updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = $2 AND NOT ($1 = ANY(bike_ids))`,
		purchase.BikeID, purchase.BuyerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to attach bike to buyer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return purchase, nil
}

func (r *PurchaseRepository) GetPurchaseByID(ctx context.Context, purchaseID uuid.UUID) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE purchase_id = $1`

	purchase, err := scanPurchase(r.db.QueryRowContext(ctx, query, purchaseID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return purchase, nil
}

func (r *PurchaseRepository) GetPurchasesByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id = $1 ORDER BY sale_date DESC`
	return r.queryPurchases(ctx, query, buyerID)
}

func (r *PurchaseRepository) ListPurchases(ctx context.Context) ([]*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases ORDER BY sale_date DESC`
	return r.queryPurchases(ctx, query)
}

func (r *PurchaseRepository) queryPurchases(ctx context.Context, query string, args ...interface{}) ([]*domain.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []*domain.Purchase

	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}
