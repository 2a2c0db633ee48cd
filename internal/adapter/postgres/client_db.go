package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `client_id, name, phone, email, bike_serials, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }) (*domain.Client, error) {
	client := &domain.Client{}
	err := row.Scan(
		&client.ClientID,
		&client.Name,
		&client.Phone,
		&client.Email,
		pq.Array(&client.BikeSerials),
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *ClientRepository) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	query := `INSERT INTO clients (client_id, name, phone, email, bike_serials)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING client_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		client.ClientID,
		client.Name,
		client.Phone,
		client.Email,
		pq.Array(client.BikeSerials),
	).Scan(
		&client.ClientID,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return nil, fmt.Errorf("required field is missing")
		}
		return nil, err
	}

	return client, nil
}

func (r *ClientRepository) GetClientByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, clientID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (r *ClientRepository) ListClients(ctx context.Context) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client

	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepository) UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	query := `UPDATE clients
		SET
			name = COALESCE(NULLIF($1, ''), name),
			phone = COALESCE(NULLIF($2, ''), phone),
			email = COALESCE(NULLIF($3, ''), email),
			bike_serials = COALESCE($4, bike_serials),
			updated_at = CURRENT_TIMESTAMP
		WHERE client_id = $5
		RETURNING ` + clientColumns

	var serials interface{}
	if client.BikeSerials != nil {
		serials = pq.Array(client.BikeSerials)
	}

	updated, err := scanClient(r.db.QueryRowContext(ctx, query,
		client.Name,
		client.Phone,
		client.Email,
		serials,
		client.ClientID,
	))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error updating client: %w", err)
	}

	return updated, nil
}

// DeleteClientCascade clears the client's bike associations and removes the
// record in one transaction. Either both land or neither does.
func (r *ClientRepository) DeleteClientCascade(ctx context.Context, clientID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE bikes SET client_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE client_id = $1`,
		clientID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear bike associations: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit client delete: %w", err)
	}

	return nil
}
