package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"timekeep/internal/model"
)

type CustomerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCustomerRepository(db *pgxpool.Pool, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger}
}

func (r *CustomerRepository) Insert(ctx context.Context, c *model.Customer) error {
	r.logger.Debug("Inserting customer",
		zap.Int("user_id", c.UserID),
		zap.String("name", c.Name),
	)

	query := `
        INSERT INTO customers (name, user_id, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	if err := r.db.QueryRow(ctx, query, c.Name, c.UserID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		r.logger.Error("Failed to insert customer", zap.Error(err))
		return err
	}
	return nil
}

// FindByID returns a customer, or nil when absent.
func (r *CustomerRepository) FindByID(ctx context.Context, id int) (*model.Customer, error) {
	query := `
        SELECT id, name, user_id, created_at, updated_at
        FROM customers
        WHERE id = $1
    `
	var c model.Customer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwners returns the customers visible to a workspace member set.
func (r *CustomerRepository) ListByOwners(ctx context.Context, ownerIDs []int) ([]model.Customer, error) {
	query := `
        SELECT id, name, user_id, created_at, updated_at
        FROM customers
        WHERE user_id = ANY($1)
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	_, err := r.db.Exec(ctx,
		`UPDATE customers SET name = $1, updated_at = NOW() WHERE id = $2`,
		c.Name, c.ID,
	)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}
