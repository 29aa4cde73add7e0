package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
)

type CustomColorRepository struct {
	db *pgxpool.Pool
}

func NewCustomColorRepository(db *pgxpool.Pool) *CustomColorRepository {
	return &CustomColorRepository{db: db}
}

// Insert saves a custom color for a workspace owner.
func (r *CustomColorRepository) Insert(ctx context.Context, c *model.CustomColor) error {
	query := `
        INSERT INTO custom_colors (owner_id, color, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, c.OwnerID, c.Color).Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflictf("color already exists")
	}
	return err
}

// ListByOwner returns an owner's saved colors, newest first.
func (r *CustomColorRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.CustomColor, error) {
	query := `
        SELECT id, owner_id, color, created_at
        FROM custom_colors
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colors []model.CustomColor
	for rows.Next() {
		var c model.CustomColor
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}
