package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"timekeep/internal/model"
)

type TimerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTimerRepository(db *pgxpool.Pool, logger *zap.Logger) *TimerRepository {
	return &TimerRepository{db: db, logger: logger}
}

func (r *TimerRepository) Insert(ctx context.Context, t *model.Timer) error {
	r.logger.Debug("Inserting timer",
		zap.Int("user_id", t.UserID),
		zap.String("task_name", t.TaskName),
	)

	query := `
        INSERT INTO timers (task_name, user_id, price_per_hour, header_color, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	if err := r.db.QueryRow(ctx, query,
		t.TaskName, t.UserID, t.PricePerHour, t.HeaderColor,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		r.logger.Error("Failed to insert timer", zap.Error(err))
		return err
	}
	return nil
}

// FindByID returns a timer template, or nil when absent.
func (r *TimerRepository) FindByID(ctx context.Context, id int) (*model.Timer, error) {
	query := `
        SELECT id, task_name, user_id, price_per_hour, header_color, created_at, updated_at
        FROM timers
        WHERE id = $1
    `
	var t model.Timer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.TaskName, &t.UserID, &t.PricePerHour, &t.HeaderColor,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOwners returns the timer templates visible to a workspace member set,
// ordered by task name.
func (r *TimerRepository) ListByOwners(ctx context.Context, ownerIDs []int) ([]model.Timer, error) {
	query := `
        SELECT id, task_name, user_id, price_per_hour, header_color, created_at, updated_at
        FROM timers
        WHERE user_id = ANY($1)
        ORDER BY task_name ASC
    `
	rows, err := r.db.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timers []model.Timer
	for rows.Next() {
		var t model.Timer
		if err := rows.Scan(
			&t.ID, &t.TaskName, &t.UserID, &t.PricePerHour, &t.HeaderColor,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	return timers, rows.Err()
}

// Update changes a timer template. Existing sessions keep their price
// snapshot; this never touches them.
func (r *TimerRepository) Update(ctx context.Context, t *model.Timer) error {
	_, err := r.db.Exec(ctx,
		`UPDATE timers SET task_name = $1, price_per_hour = $2, header_color = $3, updated_at = NOW() WHERE id = $4`,
		t.TaskName, t.PricePerHour, t.HeaderColor, t.ID,
	)
	return err
}

func (r *TimerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM timers WHERE id = $1`, id)
	return err
}
