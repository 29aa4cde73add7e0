package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timekeep/internal/model"
)

type PendingRegistrationRepository struct {
	db *pgxpool.Pool
}

func NewPendingRegistrationRepository(db *pgxpool.Pool) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{db: db}
}

// Create inserts a pending registration awaiting approval.
func (r *PendingRegistrationRepository) Create(ctx context.Context, p *model.PendingRegistration) error {
	query := `
        INSERT INTO pending_registrations (username, email, password_hash, approval_token, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		p.Username, p.Email, p.PasswordHash, p.ApprovalToken,
	).Scan(&p.ID, &p.CreatedAt)
}

// FindByToken returns the pending registration for an approval token, or nil.
func (r *PendingRegistrationRepository) FindByToken(ctx context.Context, token string) (*model.PendingRegistration, error) {
	query := `
        SELECT id, username, email, password_hash, approval_token, created_at
        FROM pending_registrations
        WHERE approval_token = $1
    `
	var p model.PendingRegistration
	err := r.db.QueryRow(ctx, query, token).Scan(
		&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.ApprovalToken, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUsername returns the pending registration for a username, or nil.
func (r *PendingRegistrationRepository) FindByUsername(ctx context.Context, username string) (*model.PendingRegistration, error) {
	query := `
        SELECT id, username, email, password_hash, approval_token, created_at
        FROM pending_registrations
        WHERE username = $1
    `
	var p model.PendingRegistration
	err := r.db.QueryRow(ctx, query, username).Scan(
		&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.ApprovalToken, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a pending registration after approval or denial.
func (r *PendingRegistrationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM pending_registrations WHERE id = $1`, id)
	return err
}

// List returns all pending registrations, newest first.
func (r *PendingRegistrationRepository) List(ctx context.Context) ([]model.PendingRegistration, error) {
	query := `
        SELECT id, username, email, password_hash, approval_token, created_at
        FROM pending_registrations
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []model.PendingRegistration
	for rows.Next() {
		var p model.PendingRegistration
		if err := rows.Scan(
			&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.ApprovalToken, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}
