package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"timekeep/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.Int("customer_id", p.CustomerID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (name, customer_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	if err := r.db.QueryRow(ctx, query, p.Name, p.CustomerID, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}
	return nil
}

// FindByID returns a project with its owning user joined in, or nil.
func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT p.id, p.name, p.customer_id, p.status, p.created_at, p.updated_at, c.user_id
        FROM projects p
        JOIN customers c ON c.id = p.customer_id
        WHERE p.id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.CustomerID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOwners returns all projects visible to a workspace member set.
func (r *ProjectRepository) ListByOwners(ctx context.Context, ownerIDs []int) ([]model.Project, error) {
	query := `
        SELECT p.id, p.name, p.customer_id, p.status, p.created_at, p.updated_at, c.user_id
        FROM projects p
        JOIN customers c ON c.id = p.customer_id
        WHERE c.user_id = ANY($1)
        ORDER BY p.created_at DESC
    `
	return r.scanProjects(ctx, query, ownerIDs)
}

// ListByCustomer returns a customer's projects, newest first.
func (r *ProjectRepository) ListByCustomer(ctx context.Context, customerID int) ([]model.Project, error) {
	query := `
        SELECT p.id, p.name, p.customer_id, p.status, p.created_at, p.updated_at, c.user_id
        FROM projects p
        JOIN customers c ON c.id = p.customer_id
        WHERE p.customer_id = $1
        ORDER BY p.created_at DESC
    `
	return r.scanProjects(ctx, query, customerID)
}

func (r *ProjectRepository) scanProjects(ctx context.Context, query string, arg any) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.CustomerID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.OwnerID,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET name = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		p.Name, p.Status, p.ID,
	)
	return err
}

// SetStatus marks a project active or completed.
func (r *ProjectRepository) SetStatus(ctx context.Context, id int, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
