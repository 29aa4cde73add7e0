package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
)

type DeliverableRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDeliverableRepository(db *pgxpool.Pool, logger *zap.Logger) *DeliverableRepository {
	return &DeliverableRepository{db: db, logger: logger}
}

// Insert adds a deliverable; names are unique within a project.
func (r *DeliverableRepository) Insert(ctx context.Context, d *model.Deliverable) error {
	r.logger.Debug("Inserting deliverable",
		zap.Int("project_id", d.ProjectID),
		zap.String("name", d.Name),
	)

	query := `
        INSERT INTO deliverables (name, project_id, description, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, d.Name, d.ProjectID, d.Description).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Validationf("a deliverable with this name already exists for this project")
	}
	if err != nil {
		r.logger.Error("Failed to insert deliverable", zap.Error(err))
		return err
	}
	return nil
}

// FindByID returns a deliverable with ownership context, or nil.
func (r *DeliverableRepository) FindByID(ctx context.Context, id int) (*model.Deliverable, error) {
	query := `
        SELECT d.id, d.name, d.project_id, d.description, d.created_at, d.updated_at, c.user_id
        FROM deliverables d
        JOIN projects p ON p.id = d.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE d.id = $1
    `
	var d model.Deliverable
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.ProjectID, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByProject returns a project's deliverables, newest first.
func (r *DeliverableRepository) ListByProject(ctx context.Context, projectID int) ([]model.Deliverable, error) {
	query := `
        SELECT d.id, d.name, d.project_id, d.description, d.created_at, d.updated_at, c.user_id
        FROM deliverables d
        JOIN projects p ON p.id = d.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE d.project_id = $1
        ORDER BY d.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliverables []model.Deliverable
	for rows.Next() {
		var d model.Deliverable
		if err := rows.Scan(
			&d.ID, &d.Name, &d.ProjectID, &d.Description, &d.CreatedAt, &d.UpdatedAt, &d.OwnerID,
		); err != nil {
			return nil, err
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, rows.Err()
}

func (r *DeliverableRepository) Update(ctx context.Context, d *model.Deliverable) error {
	_, err := r.db.Exec(ctx,
		`UPDATE deliverables SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`,
		d.Name, d.Description, d.ID,
	)
	if isUniqueViolation(err) {
		return apperr.Validationf("a deliverable with this name already exists for this project")
	}
	return err
}

// Delete removes a deliverable. Sessions tagged with it are detached by the
// FK SET NULL, never deleted.
func (r *DeliverableRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM deliverables WHERE id = $1`, id)
	return err
}
