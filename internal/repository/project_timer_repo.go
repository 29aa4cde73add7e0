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

// ProjectTimerRepository persists timer-to-project assignments.
type ProjectTimerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectTimerRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectTimerRepository {
	return &ProjectTimerRepository{db: db, logger: logger}
}

// Insert links a timer to a project. The (project, timer) pair is unique.
func (r *ProjectTimerRepository) Insert(ctx context.Context, pt *model.ProjectTimer) error {
	r.logger.Debug("Assigning timer to project",
		zap.Int("project_id", pt.ProjectID),
		zap.Int("timer_id", pt.TimerID),
	)

	query := `
        INSERT INTO project_timers (project_id, timer_id, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, pt.ProjectID, pt.TimerID).
		Scan(&pt.ID, &pt.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflictf("timer is already assigned to this project")
	}
	if err != nil {
		r.logger.Error("Failed to assign timer", zap.Error(err))
		return err
	}
	return nil
}

// FindByID returns an assignment with timer, project and ownership context
// joined in, or nil when absent.
func (r *ProjectTimerRepository) FindByID(ctx context.Context, id int) (*model.ProjectTimer, error) {
	query := `
        SELECT pt.id, pt.project_id, pt.timer_id, pt.created_at,
               t.task_name, t.header_color, t.price_per_hour,
               p.status, c.user_id
        FROM project_timers pt
        JOIN timers t ON t.id = pt.timer_id
        JOIN projects p ON p.id = pt.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE pt.id = $1
    `
	var pt model.ProjectTimer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pt.ID, &pt.ProjectID, &pt.TimerID, &pt.CreatedAt,
		&pt.TaskName, &pt.HeaderColor, &pt.PricePerHour,
		&pt.ProjectStatus, &pt.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// ListByProject returns the assignments of a project, newest first.
func (r *ProjectTimerRepository) ListByProject(ctx context.Context, projectID int) ([]model.ProjectTimer, error) {
	query := `
        SELECT pt.id, pt.project_id, pt.timer_id, pt.created_at,
               t.task_name, t.header_color, t.price_per_hour,
               p.status, c.user_id
        FROM project_timers pt
        JOIN timers t ON t.id = pt.timer_id
        JOIN projects p ON p.id = pt.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE pt.project_id = $1
        ORDER BY pt.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.ProjectTimer
	for rows.Next() {
		var pt model.ProjectTimer
		if err := rows.Scan(
			&pt.ID, &pt.ProjectID, &pt.TimerID, &pt.CreatedAt,
			&pt.TaskName, &pt.HeaderColor, &pt.PricePerHour,
			&pt.ProjectStatus, &pt.OwnerID,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, pt)
	}
	return assignments, rows.Err()
}

// Delete removes an assignment and, via cascade, its sessions.
func (r *ProjectTimerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM project_timers WHERE id = $1`, id)
	return err
}
