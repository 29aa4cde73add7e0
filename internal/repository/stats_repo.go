package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TimerStats is one admin-panel row for a timer template.
type TimerStats struct {
	TimerID  int    `json:"timer_id"`
	TaskName string `json:"task_name"`
	Projects int    `json:"projects"`
	Sessions int    `json:"sessions"`
}

// CustomerStats is one admin-panel row for a customer.
type CustomerStats struct {
	CustomerID int    `json:"customer_id"`
	Name       string `json:"name"`
	Projects   int    `json:"projects"`
}

// ProjectStats is one admin-panel row for a project.
type ProjectStats struct {
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Timers    int    `json:"timers"`
	Sessions  int    `json:"sessions"`
}

// StatsRepository serves the owner panel's count rollups.
type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) TimerStats(ctx context.Context, ownerID int) ([]TimerStats, error) {
	rows, err := r.db.Query(ctx, `
        SELECT t.id, t.task_name,
               COUNT(DISTINCT pt.project_id),
               COUNT(s.id)
        FROM timers t
        LEFT JOIN project_timers pt ON pt.timer_id = t.id
        LEFT JOIN timer_sessions s ON s.project_timer_id = pt.id
        WHERE t.user_id = $1
        GROUP BY t.id, t.task_name
        ORDER BY t.task_name ASC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []TimerStats
	for rows.Next() {
		var s TimerStats
		if err := rows.Scan(&s.TimerID, &s.TaskName, &s.Projects, &s.Sessions); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *StatsRepository) CustomerStats(ctx context.Context, ownerID int) ([]CustomerStats, error) {
	rows, err := r.db.Query(ctx, `
        SELECT c.id, c.name, COUNT(p.id)
        FROM customers c
        LEFT JOIN projects p ON p.customer_id = c.id
        WHERE c.user_id = $1
        GROUP BY c.id, c.name
        ORDER BY c.name ASC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CustomerStats
	for rows.Next() {
		var s CustomerStats
		if err := rows.Scan(&s.CustomerID, &s.Name, &s.Projects); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *StatsRepository) ProjectStats(ctx context.Context, ownerID int) ([]ProjectStats, error) {
	rows, err := r.db.Query(ctx, `
        SELECT p.id, p.name, p.status,
               COUNT(DISTINCT pt.timer_id),
               COUNT(s.id)
        FROM projects p
        JOIN customers c ON c.id = p.customer_id
        LEFT JOIN project_timers pt ON pt.project_id = p.id
        LEFT JOIN timer_sessions s ON s.project_timer_id = pt.id
        WHERE c.user_id = $1
        GROUP BY p.id, p.name, p.status
        ORDER BY p.name ASC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ProjectStats
	for rows.Next() {
		var s ProjectStats
		if err := rows.Scan(&s.ProjectID, &s.Name, &s.Status, &s.Timers, &s.Sessions); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
