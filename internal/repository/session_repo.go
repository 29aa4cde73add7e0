package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"timekeep/internal/analytics"
	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/pkg/metrics"
)

// SessionRepository persists timer sessions and runs the lifecycle
// transitions. Every transition is a single transaction that locks the
// affected row first, so transitions on one assignment are linearized.
type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// pauseAdjustedDuration computes billed seconds in SQL: wall clock up to the
// effective end (clamped to a trailing pause start) minus completed pauses.
const pauseAdjustedDuration = `
    GREATEST(0, EXTRACT(EPOCH FROM (
        LEAST(s.end_time, COALESCE(s.pause_start_time, s.end_time)) - s.start_time
    )) - COALESCE(pz.paused_seconds, 0))
`

const pauseTotalsJoin = `
    LEFT JOIN (
        SELECT session_id,
               SUM(EXTRACT(EPOCH FROM (pause_end_time - pause_start_time))) AS paused_seconds
        FROM timer_pauses
        GROUP BY session_id
    ) pz ON pz.session_id = s.id
`

// Start opens a session on an assignment. The assignment row is locked for
// the duration of the check so two concurrent starts cannot both pass; the
// partial unique index on open sessions is the backstop.
func (r *SessionRepository) Start(ctx context.Context, assignmentID, actorID int, now time.Time) (*model.TimerSession, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	var price float64
	err = tx.QueryRow(ctx, `
        SELECT p.status, t.price_per_hour
        FROM project_timers pt
        JOIN projects p ON p.id = pt.project_id
        JOIN timers t ON t.id = pt.timer_id
        WHERE pt.id = $1
        FOR UPDATE OF pt
    `, assignmentID).Scan(&status, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("not found")
	}
	if err != nil {
		return nil, err
	}

	if status == model.ProjectCompleted {
		return nil, apperr.Conflictf("cannot start timer on a completed project")
	}

	var open bool
	if err := tx.QueryRow(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM timer_sessions
            WHERE project_timer_id = $1 AND end_time IS NULL
        )
    `, assignmentID).Scan(&open); err != nil {
		return nil, err
	}
	if open {
		return nil, apperr.Conflictf("timer is already running")
	}

	s := &model.TimerSession{
		ProjectTimerID: assignmentID,
		StartTime:      now,
		PricePerHour:   price,
		CreatedBy:      &actorID,
	}
	err = tx.QueryRow(ctx, `
        INSERT INTO timer_sessions (project_timer_id, start_time, price_per_hour, note, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, '', $4, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `, assignmentID, now, price, actorID).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if isUniqueViolation(err) {
		// A concurrent start won the race past our check.
		return nil, apperr.Conflictf("timer is already running")
	}
	if err != nil {
		r.logger.Error("Failed to insert session", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("Session started",
		zap.Int("session_id", s.ID),
		zap.Int("assignment_id", assignmentID),
		zap.Int("user_id", actorID),
	)
	return s, nil
}

// Pause suspends a running session.
func (r *SessionRepository) Pause(ctx context.Context, sessionID int, now time.Time) (*model.TimerSession, error) {
	return r.transition(ctx, sessionID, func(tx pgx.Tx, s *model.TimerSession) error {
		if err := s.Pause(now); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
            UPDATE timer_sessions SET pause_start_time = $1, updated_at = NOW() WHERE id = $2
        `, s.PauseStartTime, s.ID)
		return err
	})
}

// Resume completes the active pause, recording it in the pause history.
func (r *SessionRepository) Resume(ctx context.Context, sessionID int, now time.Time) (*model.TimerSession, error) {
	return r.transition(ctx, sessionID, func(tx pgx.Tx, s *model.TimerSession) error {
		pause, err := s.Resume(now)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO timer_pauses (session_id, pause_start_time, pause_end_time, created_at)
            VALUES ($1, $2, $3, NOW())
        `, pause.SessionID, pause.PauseStartTime, pause.PauseEndTime); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
            UPDATE timer_sessions SET pause_start_time = NULL, updated_at = NOW() WHERE id = $1
        `, s.ID)
		return err
	})
}

// Stop closes a running or paused session. A trailing pause stays
// unrecorded; the duration math stops at the pause point.
func (r *SessionRepository) Stop(ctx context.Context, sessionID int, now time.Time) (*model.TimerSession, error) {
	return r.transition(ctx, sessionID, func(tx pgx.Tx, s *model.TimerSession) error {
		if err := s.Stop(now); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
            UPDATE timer_sessions SET end_time = $1, updated_at = NOW() WHERE id = $2
        `, s.EndTime, s.ID)
		return err
	})
}

// transition locks the session row, applies the state change, and commits.
func (r *SessionRepository) transition(ctx context.Context, sessionID int, apply func(pgx.Tx, *model.TimerSession) error) (*model.TimerSession, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var s model.TimerSession
	err = tx.QueryRow(ctx, `
        SELECT id, project_timer_id, start_time, end_time, price_per_hour, note,
               deliverable_id, created_by, pause_start_time, created_at, updated_at
        FROM timer_sessions
        WHERE id = $1
        FOR UPDATE
    `, sessionID).Scan(
		&s.ID, &s.ProjectTimerID, &s.StartTime, &s.EndTime, &s.PricePerHour, &s.Note,
		&s.DeliverableID, &s.CreatedBy, &s.PauseStartTime, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("not found")
	}
	if err != nil {
		return nil, err
	}

	if err := apply(tx, &s); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByID returns a session with its ownership context and pause history,
// or nil when absent.
func (r *SessionRepository) FindByID(ctx context.Context, id int) (*model.TimerSession, error) {
	var s model.TimerSession
	err := r.db.QueryRow(ctx, `
        SELECT s.id, s.project_timer_id, s.start_time, s.end_time, s.price_per_hour, s.note,
               s.deliverable_id, s.created_by, s.pause_start_time, s.created_at, s.updated_at,
               pt.project_id, c.user_id
        FROM timer_sessions s
        JOIN project_timers pt ON pt.id = s.project_timer_id
        JOIN projects p ON p.id = pt.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE s.id = $1
    `, id).Scan(
		&s.ID, &s.ProjectTimerID, &s.StartTime, &s.EndTime, &s.PricePerHour, &s.Note,
		&s.DeliverableID, &s.CreatedBy, &s.PauseStartTime, &s.CreatedAt, &s.UpdatedAt,
		&s.ProjectID, &s.OwnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pauses, err := r.listPauses(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Pauses = pauses
	return &s, nil
}

func (r *SessionRepository) listPauses(ctx context.Context, sessionID int) ([]model.TimerPause, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, session_id, pause_start_time, pause_end_time, created_at
        FROM timer_pauses
        WHERE session_id = $1
        ORDER BY pause_start_time ASC
    `, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pauses []model.TimerPause
	for rows.Next() {
		var p model.TimerPause
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PauseStartTime, &p.PauseEndTime, &p.CreatedAt); err != nil {
			return nil, err
		}
		pauses = append(pauses, p)
	}
	return pauses, rows.Err()
}

// Update persists the manual-override edit of a session's times, note and
// deliverable tag. It bypasses the state machine on purpose.
func (r *SessionRepository) Update(ctx context.Context, s *model.TimerSession) error {
	_, err := r.db.Exec(ctx, `
        UPDATE timer_sessions
        SET start_time = $1, end_time = $2, note = $3, deliverable_id = $4, updated_at = NOW()
        WHERE id = $5
    `, s.StartTime, s.EndTime, s.Note, s.DeliverableID, s.ID)
	return err
}

// Delete removes a session; its pause rows go via FK cascade.
func (r *SessionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM timer_sessions WHERE id = $1`, id)
	return err
}

// OpenSession is an open (running or paused) session with display context.
type OpenSession struct {
	model.TimerSession
	TaskName     string `json:"task_name"`
	HeaderColor  string `json:"header_color"`
	ProjectName  string `json:"project_name"`
	CustomerName string `json:"customer_name"`
}

// ListOpenByOwners returns all open sessions across a workspace, newest
// first.
func (r *SessionRepository) ListOpenByOwners(ctx context.Context, ownerIDs []int) ([]OpenSession, error) {
	rows, err := r.db.Query(ctx, `
        SELECT s.id, s.project_timer_id, s.start_time, s.end_time, s.price_per_hour, s.note,
               s.deliverable_id, s.created_by, s.pause_start_time, s.created_at, s.updated_at,
               pt.project_id, c.user_id,
               t.task_name, t.header_color, p.name, c.name
        FROM timer_sessions s
        JOIN project_timers pt ON pt.id = s.project_timer_id
        JOIN timers t ON t.id = pt.timer_id
        JOIN projects p ON p.id = pt.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE c.user_id = ANY($1) AND s.end_time IS NULL
        ORDER BY s.start_time DESC
    `, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []OpenSession
	for rows.Next() {
		var s OpenSession
		if err := rows.Scan(
			&s.ID, &s.ProjectTimerID, &s.StartTime, &s.EndTime, &s.PricePerHour, &s.Note,
			&s.DeliverableID, &s.CreatedBy, &s.PauseStartTime, &s.CreatedAt, &s.UpdatedAt,
			&s.ProjectID, &s.OwnerID,
			&s.TaskName, &s.HeaderColor, &s.ProjectName, &s.CustomerName,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListByAssignment returns an assignment's sessions, newest first, with
// pause history attached.
func (r *SessionRepository) ListByAssignment(ctx context.Context, assignmentID int) ([]model.TimerSession, error) {
	rows, err := r.db.Query(ctx, `
        SELECT s.id, s.project_timer_id, s.start_time, s.end_time, s.price_per_hour, s.note,
               s.deliverable_id, s.created_by, s.pause_start_time, s.created_at, s.updated_at,
               pt.project_id, c.user_id
        FROM timer_sessions s
        JOIN project_timers pt ON pt.id = s.project_timer_id
        JOIN projects p ON p.id = pt.project_id
        JOIN customers c ON c.id = p.customer_id
        WHERE s.project_timer_id = $1
        ORDER BY s.start_time DESC
    `, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TimerSession
	for rows.Next() {
		var s model.TimerSession
		if err := rows.Scan(
			&s.ID, &s.ProjectTimerID, &s.StartTime, &s.EndTime, &s.PricePerHour, &s.Note,
			&s.DeliverableID, &s.CreatedBy, &s.PauseStartTime, &s.CreatedAt, &s.UpdatedAt,
			&s.ProjectID, &s.OwnerID,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		pauses, err := r.listPauses(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Pauses = pauses
	}
	return sessions, nil
}

// FactFilter narrows the closed-session fact query to one entity. Zero
// fields are ignored.
type FactFilter struct {
	CustomerID    int
	ProjectID     int
	AssignmentID  int
	DeliverableID int
}

// ListFacts returns the flattened closed sessions of a workspace for the
// aggregation engine, optionally narrowed to one entity.
func (r *SessionRepository) ListFacts(ctx context.Context, ownerIDs []int, filter FactFilter) ([]analytics.SessionFact, error) {
	started := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("list_facts", "timer_sessions", time.Since(started))
	}()

	query := `
        SELECT s.id, s.project_timer_id,
               t.id, t.task_name, t.header_color,
               p.id, p.name, p.status,
               c.id, c.name,
               s.deliverable_id, COALESCE(d.name, ''),
               s.created_by, s.end_time, s.price_per_hour,
               ` + pauseAdjustedDuration + ` AS duration_seconds
        FROM timer_sessions s
        JOIN project_timers pt ON pt.id = s.project_timer_id
        JOIN timers t ON t.id = pt.timer_id
        JOIN projects p ON p.id = pt.project_id
        JOIN customers c ON c.id = p.customer_id
        LEFT JOIN deliverables d ON d.id = s.deliverable_id
        ` + pauseTotalsJoin + `
        WHERE c.user_id = ANY($1) AND s.end_time IS NOT NULL
    `
	args := []any{ownerIDs}
	addFilter := func(column string, value int) {
		if value == 0 {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	addFilter("c.id", filter.CustomerID)
	addFilter("p.id", filter.ProjectID)
	addFilter("pt.id", filter.AssignmentID)
	addFilter("s.deliverable_id", filter.DeliverableID)
	query += ` ORDER BY s.end_time ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []analytics.SessionFact
	for rows.Next() {
		var f analytics.SessionFact
		if err := rows.Scan(
			&f.SessionID, &f.AssignmentID,
			&f.TimerID, &f.TimerName, &f.TimerColor,
			&f.ProjectID, &f.ProjectName, &f.ProjectStatus,
			&f.CustomerID, &f.CustomerName,
			&f.DeliverableID, &f.DeliverableName,
			&f.CreatedBy, &f.EndTime, &f.PricePerHour,
			&f.DurationSeconds,
		); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
