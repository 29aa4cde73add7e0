package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/internal/repository"
	"timekeep/internal/workspace"
	"timekeep/pkg/metrics"
)

// SessionStore is the persistence surface of the session lifecycle. The pgx
// session repository implements it; tests use an in-memory one.
type SessionStore interface {
	Start(ctx context.Context, assignmentID, actorID int, now time.Time) (*model.TimerSession, error)
	Pause(ctx context.Context, sessionID int, now time.Time) (*model.TimerSession, error)
	Resume(ctx context.Context, sessionID int, now time.Time) (*model.TimerSession, error)
	Stop(ctx context.Context, sessionID int, now time.Time) (*model.TimerSession, error)
	FindByID(ctx context.Context, id int) (*model.TimerSession, error)
	Update(ctx context.Context, s *model.TimerSession) error
	Delete(ctx context.Context, id int) error
	ListOpenByOwners(ctx context.Context, ownerIDs []int) ([]repository.OpenSession, error)
	ListByAssignment(ctx context.Context, assignmentID int) ([]model.TimerSession, error)
}

type AssignmentStore interface {
	FindByID(ctx context.Context, id int) (*model.ProjectTimer, error)
}

type DeliverableStore interface {
	FindByID(ctx context.Context, id int) (*model.Deliverable, error)
}

// SessionEdit is the manual-override patch applied to a closed or running
// session. Nil fields are left untouched.
type SessionEdit struct {
	StartTime        *time.Time
	EndTime          *time.Time
	Note             *string
	DeliverableID    *int
	ClearDeliverable bool
}

// SessionService runs the timer lifecycle on behalf of a workspace user.
// Every operation resolves the caller's workspace first; sessions outside
// it look absent.
type SessionService struct {
	sessions     SessionStore
	assignments  AssignmentStore
	deliverables DeliverableStore
	workspace    *workspace.Resolver
	logger       *zap.Logger
	now          func() time.Time
}

func NewSessionService(sessions SessionStore, assignments AssignmentStore, deliverables DeliverableStore, ws *workspace.Resolver, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions:     sessions,
		assignments:  assignments,
		deliverables: deliverables,
		workspace:    ws,
		logger:       logger,
		now:          time.Now,
	}
}

// Start opens a session on an assignment in the caller's workspace.
func (s *SessionService) Start(ctx context.Context, userID, assignmentID int) (*model.TimerSession, error) {
	pt, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, pt); err != nil {
		return nil, err
	}

	session, err := s.sessions.Start(ctx, assignmentID, userID, s.now())
	metrics.IncrementSessionTransition("start", outcome(err))
	return session, err
}

// Pause suspends a running session.
func (s *SessionService) Pause(ctx context.Context, userID, sessionID int) (*model.TimerSession, error) {
	return s.transition(ctx, userID, sessionID, "pause", s.sessions.Pause)
}

// Resume continues a paused session and records the completed pause.
func (s *SessionService) Resume(ctx context.Context, userID, sessionID int) (*model.TimerSession, error) {
	return s.transition(ctx, userID, sessionID, "resume", s.sessions.Resume)
}

// Stop closes a running or paused session.
func (s *SessionService) Stop(ctx context.Context, userID, sessionID int) (*model.TimerSession, error) {
	return s.transition(ctx, userID, sessionID, "stop", s.sessions.Stop)
}

func (s *SessionService) transition(ctx context.Context, userID, sessionID int, name string, apply func(context.Context, int, time.Time) (*model.TimerSession, error)) (*model.TimerSession, error) {
	if _, err := s.authorized(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	session, err := apply(ctx, sessionID, s.now())
	metrics.IncrementSessionTransition(name, outcome(err))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Session transition",
		zap.String("transition", name),
		zap.Int("session_id", sessionID),
		zap.Int("user_id", userID),
	)
	return session, nil
}

// Get returns a session with its pause history.
func (s *SessionService) Get(ctx context.Context, userID, sessionID int) (*model.TimerSession, error) {
	return s.authorized(ctx, userID, sessionID)
}

// Edit applies a manual override to a session's times, note and deliverable
// tag. It never touches pause state or the price snapshot.
func (s *SessionService) Edit(ctx context.Context, userID, sessionID int, edit SessionEdit) (*model.TimerSession, error) {
	session, err := s.authorized(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if edit.StartTime != nil {
		session.StartTime = *edit.StartTime
	}
	if edit.EndTime != nil {
		session.EndTime = edit.EndTime
	}
	if edit.Note != nil {
		session.Note = *edit.Note
	}
	if edit.ClearDeliverable {
		session.DeliverableID = nil
	} else if edit.DeliverableID != nil {
		d, err := s.deliverables.FindByID(ctx, *edit.DeliverableID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, apperr.NotFoundf("not found")
		}
		if err := s.workspace.Authorize(ctx, userID, d); err != nil {
			return nil, err
		}
		if d.ProjectID != session.ProjectID {
			return nil, apperr.Validationf("deliverable belongs to a different project")
		}
		session.DeliverableID = edit.DeliverableID
	}

	if session.EndTime != nil && session.EndTime.Before(session.StartTime) {
		return nil, apperr.Validationf("end time must not be before start time")
	}
	// Recorded pauses must stay inside the session window, or the billed
	// duration would subtract time the new window never contained.
	for _, p := range session.Pauses {
		if p.PauseStartTime.Before(session.StartTime) || (session.EndTime != nil && p.PauseEndTime.After(*session.EndTime)) {
			return nil, apperr.Validationf("pause lies outside the session bounds")
		}
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes a session and its pause history.
func (s *SessionService) Delete(ctx context.Context, userID, sessionID int) error {
	if _, err := s.authorized(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Running lists every open session in the caller's workspace.
func (s *SessionService) Running(ctx context.Context, userID int) ([]repository.OpenSession, error) {
	members, err := s.workspace.Members(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.sessions.ListOpenByOwners(ctx, members)
}

// History lists an assignment's sessions, newest first.
func (s *SessionService) History(ctx context.Context, userID, assignmentID int) ([]model.TimerSession, error) {
	pt, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if pt == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, pt); err != nil {
		return nil, err
	}
	return s.sessions.ListByAssignment(ctx, assignmentID)
}

func (s *SessionService) authorized(ctx context.Context, userID, sessionID int) (*model.TimerSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, session); err != nil {
		return nil, err
	}
	return session, nil
}

func outcome(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}
