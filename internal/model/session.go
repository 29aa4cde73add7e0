package model

import (
	"math"
	"time"

	"timekeep/internal/apperr"
)

// TimerSession is one timed interval of work against a project/timer binding.
// end_time null means the session is still open (running or paused).
// price_per_hour is snapshotted from the timer at start and never updated.
type TimerSession struct {
	ID             int        `json:"id"`
	ProjectTimerID int        `json:"project_timer_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	PricePerHour   float64    `json:"price_per_hour"`
	Note           string     `json:"note"`
	DeliverableID  *int       `json:"deliverable_id"`
	CreatedBy      *int       `json:"created_by"`
	PauseStartTime *time.Time `json:"pause_start_time"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Pauses holds the completed pause intervals, loaded with the session.
	Pauses []TimerPause `json:"pauses,omitempty"`

	OwnerID   int `json:"-"`
	ProjectID int `json:"-"`
}

func (s *TimerSession) WorkspaceOwner() int { return s.OwnerID }

// TimerPause is a completed (already resumed) pause interval of a session.
type TimerPause struct {
	ID             int       `json:"id"`
	SessionID      int       `json:"session_id"`
	PauseStartTime time.Time `json:"pause_start_time"`
	PauseEndTime   time.Time `json:"pause_end_time"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *TimerSession) IsClosed() bool { return s.EndTime != nil }

func (s *TimerSession) IsPaused() bool { return s.EndTime == nil && s.PauseStartTime != nil }

func (s *TimerSession) IsRunning() bool { return s.EndTime == nil && s.PauseStartTime == nil }

// Pause suspends a running session.
func (s *TimerSession) Pause(now time.Time) error {
	if s.IsClosed() {
		return apperr.InvalidStatef("session is already stopped")
	}
	if s.IsPaused() {
		return apperr.InvalidStatef("session is already paused")
	}
	t := now
	s.PauseStartTime = &t
	return nil
}

// Resume completes the active pause and returns it for persistence.
func (s *TimerSession) Resume(now time.Time) (TimerPause, error) {
	if !s.IsPaused() {
		return TimerPause{}, apperr.InvalidStatef("session is not paused")
	}
	// Zero-length pauses cannot be stored; pause intervals are strictly
	// positive.
	if !now.After(*s.PauseStartTime) {
		return TimerPause{}, apperr.InvalidStatef("resume time must be after the pause start")
	}
	pause := TimerPause{
		SessionID:      s.ID,
		PauseStartTime: *s.PauseStartTime,
		PauseEndTime:   now,
	}
	s.Pauses = append(s.Pauses, pause)
	s.PauseStartTime = nil
	return pause, nil
}

// Stop closes a running or paused session. A still-active pause is not
// recorded as a TimerPause row; the duration math stops at the pause point.
func (s *TimerSession) Stop(now time.Time) error {
	if s.IsClosed() {
		return apperr.InvalidStatef("session is already stopped")
	}
	t := now
	s.EndTime = &t
	return nil
}

// DurationSeconds returns the billed duration: wall clock up to the
// effective end, minus all completed pauses. An in-progress (or trailing,
// never-resumed) pause is excluded by clamping the effective end to the
// pause start.
func (s *TimerSession) DurationSeconds(now time.Time) float64 {
	effectiveEnd := now
	switch {
	case s.EndTime != nil:
		effectiveEnd = *s.EndTime
		if s.PauseStartTime != nil && s.PauseStartTime.Before(effectiveEnd) {
			effectiveEnd = *s.PauseStartTime
		}
	case s.PauseStartTime != nil:
		effectiveEnd = *s.PauseStartTime
	}

	duration := effectiveEnd.Sub(s.StartTime).Seconds()
	for _, p := range s.Pauses {
		duration -= p.PauseEndTime.Sub(p.PauseStartTime).Seconds()
	}
	if duration < 0 {
		return 0
	}
	return duration
}

// Cost returns the billed amount for a closed session using the snapshot
// price. Open sessions bill nothing until stopped.
func (s *TimerSession) Cost() float64 {
	if s.EndTime == nil {
		return 0
	}
	hours := s.DurationSeconds(*s.EndTime) / 3600
	return Round2(s.PricePerHour * hours)
}

// Round2 rounds a monetary amount to two decimal places. Callers apply it at
// the reporting boundary only; intermediate sums keep full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
