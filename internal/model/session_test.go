package model

import (
	"math"
	"testing"
	"time"

	"timekeep/internal/apperr"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func openSession(start time.Time) *TimerSession {
	return &TimerSession{ID: 1, ProjectTimerID: 5, StartTime: start, PricePerHour: 100}
}

func TestPauseResumeExcludesPausedTime(t *testing.T) {
	s := openSession(base)

	if err := s.Pause(base.Add(30 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !s.IsPaused() {
		t.Fatal("expected session to be paused")
	}
	if _, err := s.Resume(base.Add(55 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := s.Stop(base.Add(2 * time.Hour)); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// 7200s wall clock minus a 1500s pause.
	got := s.DurationSeconds(time.Time{})
	if got != 5700 {
		t.Fatalf("duration = %v, want 5700", got)
	}
}

func TestTwoCompletedPauses(t *testing.T) {
	s := openSession(base)

	if err := s.Pause(base.Add(10 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := s.Resume(base.Add(20 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := s.Pause(base.Add(40 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := s.Resume(base.Add(55 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := s.Stop(base.Add(2 * time.Hour)); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// Two pauses of 600s and 900s over two hours of wall clock.
	if got := s.DurationSeconds(time.Time{}); got != 5700 {
		t.Fatalf("duration = %v, want 5700", got)
	}
	if len(s.Pauses) != 2 {
		t.Fatalf("pauses = %d, want 2", len(s.Pauses))
	}
}

func TestStopWhilePausedEndsAtPauseStart(t *testing.T) {
	s := openSession(base)

	if err := s.Pause(base.Add(time.Hour)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.Stop(base.Add(2 * time.Hour)); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if got := s.DurationSeconds(time.Time{}); got != 3600 {
		t.Fatalf("duration = %v, want 3600", got)
	}
	if len(s.Pauses) != 0 {
		t.Fatalf("trailing pause must not be recorded, got %d pauses", len(s.Pauses))
	}
}

func TestRunningDurationUsesNow(t *testing.T) {
	s := openSession(base)
	if got := s.DurationSeconds(base.Add(90 * time.Minute)); got != 5400 {
		t.Fatalf("duration = %v, want 5400", got)
	}
}

func TestPausedDurationFreezes(t *testing.T) {
	s := openSession(base)
	if err := s.Pause(base.Add(20 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	// Now keeps moving, the billed duration does not.
	if got := s.DurationSeconds(base.Add(3 * time.Hour)); got != 1200 {
		t.Fatalf("duration = %v, want 1200", got)
	}
}

func TestInvalidTransitions(t *testing.T) {
	s := openSession(base)
	if _, err := s.Resume(base.Add(time.Minute)); !apperr.IsInvalidState(err) {
		t.Fatalf("resume on running session: got %v, want invalid state", err)
	}

	if err := s.Pause(base.Add(time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.Pause(base.Add(2 * time.Minute)); !apperr.IsInvalidState(err) {
		t.Fatalf("double pause: got %v, want invalid state", err)
	}

	if err := s.Stop(base.Add(3 * time.Minute)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(base.Add(4 * time.Minute)); !apperr.IsInvalidState(err) {
		t.Fatalf("double stop: got %v, want invalid state", err)
	}
	if err := s.Pause(base.Add(4 * time.Minute)); !apperr.IsInvalidState(err) {
		t.Fatalf("pause after stop: got %v, want invalid state", err)
	}
}

func TestCostUsesSnapshotPrice(t *testing.T) {
	s := openSession(base)
	if got := s.Cost(); got != 0 {
		t.Fatalf("open session cost = %v, want 0", got)
	}

	if err := s.Stop(base.Add(2 * time.Hour)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := s.Cost(); got != 200 {
		t.Fatalf("cost = %v, want 200", got)
	}

	// Cost reads the session's own snapshot field, so moving it reprices.
	s.PricePerHour = 150
	if got := s.Cost(); got != 300 {
		t.Fatalf("cost after snapshot change = %v, want 300", got)
	}
}

func TestResumeAtPauseStartRejected(t *testing.T) {
	s := openSession(base)
	if err := s.Pause(base.Add(30 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := s.Resume(base.Add(30 * time.Minute)); !apperr.IsInvalidState(err) {
		t.Fatalf("zero-length resume: got %v, want invalid state", err)
	}
	if !s.IsPaused() {
		t.Fatal("rejected resume must leave the session paused")
	}
	if _, err := s.Resume(base.Add(31 * time.Minute)); err != nil {
		t.Fatalf("later resume: %v", err)
	}
	if len(s.Pauses) != 1 {
		t.Fatalf("pauses = %d, want 1", len(s.Pauses))
	}
}

func TestCostRoundsToCents(t *testing.T) {
	s := openSession(base)
	s.PricePerHour = 99.99
	if err := s.Stop(base.Add(1000 * time.Second)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// 99.99 * 1000/3600 = 27.775
	if got := s.Cost(); got != 27.78 {
		t.Fatalf("cost = %v, want 27.78", got)
	}
}

func TestDurationNeverNegative(t *testing.T) {
	s := openSession(base)
	end := base.Add(-time.Hour)
	s.EndTime = &end
	if got := s.DurationSeconds(time.Time{}); got != 0 {
		t.Fatalf("duration = %v, want 0", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.005, 1.0}, // 1.005 is stored just below 1.005
		{2.675, 2.68},
		{0, 0},
		{-1.238, -1.24},
	}
	for _, c := range cases {
		if got := Round2(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
