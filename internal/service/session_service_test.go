package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/internal/repository"
	"timekeep/internal/workspace"
)

var testStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type memMembership struct {
	owners  map[int]int
	members map[int][]int
}

func (m *memMembership) OwnerOf(_ context.Context, memberID int) (int, bool, error) {
	owner, ok := m.owners[memberID]
	return owner, ok, nil
}

func (m *memMembership) MemberIDs(_ context.Context, ownerID int) ([]int, error) {
	return m.members[ownerID], nil
}

type memAssignments struct {
	byID map[int]*model.ProjectTimer
}

func (m *memAssignments) FindByID(_ context.Context, id int) (*model.ProjectTimer, error) {
	return m.byID[id], nil
}

type memDeliverables struct {
	byID map[int]*model.Deliverable
}

func (m *memDeliverables) FindByID(_ context.Context, id int) (*model.Deliverable, error) {
	return m.byID[id], nil
}

// memSessions mirrors the SQL repository's lifecycle checks in memory.
type memSessions struct {
	assignments *memAssignments
	nextID      int
	byID        map[int]*model.TimerSession
}

func newMemSessions(assignments *memAssignments) *memSessions {
	return &memSessions{assignments: assignments, nextID: 1, byID: make(map[int]*model.TimerSession)}
}

func (m *memSessions) Start(_ context.Context, assignmentID, actorID int, now time.Time) (*model.TimerSession, error) {
	pt := m.assignments.byID[assignmentID]
	if pt == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if pt.ProjectStatus == model.ProjectCompleted {
		return nil, apperr.Conflictf("cannot start timer on a completed project")
	}
	for _, s := range m.byID {
		if s.ProjectTimerID == assignmentID && s.EndTime == nil {
			return nil, apperr.Conflictf("timer is already running")
		}
	}
	s := &model.TimerSession{
		ID:             m.nextID,
		ProjectTimerID: assignmentID,
		StartTime:      now,
		PricePerHour:   pt.PricePerHour,
		CreatedBy:      &actorID,
		OwnerID:        pt.OwnerID,
		ProjectID:      pt.ProjectID,
	}
	m.nextID++
	m.byID[s.ID] = s
	return s, nil
}

func (m *memSessions) Pause(_ context.Context, id int, now time.Time) (*model.TimerSession, error) {
	s := m.byID[id]
	if s == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.Pause(now); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *memSessions) Resume(_ context.Context, id int, now time.Time) (*model.TimerSession, error) {
	s := m.byID[id]
	if s == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if _, err := s.Resume(now); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *memSessions) Stop(_ context.Context, id int, now time.Time) (*model.TimerSession, error) {
	s := m.byID[id]
	if s == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.Stop(now); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *memSessions) FindByID(_ context.Context, id int) (*model.TimerSession, error) {
	s := m.byID[id]
	if s == nil {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Update(_ context.Context, s *model.TimerSession) error {
	m.byID[s.ID] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id int) error {
	delete(m.byID, id)
	return nil
}

func (m *memSessions) ListOpenByOwners(_ context.Context, ownerIDs []int) ([]repository.OpenSession, error) {
	var out []repository.OpenSession
	for _, s := range m.byID {
		if s.EndTime != nil {
			continue
		}
		for _, owner := range ownerIDs {
			if s.OwnerID == owner {
				out = append(out, repository.OpenSession{TimerSession: *s})
				break
			}
		}
	}
	return out, nil
}

func (m *memSessions) ListByAssignment(_ context.Context, assignmentID int) ([]model.TimerSession, error) {
	var out []model.TimerSession
	for _, s := range m.byID {
		if s.ProjectTimerID == assignmentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fixture struct {
	svc          *SessionService
	sessions     *memSessions
	assignments  *memAssignments
	deliverables *memDeliverables
	clock        time.Time
}

// newFixture wires a workspace where user 1 owns the workspace and user 2 is
// a member. Assignment 10 belongs to owner 1, assignment 20 to outsider 9.
func newFixture() *fixture {
	assignments := &memAssignments{byID: map[int]*model.ProjectTimer{
		10: {ID: 10, ProjectID: 100, TimerID: 1, PricePerHour: 100, ProjectStatus: model.ProjectActive, OwnerID: 1},
		11: {ID: 11, ProjectID: 101, TimerID: 1, PricePerHour: 100, ProjectStatus: model.ProjectCompleted, OwnerID: 1},
		20: {ID: 20, ProjectID: 200, TimerID: 2, PricePerHour: 50, ProjectStatus: model.ProjectActive, OwnerID: 9},
	}}
	deliverables := &memDeliverables{byID: map[int]*model.Deliverable{
		5: {ID: 5, Name: "logo", ProjectID: 100, OwnerID: 1},
		6: {ID: 6, Name: "other", ProjectID: 300, OwnerID: 1},
	}}
	membership := &memMembership{
		owners:  map[int]int{2: 1},
		members: map[int][]int{1: {2}},
	}
	resolver := workspace.NewResolver(membership, nil, zap.NewNop())
	sessions := newMemSessions(assignments)

	f := &fixture{
		svc:          NewSessionService(sessions, assignments, deliverables, resolver, zap.NewNop()),
		sessions:     sessions,
		assignments:  assignments,
		deliverables: deliverables,
		clock:        testStart,
	}
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestStartAndStop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.svc.Start(ctx, 2, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.PricePerHour != 100 {
		t.Fatalf("snapshot price = %v, want 100", s.PricePerHour)
	}

	f.clock = testStart.Add(2 * time.Hour)
	s, err = f.svc.Stop(ctx, 2, s.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := s.Cost(); got != 200 {
		t.Fatalf("cost = %v, want 200", got)
	}
}

func TestStartTwiceConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 1, 10); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := f.svc.Start(ctx, 2, 10)
	if !apperr.IsConflict(err) {
		t.Fatalf("second start: got %v, want conflict", err)
	}
}

func TestStartOnCompletedProjectConflicts(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Start(context.Background(), 1, 11)
	if !apperr.IsConflict(err) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestForeignAssignmentLooksAbsent(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Start(context.Background(), 1, 20)
	if !apperr.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestForeignSessionLooksAbsent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// An outsider starts a session in their own workspace.
	s, err := f.svc.Start(ctx, 9, 20)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := f.svc.Stop(ctx, 1, s.ID); !apperr.IsNotFound(err) {
		t.Fatalf("foreign stop: got %v, want not found", err)
	}
}

func TestPauseResumeStates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.svc.Start(ctx, 1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.Resume(ctx, 1, s.ID); !apperr.IsInvalidState(err) {
		t.Fatalf("resume running: got %v, want invalid state", err)
	}
	if _, err := f.svc.Pause(ctx, 1, s.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := f.svc.Pause(ctx, 1, s.ID); !apperr.IsInvalidState(err) {
		t.Fatalf("double pause: got %v, want invalid state", err)
	}
	f.clock = testStart.Add(10 * time.Minute)
	if _, err := f.svc.Resume(ctx, 1, s.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	f.clock = testStart.Add(time.Hour)
	if _, err := f.svc.Stop(ctx, 1, s.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := f.svc.Pause(ctx, 1, s.ID); !apperr.IsInvalidState(err) {
		t.Fatalf("pause stopped: got %v, want invalid state", err)
	}
}

func TestEditValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.svc.Start(ctx, 1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock = testStart.Add(time.Hour)
	if _, err := f.svc.Stop(ctx, 1, s.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}

	before := testStart.Add(-time.Hour)
	_, err = f.svc.Edit(ctx, 1, s.ID, SessionEdit{EndTime: &before})
	if !apperr.IsValidation(err) {
		t.Fatalf("end before start: got %v, want validation error", err)
	}

	wrongProject := 6
	_, err = f.svc.Edit(ctx, 1, s.ID, SessionEdit{DeliverableID: &wrongProject})
	if !apperr.IsValidation(err) {
		t.Fatalf("cross-project deliverable: got %v, want validation error", err)
	}

	right := 5
	note := "rework"
	edited, err := f.svc.Edit(ctx, 1, s.ID, SessionEdit{DeliverableID: &right, Note: &note})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.DeliverableID == nil || *edited.DeliverableID != 5 || edited.Note != "rework" {
		t.Fatalf("edit result = %+v", edited)
	}

	cleared, err := f.svc.Edit(ctx, 1, s.ID, SessionEdit{ClearDeliverable: true})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.DeliverableID != nil {
		t.Fatalf("deliverable not cleared: %+v", cleared)
	}
}

func TestEditKeepsPausesInBounds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.svc.Start(ctx, 1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock = testStart.Add(30 * time.Minute)
	if _, err := f.svc.Pause(ctx, 1, s.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	f.clock = testStart.Add(55 * time.Minute)
	if _, err := f.svc.Resume(ctx, 1, s.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	f.clock = testStart.Add(2 * time.Hour)
	if _, err := f.svc.Stop(ctx, 1, s.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// Moving the start past the recorded pause strands it outside the window.
	lateStart := testStart.Add(time.Hour)
	if _, err := f.svc.Edit(ctx, 1, s.ID, SessionEdit{StartTime: &lateStart}); !apperr.IsValidation(err) {
		t.Fatalf("start past pause: got %v, want validation error", err)
	}

	// Moving the end into the middle of the pause strands its tail.
	midPause := testStart.Add(45 * time.Minute)
	if _, err := f.svc.Edit(ctx, 1, s.ID, SessionEdit{EndTime: &midPause}); !apperr.IsValidation(err) {
		t.Fatalf("end inside pause: got %v, want validation error", err)
	}

	// A window that still contains the pause is accepted and billed for
	// 90 minutes of wall clock minus the 25 minute pause.
	newEnd := testStart.Add(90 * time.Minute)
	edited, err := f.svc.Edit(ctx, 1, s.ID, SessionEdit{EndTime: &newEnd})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := edited.DurationSeconds(time.Time{}); got != 3900 {
		t.Fatalf("duration = %v, want 3900", got)
	}
}

func TestCostIgnoresLaterRateChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.svc.Start(ctx, 1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// A rate hike on the assignment mid-session must not reprice it.
	f.assignments.byID[10].PricePerHour = 150

	f.clock = testStart.Add(2 * time.Hour)
	s, err = f.svc.Stop(ctx, 1, s.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := s.Cost(); got != 200 {
		t.Fatalf("cost = %v, want 200 at the starting rate", got)
	}
}

func TestRunningIsWorkspaceScoped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 1, 10); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.Start(ctx, 9, 20); err != nil {
		t.Fatalf("outsider start: %v", err)
	}

	running, err := f.svc.Running(ctx, 2)
	if err != nil {
		t.Fatalf("running: %v", err)
	}
	if len(running) != 1 {
		t.Fatalf("running = %d sessions, want 1", len(running))
	}
	if running[0].OwnerID != 1 {
		t.Fatalf("running session owner = %d, want 1", running[0].OwnerID)
	}
}
