package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"timekeep/internal/analytics"
	"timekeep/internal/apperr"
	"timekeep/internal/repository"
	"timekeep/internal/workspace"
)

// FactStore is the read surface of the aggregation engine.
type FactStore interface {
	ListFacts(ctx context.Context, ownerIDs []int, filter repository.FactFilter) ([]analytics.SessionFact, error)
}

type UsernameStore interface {
	UsernamesByID(ctx context.Context, ids []int) (map[int]string, error)
}

// ReportService loads a workspace's closed sessions and aggregates them.
type ReportService struct {
	facts        FactStore
	usernames    UsernameStore
	customers    *repository.CustomerRepository
	projects     *repository.ProjectRepository
	assignments  *repository.ProjectTimerRepository
	deliverables *repository.DeliverableRepository
	workspace    *workspace.Resolver
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(
	facts FactStore,
	usernames UsernameStore,
	customers *repository.CustomerRepository,
	projects *repository.ProjectRepository,
	assignments *repository.ProjectTimerRepository,
	deliverables *repository.DeliverableRepository,
	ws *workspace.Resolver,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		facts:        facts,
		usernames:    usernames,
		customers:    customers,
		projects:     projects,
		assignments:  assignments,
		deliverables: deliverables,
		workspace:    ws,
		logger:       logger,
		now:          time.Now,
	}
}

// Report builds the analytics report over the caller's workspace, optionally
// narrowed to one customer, project, assignment or deliverable.
func (s *ReportService) Report(ctx context.Context, userID int, filter repository.FactFilter) (*analytics.Report, error) {
	members, err := s.workspace.Members(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeFilter(ctx, userID, filter); err != nil {
		return nil, err
	}

	facts, err := s.facts.ListFacts(ctx, members, filter)
	if err != nil {
		return nil, err
	}

	memberNames, err := s.usernames.UsernamesByID(ctx, members)
	if err != nil {
		return nil, err
	}

	report := analytics.BuildReport(facts, memberNames, s.now())
	s.logger.Debug("Report built",
		zap.Int("user_id", userID),
		zap.Int("sessions", len(facts)),
	)
	return report, nil
}

// authorizeFilter rejects filters naming entities outside the caller's
// workspace, so a foreign ID behaves like a missing one.
func (s *ReportService) authorizeFilter(ctx context.Context, userID int, filter repository.FactFilter) error {
	check := func(found bool, err error, obj interface{ WorkspaceOwner() int }) error {
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFoundf("not found")
		}
		return s.workspace.Authorize(ctx, userID, obj)
	}

	if filter.CustomerID != 0 {
		c, err := s.customers.FindByID(ctx, filter.CustomerID)
		if err := check(c != nil, err, c); err != nil {
			return err
		}
	}
	if filter.ProjectID != 0 {
		p, err := s.projects.FindByID(ctx, filter.ProjectID)
		if err := check(p != nil, err, p); err != nil {
			return err
		}
	}
	if filter.AssignmentID != 0 {
		pt, err := s.assignments.FindByID(ctx, filter.AssignmentID)
		if err := check(pt != nil, err, pt); err != nil {
			return err
		}
	}
	if filter.DeliverableID != 0 {
		d, err := s.deliverables.FindByID(ctx, filter.DeliverableID)
		if err := check(d != nil, err, d); err != nil {
			return err
		}
	}
	return nil
}
