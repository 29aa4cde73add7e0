package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/internal/repository"
	"timekeep/internal/workspace"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TimerService manages timer templates, their project assignments,
// deliverables and the owner's saved header colors.
type TimerService struct {
	timers       *repository.TimerRepository
	assignments  *repository.ProjectTimerRepository
	deliverables *repository.DeliverableRepository
	colors       *repository.CustomColorRepository
	projects     *repository.ProjectRepository
	workspace    *workspace.Resolver
	logger       *zap.Logger
}

func NewTimerService(
	timers *repository.TimerRepository,
	assignments *repository.ProjectTimerRepository,
	deliverables *repository.DeliverableRepository,
	colors *repository.CustomColorRepository,
	projects *repository.ProjectRepository,
	ws *workspace.Resolver,
	logger *zap.Logger,
) *TimerService {
	return &TimerService{
		timers:       timers,
		assignments:  assignments,
		deliverables: deliverables,
		colors:       colors,
		projects:     projects,
		workspace:    ws,
		logger:       logger,
	}
}

func (s *TimerService) CreateTimer(ctx context.Context, userID int, taskName string, pricePerHour float64, headerColor string) (*model.Timer, error) {
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return nil, apperr.Validationf("task name is required")
	}
	if pricePerHour < 0 {
		return nil, apperr.Validationf("price per hour must not be negative")
	}
	if headerColor == "" {
		headerColor = model.DefaultHeaderColor
	}
	if !hexColorPattern.MatchString(headerColor) {
		return nil, apperr.Validationf("header color must be a #rrggbb hex value")
	}

	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	t := &model.Timer{
		TaskName:     taskName,
		UserID:       ownerID,
		PricePerHour: pricePerHour,
		HeaderColor:  headerColor,
	}
	if err := s.timers.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TimerService) ListTimers(ctx context.Context, userID int) ([]model.Timer, error) {
	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.timers.ListByOwners(ctx, []int{ownerID})
}

// UpdateTimer changes the template. Sessions already started keep the price
// they snapshotted; only future sessions see the new rate.
func (s *TimerService) UpdateTimer(ctx context.Context, userID, timerID int, taskName string, pricePerHour float64, headerColor string) (*model.Timer, error) {
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return nil, apperr.Validationf("task name is required")
	}
	if pricePerHour < 0 {
		return nil, apperr.Validationf("price per hour must not be negative")
	}
	if !hexColorPattern.MatchString(headerColor) {
		return nil, apperr.Validationf("header color must be a #rrggbb hex value")
	}

	t, err := s.authorizedTimer(ctx, userID, timerID)
	if err != nil {
		return nil, err
	}
	t.TaskName = taskName
	t.PricePerHour = pricePerHour
	t.HeaderColor = headerColor
	if err := s.timers.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TimerService) DeleteTimer(ctx context.Context, userID, timerID int) error {
	t, err := s.authorizedTimer(ctx, userID, timerID)
	if err != nil {
		return err
	}
	s.logger.Info("Deleting timer", zap.Int("timer_id", t.ID), zap.Int("user_id", userID))
	return s.timers.Delete(ctx, t.ID)
}

// Assign binds a timer template to a project. A template can be bound to a
// project at most once.
func (s *TimerService) Assign(ctx context.Context, userID, projectID, timerID int) (*model.ProjectTimer, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, p); err != nil {
		return nil, err
	}

	t, err := s.authorizedTimer(ctx, userID, timerID)
	if err != nil {
		return nil, err
	}

	pt := &model.ProjectTimer{ProjectID: p.ID, TimerID: t.ID}
	if err := s.assignments.Insert(ctx, pt); err != nil {
		return nil, err
	}
	pt.TaskName = t.TaskName
	pt.HeaderColor = t.HeaderColor
	pt.PricePerHour = t.PricePerHour
	return pt, nil
}

func (s *TimerService) ListAssignments(ctx context.Context, userID, projectID int) ([]model.ProjectTimer, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, p); err != nil {
		return nil, err
	}
	return s.assignments.ListByProject(ctx, p.ID)
}

// Unassign removes a timer from a project along with the session history of
// that binding.
func (s *TimerService) Unassign(ctx context.Context, userID, assignmentID int) error {
	pt, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if pt == nil {
		return apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, pt); err != nil {
		return err
	}
	s.logger.Info("Removing timer assignment", zap.Int("assignment_id", pt.ID), zap.Int("user_id", userID))
	return s.assignments.Delete(ctx, pt.ID)
}

func (s *TimerService) CreateDeliverable(ctx context.Context, userID, projectID int, name, description string) (*model.Deliverable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("deliverable name is required")
	}
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, p); err != nil {
		return nil, err
	}

	d := &model.Deliverable{
		Name:        name,
		ProjectID:   p.ID,
		Description: description,
		OwnerID:     p.OwnerID,
	}
	if err := s.deliverables.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *TimerService) ListDeliverables(ctx context.Context, userID, projectID int) ([]model.Deliverable, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, p); err != nil {
		return nil, err
	}
	return s.deliverables.ListByProject(ctx, p.ID)
}

func (s *TimerService) UpdateDeliverable(ctx context.Context, userID, deliverableID int, name, description string) (*model.Deliverable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("deliverable name is required")
	}
	d, err := s.authorizedDeliverable(ctx, userID, deliverableID)
	if err != nil {
		return nil, err
	}
	d.Name = name
	d.Description = description
	if err := s.deliverables.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDeliverable removes the tag. Tagged sessions survive with the tag
// cleared.
func (s *TimerService) DeleteDeliverable(ctx context.Context, userID, deliverableID int) error {
	d, err := s.authorizedDeliverable(ctx, userID, deliverableID)
	if err != nil {
		return err
	}
	return s.deliverables.Delete(ctx, d.ID)
}

func (s *TimerService) SaveColor(ctx context.Context, userID int, color string) (*model.CustomColor, error) {
	if !hexColorPattern.MatchString(color) {
		return nil, apperr.Validationf("color must be a #rrggbb hex value")
	}
	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := &model.CustomColor{OwnerID: ownerID, Color: strings.ToLower(color)}
	if err := s.colors.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *TimerService) ListColors(ctx context.Context, userID int) ([]model.CustomColor, error) {
	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.colors.ListByOwner(ctx, ownerID)
}

func (s *TimerService) authorizedTimer(ctx context.Context, userID, timerID int) (*model.Timer, error) {
	t, err := s.timers.FindByID(ctx, timerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TimerService) authorizedDeliverable(ctx context.Context, userID, deliverableID int) (*model.Deliverable, error) {
	d, err := s.deliverables.FindByID(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, d); err != nil {
		return nil, err
	}
	return d, nil
}
