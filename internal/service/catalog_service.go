package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/internal/repository"
	"timekeep/internal/workspace"
)

// CatalogService manages customers and their projects. Entities are always
// stored under the workspace owner, whichever member creates them.
type CatalogService struct {
	customers *repository.CustomerRepository
	projects  *repository.ProjectRepository
	workspace *workspace.Resolver
	logger    *zap.Logger
}

func NewCatalogService(customers *repository.CustomerRepository, projects *repository.ProjectRepository, ws *workspace.Resolver, logger *zap.Logger) *CatalogService {
	return &CatalogService{customers: customers, projects: projects, workspace: ws, logger: logger}
}

func (s *CatalogService) CreateCustomer(ctx context.Context, userID int, name string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("customer name is required")
	}
	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := &model.Customer{Name: name, UserID: ownerID}
	if err := s.customers.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) ListCustomers(ctx context.Context, userID int) ([]model.Customer, error) {
	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.customers.ListByOwners(ctx, []int{ownerID})
}

func (s *CatalogService) GetCustomer(ctx context.Context, userID, customerID int) (*model.Customer, error) {
	return s.authorizedCustomer(ctx, userID, customerID)
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, userID, customerID int, name string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("customer name is required")
	}
	c, err := s.authorizedCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer removes a customer and, via FK cascade, its projects,
// assignments and sessions.
func (s *CatalogService) DeleteCustomer(ctx context.Context, userID, customerID int) error {
	c, err := s.authorizedCustomer(ctx, userID, customerID)
	if err != nil {
		return err
	}
	s.logger.Info("Deleting customer", zap.Int("customer_id", c.ID), zap.Int("user_id", userID))
	return s.customers.Delete(ctx, c.ID)
}

func (s *CatalogService) CreateProject(ctx context.Context, userID, customerID int, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("project name is required")
	}
	c, err := s.authorizedCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	p := &model.Project{
		Name:       name,
		CustomerID: c.ID,
		Status:     model.ProjectActive,
		OwnerID:    c.UserID,
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListProjects(ctx context.Context, userID int) ([]model.Project, error) {
	ownerID, err := s.workspace.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.projects.ListByOwners(ctx, []int{ownerID})
}

func (s *CatalogService) ListProjectsByCustomer(ctx context.Context, userID, customerID int) ([]model.Project, error) {
	c, err := s.authorizedCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	return s.projects.ListByCustomer(ctx, c.ID)
}

func (s *CatalogService) GetProject(ctx context.Context, userID, projectID int) (*model.Project, error) {
	return s.authorizedProject(ctx, userID, projectID)
}

func (s *CatalogService) UpdateProject(ctx context.Context, userID, projectID int, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("project name is required")
	}
	p, err := s.authorizedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	p.Name = name
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProjectStatus completes or reopens a project. Completing blocks new
// sessions; existing history stays billable.
func (s *CatalogService) SetProjectStatus(ctx context.Context, userID, projectID int, status string) (*model.Project, error) {
	if status != model.ProjectActive && status != model.ProjectCompleted {
		return nil, apperr.Validationf("status must be %q or %q", model.ProjectActive, model.ProjectCompleted)
	}
	p, err := s.authorizedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.projects.SetStatus(ctx, p.ID, status); err != nil {
		return nil, err
	}
	p.Status = status
	return p, nil
}

func (s *CatalogService) DeleteProject(ctx context.Context, userID, projectID int) error {
	p, err := s.authorizedProject(ctx, userID, projectID)
	if err != nil {
		return err
	}
	s.logger.Info("Deleting project", zap.Int("project_id", p.ID), zap.Int("user_id", userID))
	return s.projects.Delete(ctx, p.ID)
}

func (s *CatalogService) authorizedCustomer(ctx context.Context, userID, customerID int) (*model.Customer, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFoundf("not found")
	}
	if err := s.workspace.Authorize(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) authorizedProject(ctx context.Context, userID, projectID int) (*model.Project, error) {
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
	return p, nil
}
