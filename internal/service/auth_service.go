package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/internal/mq"
	"timekeep/pkg/metrics"
	"timekeep/pkg/util"
)

// EventPublisher is the publish surface services need. The RabbitMQ
// producer implements it.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// AuthService handles signup with admin approval and login.
type AuthService struct {
	users     UserStore
	pending   PendingStore
	publisher EventPublisher
	jwtSecret string
	logger    *zap.Logger
}

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type PendingStore interface {
	Create(ctx context.Context, p *model.PendingRegistration) error
	FindByToken(ctx context.Context, token string) (*model.PendingRegistration, error)
	FindByUsername(ctx context.Context, username string) (*model.PendingRegistration, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]model.PendingRegistration, error)
}

func NewAuthService(users UserStore, pending PendingStore, publisher EventPublisher, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		pending:   pending,
		publisher: publisher,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register queues a signup for approval. The account does not exist until
// an owner approves it.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return apperr.Validationf("username, email and password are required")
	}

	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if !taken {
		pending, err := s.pending.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		taken = pending != nil
	}
	if taken {
		return apperr.Conflictf("username is already taken")
	}

	emailTaken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if emailTaken {
		return apperr.Conflictf("email is already registered")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	p := &model.PendingRegistration{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		ApprovalToken: uuid.NewString(),
	}
	if err := s.pending.Create(ctx, p); err != nil {
		return err
	}

	s.publish(mq.RoutingRegistrationPending, mq.RegistrationPendingEvent{
		Username:      p.Username,
		Email:         p.Email,
		ApprovalToken: p.ApprovalToken,
		RequestedAt:   time.Now(),
	})
	metrics.IncrementRegistrationEvent("pending")

	s.logger.Info("Registration queued for approval", zap.String("username", username))
	return nil
}

// Approve turns a pending registration into a real account.
func (s *AuthService) Approve(ctx context.Context, token string) (*model.User, error) {
	p, err := s.pending.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("not found")
	}

	u := &model.User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := s.pending.Delete(ctx, p.ID); err != nil {
		return nil, err
	}

	s.publish(mq.RoutingRegistrationApproved, mq.RegistrationDecisionEvent{
		Username:  p.Username,
		Email:     p.Email,
		Approved:  true,
		DecidedAt: time.Now(),
	})
	metrics.IncrementRegistrationEvent("approved")

	s.logger.Info("Registration approved", zap.String("username", p.Username), zap.Int("user_id", u.ID))
	return u, nil
}

// Deny discards a pending registration.
func (s *AuthService) Deny(ctx context.Context, token string) error {
	p, err := s.pending.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFoundf("not found")
	}
	if err := s.pending.Delete(ctx, p.ID); err != nil {
		return err
	}

	s.publish(mq.RoutingRegistrationDenied, mq.RegistrationDecisionEvent{
		Username:  p.Username,
		Email:     p.Email,
		Approved:  false,
		DecidedAt: time.Now(),
	})
	metrics.IncrementRegistrationEvent("denied")

	s.logger.Info("Registration denied", zap.String("username", p.Username))
	return nil
}

// ListPending returns registrations awaiting a decision.
func (s *AuthService) ListPending(ctx context.Context) ([]model.PendingRegistration, error) {
	return s.pending.List(ctx)
}

// Login checks credentials and issues a JWT. Wrong username and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil || !util.CheckPassword(password, u.PasswordHash) {
		return "", apperr.Validationf("invalid username or password")
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
