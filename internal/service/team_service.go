package service

import (
	"context"

	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
	"timekeep/internal/repository"
	"timekeep/internal/workspace"
)

// TeamService manages workspace membership. Only workspace owners may
// mutate the team.
type TeamService struct {
	members   *repository.TeamMemberRepository
	users     *repository.UserRepository
	workspace *workspace.Resolver
	logger    *zap.Logger
}

func NewTeamService(members *repository.TeamMemberRepository, users *repository.UserRepository, ws *workspace.Resolver, logger *zap.Logger) *TeamService {
	return &TeamService{members: members, users: users, workspace: ws, logger: logger}
}

// AddMember pulls an existing user into the caller's workspace by username.
func (s *TeamService) AddMember(ctx context.Context, ownerID int, username string) (*model.TeamMember, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFoundf("no user with that username")
	}
	if u.ID == ownerID {
		return nil, apperr.Validationf("cannot add yourself to your own team")
	}

	_, hasOwner, err := s.members.OwnerOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if hasOwner {
		return nil, apperr.Conflictf("user already belongs to a workspace")
	}

	tm := &model.TeamMember{
		OwnerID:  ownerID,
		MemberID: u.ID,
		Role:     model.RoleMember,
	}
	if err := s.members.Create(ctx, tm); err != nil {
		return nil, err
	}
	tm.MemberName = u.Username

	s.workspace.Invalidate(ctx, ownerID)
	s.logger.Info("Team member added",
		zap.Int("owner_id", ownerID),
		zap.Int("member_id", u.ID),
	)
	return tm, nil
}

// RemoveMember drops a membership row. Past sessions created by the member
// stay in the workspace.
func (s *TeamService) RemoveMember(ctx context.Context, ownerID, membershipID int) error {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return err
	}

	tm, err := s.members.FindByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if tm == nil || tm.OwnerID != ownerID {
		return apperr.NotFoundf("not found")
	}

	if err := s.members.Delete(ctx, membershipID); err != nil {
		return err
	}
	s.workspace.Invalidate(ctx, ownerID)
	s.logger.Info("Team member removed",
		zap.Int("owner_id", ownerID),
		zap.Int("member_id", tm.MemberID),
	)
	return nil
}

// ListMembers returns the caller's team, owner-only.
func (s *TeamService) ListMembers(ctx context.Context, ownerID int) ([]model.TeamMember, error) {
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.members.ListByOwner(ctx, ownerID)
}

func (s *TeamService) requireOwner(ctx context.Context, userID int) error {
	isOwner, err := s.workspace.IsOwner(ctx, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		return apperr.Validationf("only the workspace owner can manage the team")
	}
	return nil
}
