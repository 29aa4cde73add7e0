package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
)

// TeamMemberRepository persists workspace membership links. It implements
// workspace.MembershipStore.
type TeamMemberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTeamMemberRepository(db *pgxpool.Pool, logger *zap.Logger) *TeamMemberRepository {
	return &TeamMemberRepository{db: db, logger: logger}
}

// OwnerOf returns the workspace owner for a member. The first membership row
// (oldest) is authoritative.
func (r *TeamMemberRepository) OwnerOf(ctx context.Context, memberID int) (int, bool, error) {
	query := `
        SELECT owner_id
        FROM team_members
        WHERE member_id = $1
        ORDER BY created_at ASC
        LIMIT 1
    `
	var ownerID int
	err := r.db.QueryRow(ctx, query, memberID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ownerID, true, nil
}

// MemberIDs returns the member user IDs of an owner's workspace.
func (r *TeamMemberRepository) MemberIDs(ctx context.Context, ownerID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT member_id FROM team_members WHERE owner_id = $1`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create links a member to an owner's workspace.
func (r *TeamMemberRepository) Create(ctx context.Context, tm *model.TeamMember) error {
	r.logger.Debug("Inserting team member",
		zap.Int("owner_id", tm.OwnerID),
		zap.Int("member_id", tm.MemberID),
	)

	query := `
        INSERT INTO team_members (owner_id, member_id, role, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, tm.OwnerID, tm.MemberID, tm.Role).
		Scan(&tm.ID, &tm.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflictf("user is already a member of this workspace")
	}
	return err
}

// FindByID returns a membership row, or nil when absent.
func (r *TeamMemberRepository) FindByID(ctx context.Context, id int) (*model.TeamMember, error) {
	query := `
        SELECT tm.id, tm.owner_id, tm.member_id, tm.role, tm.created_at, u.username
        FROM team_members tm
        JOIN users u ON u.id = tm.member_id
        WHERE tm.id = $1
    `
	var tm model.TeamMember
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tm.ID, &tm.OwnerID, &tm.MemberID, &tm.Role, &tm.CreatedAt, &tm.MemberName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

// Delete removes a membership link.
func (r *TeamMemberRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	return err
}

// ListByOwner returns the memberships of a workspace with member usernames.
func (r *TeamMemberRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.TeamMember, error) {
	query := `
        SELECT tm.id, tm.owner_id, tm.member_id, tm.role, tm.created_at, u.username
        FROM team_members tm
        JOIN users u ON u.id = tm.member_id
        WHERE tm.owner_id = $1
        ORDER BY tm.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		var tm model.TeamMember
		if err := rows.Scan(
			&tm.ID, &tm.OwnerID, &tm.MemberID, &tm.Role, &tm.CreatedAt, &tm.MemberName,
		); err != nil {
			return nil, err
		}
		members = append(members, tm)
	}
	return members, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
