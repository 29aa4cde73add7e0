package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
)

const memberCacheTTL = time.Minute

// MembershipStore is the lookup surface the resolver needs. The pgx
// team-member repository implements it.
type MembershipStore interface {
	// OwnerOf returns the workspace owner for a member, or ok=false when the
	// user has no membership row and is therefore their own owner.
	OwnerOf(ctx context.Context, memberID int) (ownerID int, ok bool, err error)
	// MemberIDs returns the member user IDs of an owner's workspace,
	// excluding the owner.
	MemberIDs(ctx context.Context, ownerID int) ([]int, error)
}

// Resolver maps any user to their workspace owner and the full member set.
// The member set is cached in Redis per owner; team mutations invalidate it.
type Resolver struct {
	store  MembershipStore
	cache  *redis.Client
	logger *zap.Logger
}

func NewResolver(store MembershipStore, cache *redis.Client, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, logger: logger}
}

func memberCacheKey(ownerID int) string {
	return fmt.Sprintf("workspace:members:%d", ownerID)
}

// Owner resolves the workspace owner for a user. The first membership row
// wins; a user without one is their own owner.
func (r *Resolver) Owner(ctx context.Context, userID int) (int, error) {
	ownerID, ok, err := r.store.OwnerOf(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("resolve workspace owner: %w", err)
	}
	if !ok {
		return userID, nil
	}
	return ownerID, nil
}

// IsOwner reports whether the user is a workspace owner rather than a member.
func (r *Resolver) IsOwner(ctx context.Context, userID int) (bool, error) {
	_, ok, err := r.store.OwnerOf(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("resolve workspace owner: %w", err)
	}
	return !ok, nil
}

// Members returns every user ID sharing the workspace: the owner plus all
// team members.
func (r *Resolver) Members(ctx context.Context, userID int) ([]int, error) {
	ownerID, err := r.Owner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cached, ok := r.cachedMembers(ctx, ownerID); ok {
		return cached, nil
	}

	memberIDs, err := r.store.MemberIDs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list workspace members: %w", err)
	}

	members := append([]int{ownerID}, memberIDs...)
	r.storeMembers(ctx, ownerID, members)
	return members, nil
}

// Authorize treats any entity whose owner is outside the caller's workspace
// as not found, so foreign records are indistinguishable from absent ones.
func (r *Resolver) Authorize(ctx context.Context, userID int, obj model.WorkspaceOwned) error {
	members, err := r.Members(ctx, userID)
	if err != nil {
		return err
	}
	owner := obj.WorkspaceOwner()
	for _, id := range members {
		if id == owner {
			return nil
		}
	}
	return apperr.NotFoundf("not found")
}

// Invalidate drops the cached member set after a team mutation.
func (r *Resolver) Invalidate(ctx context.Context, ownerID int) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, memberCacheKey(ownerID)).Err(); err != nil {
		r.logger.Warn("failed to invalidate workspace member cache",
			zap.Int("owner_id", ownerID),
			zap.Error(err),
		)
	}
}

func (r *Resolver) cachedMembers(ctx context.Context, ownerID int) ([]int, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, memberCacheKey(ownerID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("workspace member cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var members []int
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, false
	}
	return members, true
}

func (r *Resolver) storeMembers(ctx context.Context, ownerID int, members []int) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, memberCacheKey(ownerID), raw, memberCacheTTL).Err(); err != nil {
		r.logger.Debug("workspace member cache write failed", zap.Error(err))
	}
}
