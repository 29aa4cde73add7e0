package workspace

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"timekeep/internal/apperr"
	"timekeep/internal/model"
)

// stubStore is a fixed owner/member table.
type stubStore struct {
	owners  map[int]int   // member -> owner
	members map[int][]int // owner -> members (excluding owner)
}

func (s *stubStore) OwnerOf(_ context.Context, memberID int) (int, bool, error) {
	owner, ok := s.owners[memberID]
	return owner, ok, nil
}

func (s *stubStore) MemberIDs(_ context.Context, ownerID int) ([]int, error) {
	return s.members[ownerID], nil
}

func newTestResolver() *Resolver {
	store := &stubStore{
		owners:  map[int]int{2: 1, 3: 1},
		members: map[int][]int{1: {2, 3}},
	}
	return NewResolver(store, nil, zap.NewNop())
}

func TestOwnerFallsBackToSelf(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	owner, err := r.Owner(ctx, 2)
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != 1 {
		t.Fatalf("owner of member 2 = %d, want 1", owner)
	}

	owner, err = r.Owner(ctx, 9)
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != 9 {
		t.Fatalf("owner of solo user = %d, want 9", owner)
	}
}

func TestIsOwner(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	isOwner, err := r.IsOwner(ctx, 1)
	if err != nil || !isOwner {
		t.Fatalf("user 1: isOwner=%v err=%v, want true", isOwner, err)
	}
	isOwner, err = r.IsOwner(ctx, 2)
	if err != nil || isOwner {
		t.Fatalf("user 2: isOwner=%v err=%v, want false", isOwner, err)
	}
}

func TestMembersIncludeOwner(t *testing.T) {
	r := newTestResolver()

	members, err := r.Members(context.Background(), 3)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	want := map[int]bool{1: true, 2: true, 3: true}
	if len(members) != len(want) {
		t.Fatalf("members = %v, want ids 1,2,3", members)
	}
	for _, id := range members {
		if !want[id] {
			t.Fatalf("unexpected member %d in %v", id, members)
		}
	}
}

func TestAuthorizeForeignLooksAbsent(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	mine := &model.Customer{ID: 10, UserID: 1}
	if err := r.Authorize(ctx, 2, mine); err != nil {
		t.Fatalf("member must reach workspace customer: %v", err)
	}

	foreign := &model.Customer{ID: 11, UserID: 42}
	err := r.Authorize(ctx, 2, foreign)
	if !apperr.IsNotFound(err) {
		t.Fatalf("foreign customer: got %v, want not found", err)
	}
}
