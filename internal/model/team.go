package model

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// TeamMember links a member user to a workspace owner. A user with no
// membership row as member is their own workspace owner.
type TeamMember struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	MemberID  int       `json:"member_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// MemberName is joined in for admin listings.
	MemberName string `json:"member_name,omitempty"`
}

// CustomColor is a hex color saved by a workspace owner for timer headers.
type CustomColor struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
