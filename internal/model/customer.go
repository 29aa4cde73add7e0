package model

import "time"

// Customer is a billable client. It always belongs to a workspace owner,
// never to a team member.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) WorkspaceOwner() int { return c.UserID }
