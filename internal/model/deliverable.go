package model

import "time"

// Deliverable is an optional sub-project tag for attributing session time to
// a concrete output. Deleting one detaches its sessions, it never deletes them.
type Deliverable struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	ProjectID   int       `json:"project_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	OwnerID int `json:"-"`
}

func (d *Deliverable) WorkspaceOwner() int { return d.OwnerID }
