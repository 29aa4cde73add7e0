package model

import "time"

const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
)

type Project struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	CustomerID int       `json:"customer_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// OwnerID is the owning customer's user, joined in on reads.
	OwnerID int `json:"-"`
}

func (p *Project) WorkspaceOwner() int { return p.OwnerID }

func (p *Project) IsCompleted() bool { return p.Status == ProjectCompleted }
