package model

import "time"

const DefaultHeaderColor = "#3498db"

// Timer is a named, priced task template owned by a workspace owner. It is
// independent of any project and is attached to projects via ProjectTimer.
type Timer struct {
	ID           int       `json:"id"`
	TaskName     string    `json:"task_name"`
	UserID       int       `json:"user_id"`
	PricePerHour float64   `json:"price_per_hour"`
	HeaderColor  string    `json:"header_color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *Timer) WorkspaceOwner() int { return t.UserID }

// ProjectTimer binds a timer template to a project. Sessions run against the
// binding, never against the bare template.
type ProjectTimer struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	TimerID   int       `json:"timer_id"`
	CreatedAt time.Time `json:"created_at"`

	// Joined in on reads.
	TaskName      string  `json:"task_name,omitempty"`
	HeaderColor   string  `json:"header_color,omitempty"`
	PricePerHour  float64 `json:"price_per_hour,omitempty"`
	ProjectStatus string  `json:"-"`
	OwnerID       int     `json:"-"`
}

func (pt *ProjectTimer) WorkspaceOwner() int { return pt.OwnerID }
