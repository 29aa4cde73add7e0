package analytics

import (
	"time"

	"timekeep/internal/model"
)

// SessionFact is one closed session flattened with its ownership chain,
// ready for aggregation. DurationSeconds is already pause-adjusted.
type SessionFact struct {
	SessionID       int        `json:"session_id"`
	AssignmentID    int        `json:"assignment_id"`
	TimerID         int        `json:"timer_id"`
	TimerName       string     `json:"timer_name"`
	TimerColor      string     `json:"timer_color"`
	ProjectID       int        `json:"project_id"`
	ProjectName     string     `json:"project_name"`
	ProjectStatus   string     `json:"project_status"`
	CustomerID      int        `json:"customer_id"`
	CustomerName    string     `json:"customer_name"`
	DeliverableID   *int       `json:"deliverable_id"`
	DeliverableName string     `json:"deliverable_name"`
	CreatedBy       *int       `json:"created_by"`
	EndTime         time.Time  `json:"end_time"`
	PricePerHour    float64    `json:"price_per_hour"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// Cost returns the billed amount for this session from its snapshot price.
func (f SessionFact) Cost() float64 {
	return model.Round2(f.PricePerHour * f.DurationSeconds / 3600)
}
