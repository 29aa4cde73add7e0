package mq

import "time"

// Routing keys on the events exchange.
const (
	RoutingRegistrationPending  = "registration.pending"
	RoutingRegistrationApproved = "registration.approved"
	RoutingRegistrationDenied   = "registration.denied"
)

// RegistrationPendingEvent notifies the admins that an account is waiting
// for approval. The token is what the approval endpoints take.
type RegistrationPendingEvent struct {
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ApprovalToken string    `json:"approval_token"`
	RequestedAt   time.Time `json:"requested_at"`
}

// RegistrationDecisionEvent notifies the applicant of the outcome.
type RegistrationDecisionEvent struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Approved  bool      `json:"approved"`
	DecidedAt time.Time `json:"decided_at"`
}
