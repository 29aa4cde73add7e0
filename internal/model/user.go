package model

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PendingRegistration holds a signup awaiting approval. Approval creates the
// user and deletes this row; denial just deletes it.
type PendingRegistration struct {
	ID            int       `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	ApprovalToken string    `json:"approval_token"`
	CreatedAt     time.Time `json:"created_at"`
}
