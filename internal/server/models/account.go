// Package models defines the server-side storage models.
package models

import "time"

// Account is a vault owner. FailedAttempts, LockedUntil, and LastFailedAt
// together form the login-throttle state; a zero LockedUntil/LastFailedAt
// maps to NULL in storage and means unset.
type Account struct {
	ID             string
	UserName       string
	PasswordHash   string
	FailedAttempts int
	LockedUntil    time.Time
	LastFailedAt   time.Time
	CreatedAt      time.Time
}
