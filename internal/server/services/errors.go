package services

import "fmt"

// LockoutError is the expected, non-exceptional outcome of a login attempt
// made while the account's lockout window is active, or of the failure that
// opened a new window. It is returned as a value so handlers can surface
// "temporarily locked, M seconds remaining" without string matching.
type LockoutError struct {
	RemainingSeconds int
	Attempts         int
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked, %d seconds remaining", e.RemainingSeconds)
}

// InvalidCredentialsError reports a failed password comparison below the
// first lockout tier, with the attempts left before a lock.
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials, %d attempts remaining", e.AttemptsRemaining)
}
