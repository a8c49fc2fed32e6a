// Package lockout implements the progressive brute-force throttle applied
// to login attempts. It is a pure state machine over a small per-account
// record: a cumulative failed-attempt counter gated by an absolute lock
// expiry. Locks expire lazily, by comparison against the caller's clock at
// evaluation time; there are no timers.
//
// The caller owns persistence and must make the read-evaluate-write of the
// state atomic per account (a row lock or transaction), so two concurrent
// failures cannot both observe the same counter.
package lockout

import "time"

// Escalation tiers over the cumulative attempt counter. The counter never
// resets between tiers; only a successful login clears it.
const (
	tier1Attempts = 3
	tier2Attempts = 5
	tier3Attempts = 8

	tier1Duration = 30 * time.Second
	tier2Duration = 3 * time.Minute
	tier3Duration = 10 * time.Minute
)

// State is the per-account throttle record. The zero value is the baseline:
// no failures, not locked. A zero LockedUntil or LastFailedAt means unset.
type State struct {
	Attempts     int
	LockedUntil  time.Time
	LastFailedAt time.Time
}

// Decision is the outcome of gating a login attempt. When Allowed is false
// the caller must reject the attempt before any password comparison and
// must not modify the state.
type Decision struct {
	Allowed          bool
	RemainingSeconds int
}

// FailureResult describes the state after a recorded failure, for user
// messaging. AttemptsRemaining is meaningful only when Locked is false.
type FailureResult struct {
	Locked            bool
	RemainingSeconds  int
	Attempts          int
	AttemptsRemaining int
}

// Duration returns the lockout duration earned by the given cumulative
// attempt count, or 0 below the first tier.
func Duration(attempts int) time.Duration {
	switch {
	case attempts >= tier3Attempts:
		return tier3Duration
	case attempts >= tier2Attempts:
		return tier2Duration
	case attempts >= tier1Attempts:
		return tier1Duration
	default:
		return 0
	}
}

// Evaluate gates a login attempt against the current state. While a lock
// is active the attempt is rejected with the remaining whole seconds
// (rounded up); otherwise the attempt may proceed to password comparison.
func Evaluate(s State, now time.Time) Decision {
	if !s.LockedUntil.IsZero() && s.LockedUntil.After(now) {
		return Decision{
			Allowed:          false,
			RemainingSeconds: ceilSeconds(s.LockedUntil.Sub(now)),
		}
	}
	return Decision{Allowed: true}
}

// RecordFailure advances the state after a failed password comparison. It
// must only be called when Evaluate allowed the attempt. Crossing a tier
// threshold sets a new lock at now + tier duration; below the first tier
// the state stays unlocked and reports how many attempts remain.
func RecordFailure(s State, now time.Time) (State, FailureResult) {
	attempts := s.Attempts + 1
	next := State{Attempts: attempts, LastFailedAt: now}

	if d := Duration(attempts); d > 0 {
		next.LockedUntil = now.Add(d)
		return next, FailureResult{
			Locked:           true,
			RemainingSeconds: int(d / time.Second),
			Attempts:         attempts,
		}
	}

	return next, FailureResult{
		Attempts:          attempts,
		AttemptsRemaining: tier1Attempts - attempts,
	}
}

// RecordSuccess resets the state to baseline after a successful login and
// returns the number of failed attempts that preceded it. Counts below the
// first lockout tier are not reported.
func RecordSuccess(s State) (State, int) {
	previous := 0
	if s.Attempts >= tier1Attempts {
		previous = s.Attempts
	}
	return State{}, previous
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
