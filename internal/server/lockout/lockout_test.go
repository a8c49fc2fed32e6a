package lockout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Tiers(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{3, 30 * time.Second},
		{4, 30 * time.Second},
		{5, 3 * time.Minute},
		{7, 3 * time.Minute},
		{8, 10 * time.Minute},
		{100, 10 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.attempts), "attempts=%d", tt.attempts)
	}
}

func TestEvaluate_Baseline(t *testing.T) {
	now := time.Now()
	d := Evaluate(State{}, now)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.RemainingSeconds)
}

func TestEvaluate_ActiveLock(t *testing.T) {
	now := time.Now()
	s := State{Attempts: 3, LockedUntil: now.Add(20 * time.Second)}

	d := Evaluate(s, now)
	assert.False(t, d.Allowed)
	assert.Equal(t, 20, d.RemainingSeconds)

	// Rounds up to whole seconds.
	d = Evaluate(s, now.Add(19*time.Second+500*time.Millisecond))
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.RemainingSeconds)
}

func TestEvaluate_ExpiredLock(t *testing.T) {
	now := time.Now()
	s := State{Attempts: 4, LockedUntil: now.Add(-time.Second)}
	assert.True(t, Evaluate(s, now).Allowed)
}

func TestEvaluate_DoesNotMutate(t *testing.T) {
	now := time.Now()
	until := now.Add(20 * time.Second)
	s := State{Attempts: 3, LockedUntil: until}

	for i := 0; i < 10; i++ {
		Evaluate(s, now.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 3, s.Attempts)
	assert.True(t, s.LockedUntil.Equal(until), "hammering Evaluate must not extend the lock")
}

func TestRecordFailure_WarnsBeforeFirstTier(t *testing.T) {
	now := time.Now()

	s, res := RecordFailure(State{}, now)
	assert.False(t, res.Locked)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 2, res.AttemptsRemaining)
	assert.True(t, s.LockedUntil.IsZero())
	assert.True(t, s.LastFailedAt.Equal(now))

	s, res = RecordFailure(s, now)
	assert.False(t, res.Locked)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 1, res.AttemptsRemaining)
}

func TestRecordFailure_ThirdFailureLocks(t *testing.T) {
	now := time.Now()

	s := State{}
	var res FailureResult
	for i := 0; i < 3; i++ {
		s, res = RecordFailure(s, now)
	}

	require.True(t, res.Locked)
	assert.Equal(t, 3, res.Attempts)
	assert.Greater(t, res.RemainingSeconds, 0)
	assert.LessOrEqual(t, res.RemainingSeconds, 30)
	assert.True(t, s.LockedUntil.Equal(now.Add(30*time.Second)))

	// An attempt 10 seconds into the window is rejected with the rest of it.
	d := Evaluate(s, now.Add(10*time.Second))
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RemainingSeconds, 0)
	assert.LessOrEqual(t, d.RemainingSeconds, 20)
}

func TestRecordFailure_LazyExpiryEscalates(t *testing.T) {
	// A user at 4 attempts whose 30s lock has just expired: the 5th
	// failure earns the 3-minute tier, never the 30-second one again.
	now := time.Now()
	s := State{Attempts: 4, LockedUntil: now.Add(-time.Millisecond)}

	require.True(t, Evaluate(s, now).Allowed)

	s, res := RecordFailure(s, now)
	require.True(t, res.Locked)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 180, res.RemainingSeconds)
	assert.True(t, s.LockedUntil.Equal(now.Add(3*time.Minute)))
}

func TestRecordFailure_TenMinuteTier(t *testing.T) {
	now := time.Now()
	s := State{Attempts: 7}

	s, res := RecordFailure(s, now)
	require.True(t, res.Locked)
	assert.Equal(t, 8, res.Attempts)
	assert.Equal(t, 600, res.RemainingSeconds)
	assert.True(t, s.LockedUntil.Equal(now.Add(10*time.Minute)))
}

func TestRecordSuccess_ResetsAndReports(t *testing.T) {
	now := time.Now()
	s := State{Attempts: 7, LockedUntil: now.Add(-time.Minute), LastFailedAt: now.Add(-2 * time.Minute)}

	next, previous := RecordSuccess(s)
	assert.Equal(t, 7, previous)
	assert.Equal(t, State{}, next)
}

func TestRecordSuccess_FewAttemptsNotReported(t *testing.T) {
	for _, attempts := range []int{0, 1, 2} {
		next, previous := RecordSuccess(State{Attempts: attempts})
		assert.Equal(t, 0, previous, "attempts=%d", attempts)
		assert.Equal(t, State{}, next)
	}
}

func TestScenario_LockRejectThenSucceed(t *testing.T) {
	// Failures at t0, t0+1s, t0+2s; the third sets a 30s lock. A correct
	// password at t2+15s is still rejected without being checked; at
	// t2+31s it succeeds and reports the 3 prior failures.
	t0 := time.Now()
	t2 := t0.Add(2 * time.Second)

	s := State{}
	var res FailureResult
	for i := 0; i < 3; i++ {
		now := t0.Add(time.Duration(i) * time.Second)
		require.True(t, Evaluate(s, now).Allowed)
		s, res = RecordFailure(s, now)
	}
	require.True(t, res.Locked)
	require.True(t, s.LockedUntil.Equal(t2.Add(30*time.Second)))

	d := Evaluate(s, t2.Add(15*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 15, d.RemainingSeconds)

	d = Evaluate(s, t2.Add(31*time.Second))
	require.True(t, d.Allowed)

	next, previous := RecordSuccess(s)
	assert.Equal(t, 3, previous)
	assert.Equal(t, State{}, next)
}
