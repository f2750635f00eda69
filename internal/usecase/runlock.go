package usecase

import "sync/atomic"

// RunLock is the orchestrator's single-flight guard. The scoring and
// selection core stays pure and reentrant; only the caller that owns
// shared run state needs mutual exclusion.
type RunLock struct {
	busy atomic.Bool
}

// TryAcquire reports whether the caller now holds the lock.
func (l *RunLock) TryAcquire() bool {
	return l.busy.CompareAndSwap(false, true)
}

// Release frees the lock for the next run.
func (l *RunLock) Release() {
	l.busy.Store(false)
}
