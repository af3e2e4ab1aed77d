// Package sync provides the spinlock used to serialise page mapping calls
// that target the same environment.
package sync

import (
	"runtime"
	"sync/atomic"
)

var (
	// yieldFn is invoked by Acquire after attemptsBeforeYielding failed
	// attempts so the lock holder gets a chance to run.
	yieldFn = runtime.Gosched
)

// attemptsBeforeYielding bounds the busy-wait loop in Acquire.
const attemptsBeforeYielding = 64

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for attempt := uint32(1); !atomic.CompareAndSwapUint32(&l.state, 0, 1); attempt++ {
		if attempt%attemptsBeforeYielding == 0 {
			yieldFn()
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

// Lock and Unlock let a Spinlock be used wherever a sync.Locker is expected.
func (l *Spinlock) Lock()   { l.Acquire() }
func (l *Spinlock) Unlock() { l.Release() }
