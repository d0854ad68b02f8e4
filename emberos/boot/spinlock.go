package boot

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a test-and-set lock usable before the scheduler exists. It
// busy-waits, yielding the OS thread between attempts; there is no queueing,
// no ownership tracking, and no recursion.
type SpinLock struct {
	state atomic.Uint32
}

// Init prepares the lock for use. It must complete before any core may
// acquire; the boot start gate enforces that ordering across cores.
func (l *SpinLock) Init() error {
	l.state.Store(0)
	return nil
}

// Acquire blocks the calling core until exclusive ownership is obtained.
func (l *SpinLock) Acquire() {
	for !l.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *SpinLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release relinquishes ownership. Releasing a free lock has no effect.
func (l *SpinLock) Release() {
	l.state.Store(0)
}
