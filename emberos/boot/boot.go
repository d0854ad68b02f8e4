// Package boot implements the cross-core boot rendezvous: a start gate that
// keeps secondary cores away from the shared lock until the primary has
// initialized it, and a checkin barrier that releases no core until every
// core is accounted for.
package boot

import (
	"runtime"
	"sync/atomic"
)

// Boot carries the cross-core state needed to bring all cores to a common
// starting point. It is constructed once at process start, handed by
// reference to every core, and never torn down.
type Boot struct {
	lock  SpinLock
	gate  atomic.Bool
	count atomic.Int32
	total int

	lockInit func() error
}

// Option configures a Boot.
type Option func(*Boot)

// WithLockInit overrides the lock initialization step. Used to inject init
// failures when exercising the fatal boot path.
func WithLockInit(fn func() error) Option {
	return func(b *Boot) { b.lockInit = fn }
}

// New creates the rendezvous state for total cores.
func New(total int, opts ...Option) *Boot {
	b := &Boot{total: total}
	b.lockInit = b.lock.Init
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Total returns the number of participating cores.
func (b *Boot) Total() int { return b.total }

// InitLock initializes the shared lock. Primary core only, before the start
// gate opens. Failure is fatal at the caller: no scheduler may start.
func (b *Boot) InitLock() error {
	return b.lockInit()
}

// OpenStartGate publishes that the lock is initialized. The atomic store
// orders everything the primary wrote before the gate ahead of any
// secondary's acquire-side load.
func (b *Boot) OpenStartGate() {
	b.gate.Store(true)
}

// AwaitStartGate spins until the primary opens the gate. A secondary core
// must not touch the lock before this returns.
func (b *Boot) AwaitStartGate() {
	for !b.gate.Load() {
		runtime.Gosched()
	}
}

// GateOpen reports whether the start gate has been opened.
func (b *Boot) GateOpen() bool {
	return b.gate.Load()
}

// Checkin records this core's arrival: increment the shared counter under
// the lock, exactly once per core. If announce is non-nil it runs while the
// lock is held, keeping cross-core diagnostic output ordered.
func (b *Boot) Checkin(announce func()) {
	b.lock.Acquire()
	if announce != nil {
		announce()
	}
	b.count.Add(1)
	b.lock.Release()
}

// CheckedIn returns how many cores have checked in.
func (b *Boot) CheckedIn() int {
	return int(b.count.Load())
}

// AwaitAll spins, without holding the lock, until every core has checked
// in. Only after this may a core proceed to setup that assumes exclusive
// ownership of shared hardware.
func (b *Boot) AwaitAll() {
	for int(b.count.Load()) != b.total {
		runtime.Gosched()
	}
}
