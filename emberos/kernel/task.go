package kernel

// Priority orders tasks; a higher value always runs first.
type Priority uint8

const (
	PriorityIdle Priority = iota
	PriorityProducer
	PriorityConsumer
)

func (p Priority) String() string {
	switch p {
	case PriorityIdle:
		return "idle"
	case PriorityProducer:
		return "producer"
	case PriorityConsumer:
		return "consumer"
	default:
		return "unknown"
	}
}

// TaskState tracks where a task is in its lifecycle.
type TaskState uint8

const (
	StateReady TaskState = iota
	StateRunning
	StateBlocked
)

func (s TaskState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Task is one unit of sequential logic with a fixed priority. Tasks are
// created once at boot and never destroyed.
//
// All blocking methods must be called from the task's own function; a task
// holds the virtual CPU from the moment it is dispatched until it blocks.
type Task struct {
	s    *Scheduler
	name string
	prio Priority

	// Guarded by s.mu.
	state       TaskState
	deadline    uint64
	hasDeadline bool
	timedOut    bool
	waitQ       *Queue
	recvVal     uint32
	recvOK      bool

	// run carries the CPU grant. Buffered so a task may hand the token
	// to itself when it yields and is immediately redispatched.
	run chan struct{}
}

func (t *Task) Name() string       { return t.name }
func (t *Task) Priority() Priority { return t.prio }

// State returns the task's current scheduling state.
func (t *Task) State() TaskState {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.state
}

// TickCount returns the scheduler's current tick.
func (t *Task) TickCount() uint64 {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.tick
}

// DelayUntil blocks the task until the absolute tick *wake + period and
// advances *wake by exactly period. Keeping the deadline absolute makes the
// wake cadence independent of how long the task body ran, so the period
// accumulates no drift.
func (t *Task) DelayUntil(wake *uint64, period uint64) {
	*wake += period

	s := t.s
	s.mu.Lock()
	if *wake <= s.tick {
		// Deadline already passed; yield once so other ready work runs.
		t.state = StateReady
	} else {
		t.deadline = *wake
		t.hasDeadline = true
		t.state = StateBlocked
	}
	t.suspendLocked()
}

// suspendLocked gives up the CPU with s.mu held and returns once the
// scheduler grants it back. The caller must have set t.state first.
func (t *Task) suspendLocked() {
	s := t.s
	s.current = nil
	s.dispatchLocked()
	s.mu.Unlock()
	<-t.run
}
