package kernel

import "sync"

const (
	maxTasks  = 8
	maxQueues = 4
)

// Forever blocks a queue operation with no time limit.
const Forever = ^uint64(0)

// Scheduler is a fixed-priority preemptive task runner for one core.
//
// Exactly one task owns the virtual CPU at a time. The owner runs until it
// blocks (queue send/receive, delay-until); the scheduler then dispatches
// the highest-priority ready task. A queue operation that readies a task of
// higher priority than the caller preempts the caller immediately, not at
// the next tick boundary.
type Scheduler struct {
	mu      sync.Mutex
	halter  *Halter
	tasks   []*Task
	queues  int
	current *Task
	tick    uint64
	started bool
}

// New creates a scheduler. Fatal conditions raised by the scheduler (task
// table exhaustion, task faults) are routed through h; a nil h installs a
// halter that parks silently.
func New(h *Halter) *Scheduler {
	if h == nil {
		h = NewHalter(nil)
	}
	return &Scheduler{halter: h}
}

// Spawn registers a task. Tasks may only be created before Start; the task
// table is fixed at boot, so exhaustion and late creation are fatal.
func (s *Scheduler) Spawn(name string, prio Priority, fn func(*Task)) *Task {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.halter.Fatal("task created after scheduler start: " + name)
		return nil
	}
	if len(s.tasks) >= maxTasks {
		s.mu.Unlock()
		s.halter.AllocFailed("task " + name)
		return nil
	}
	t := &Task{
		s:     s,
		name:  name,
		prio:  prio,
		state: StateReady,
		run:   make(chan struct{}, 1),
	}
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	go s.runTask(t, fn)
	return t
}

func (s *Scheduler) runTask(t *Task, fn func(*Task)) {
	defer func() {
		if r := recover(); r != nil {
			s.halter.TaskFault(t.name, r)
		}
	}()

	<-t.run
	fn(t)

	// Task functions run forever in this design; a return parks the task.
	s.mu.Lock()
	t.state = StateBlocked
	s.current = nil
	s.dispatchLocked()
	s.mu.Unlock()
}

// Start dispatches the highest-priority ready task. It does not block; use
// Run to also pump a tick stream.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.started = true
	s.dispatchLocked()
	s.mu.Unlock()
}

// Run starts the scheduler and advances it from the tick stream. It returns
// when the stream closes, which never happens on hardware.
func (s *Scheduler) Run(ticks <-chan uint64) {
	s.Start()
	for seq := range ticks {
		s.TickTo(seq)
	}
}

// TickTo advances the scheduler clock to seq, waking every blocked task
// whose deadline has been reached. Stale sequence numbers are ignored.
func (s *Scheduler) TickTo(seq uint64) {
	s.mu.Lock()
	if seq <= s.tick {
		s.mu.Unlock()
		return
	}
	s.tick = seq

	for _, t := range s.tasks {
		if t.state != StateBlocked || !t.hasDeadline || t.deadline > s.tick {
			continue
		}
		t.hasDeadline = false
		if t.waitQ != nil {
			// A queue waiter reaching its deadline is a timeout.
			t.waitQ.removeWaiterLocked(t)
			t.waitQ = nil
			t.timedOut = true
		}
		t.state = StateReady
	}

	s.dispatchLocked()
	s.mu.Unlock()
}

// Tick returns the current scheduler tick.
func (s *Scheduler) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// dispatchLocked hands the CPU to the highest-priority ready task if the
// CPU is free. Ties keep creation order.
func (s *Scheduler) dispatchLocked() {
	if s.current != nil || !s.started {
		return
	}

	var next *Task
	for _, t := range s.tasks {
		if t.state != StateReady {
			continue
		}
		if next == nil || t.prio > next.prio {
			next = t
		}
	}
	if next == nil {
		return
	}

	next.state = StateRunning
	s.current = next
	next.run <- struct{}{}
}
