package kernel

// Queue is a single-slot blocking channel for task-to-task handoff.
//
// When a receiver is already waiting, a send hands the value over directly
// and the slot never becomes occupied, so occupancy is always 0 or 1.
// Waiters are kept FIFO and exactly one is woken per matching operation.
type Queue struct {
	s    *Scheduler
	full bool
	slot uint32

	recvWaiters []*Task
	sendWaiters []*Task
}

// NewQueue allocates a queue from the scheduler's fixed pool. The pool is
// sized at boot, so exhaustion is fatal.
func (s *Scheduler) NewQueue() *Queue {
	s.mu.Lock()
	if s.queues >= maxQueues {
		s.mu.Unlock()
		s.halter.AllocFailed("queue")
		return nil
	}
	s.queues++
	s.mu.Unlock()
	return &Queue{s: s}
}

// Send stores v if the slot is free, waking one blocked receiver. With a
// zero timeout a full slot fails immediately; otherwise the task blocks
// until space frees or timeout ticks elapse. Reports success.
func (q *Queue) Send(t *Task, v uint32, timeout uint64) bool {
	s := q.s
	s.mu.Lock()

	timed := timeout != 0 && timeout != Forever
	deadline := s.tick + timeout

	for {
		if !q.full {
			if w := popWaiter(&q.recvWaiters); w != nil {
				w.recvVal = v
				w.recvOK = true
				q.readyLocked(w)
				q.yieldToLocked(t, w)
				return true
			}
			q.slot = v
			q.full = true
			s.mu.Unlock()
			return true
		}

		if timeout == 0 {
			s.mu.Unlock()
			return false
		}

		q.blockLocked(t, &q.sendWaiters, deadline, timed)
		s.mu.Lock()
		if t.timedOut {
			t.timedOut = false
			s.mu.Unlock()
			return false
		}
	}
}

// SendFromISR stores v from outside any task (interrupt context or another
// core). It never blocks: a full slot fails immediately.
func (q *Queue) SendFromISR(v uint32) bool {
	s := q.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.full {
		return false
	}
	if w := popWaiter(&q.recvWaiters); w != nil {
		w.recvVal = v
		w.recvOK = true
		q.readyLocked(w)
		s.dispatchLocked()
		return true
	}
	q.slot = v
	q.full = true
	return true
}

// Receive dequeues an element if one is present. Otherwise the task blocks
// until a send arrives or timeout ticks elapse; Forever blocks with no time
// limit. Returns the value and whether one was delivered.
func (q *Queue) Receive(t *Task, timeout uint64) (uint32, bool) {
	s := q.s
	s.mu.Lock()

	if q.full {
		v := q.slot
		q.full = false
		if w := popWaiter(&q.sendWaiters); w != nil {
			// A blocked sender retries its store once it runs.
			q.readyLocked(w)
			q.yieldToLocked(t, w)
			return v, true
		}
		s.mu.Unlock()
		return v, true
	}

	if timeout == 0 {
		s.mu.Unlock()
		return 0, false
	}

	t.recvOK = false
	timed := timeout != Forever
	q.blockLocked(t, &q.recvWaiters, s.tick+timeout, timed)

	s.mu.Lock()
	if t.timedOut {
		t.timedOut = false
		s.mu.Unlock()
		return 0, false
	}
	v, ok := t.recvVal, t.recvOK
	t.recvOK = false
	s.mu.Unlock()
	return v, ok
}

// Len reports queue occupancy, always 0 or 1.
func (q *Queue) Len() int {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if q.full {
		return 1
	}
	return 0
}

// readyLocked clears a waiter's wait bookkeeping and marks it ready.
func (q *Queue) readyLocked(w *Task) {
	w.hasDeadline = false
	w.waitQ = nil
	w.state = StateReady
}

// yieldToLocked applies the immediate-preemption rule after t readied w,
// releasing s.mu: a woken task of higher priority than the caller takes the
// CPU right away.
func (q *Queue) yieldToLocked(t, w *Task) {
	s := q.s
	if t != nil && s.current == t && w.prio > t.prio {
		t.state = StateReady
		t.suspendLocked()
		return
	}
	s.dispatchLocked()
	s.mu.Unlock()
}

// blockLocked parks t on the given waiter list and gives up the CPU,
// releasing s.mu.
func (q *Queue) blockLocked(t *Task, list *[]*Task, deadline uint64, timed bool) {
	t.waitQ = q
	*list = append(*list, t)
	if timed {
		t.deadline = deadline
		t.hasDeadline = true
	}
	t.state = StateBlocked
	t.suspendLocked()
}

func (q *Queue) removeWaiterLocked(t *Task) {
	removeTask(&q.recvWaiters, t)
	removeTask(&q.sendWaiters, t)
}

func popWaiter(list *[]*Task) *Task {
	if len(*list) == 0 {
		return nil
	}
	w := (*list)[0]
	*list = (*list)[1:]
	return w
}

func removeTask(list *[]*Task, t *Task) {
	for i, w := range *list {
		if w == t {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}
