package kernel

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// HaltInfo describes a fatal condition.
type HaltInfo struct {
	Reason string
	Task   string
	Stack  []byte
}

// Halter funnels every fatal condition into one terminal sequence: run the
// installed handler (at most once, on the first fault), then park the
// calling goroutine forever. The handler is expected to disable interrupts
// and emit its diagnostics before returning; returning is allowed so the
// park is guaranteed to follow the emission.
type Halter struct {
	active  atomic.Bool
	once    sync.Once
	handler func(HaltInfo)
}

// NewHalter creates a halter. A nil handler parks without diagnostics.
func NewHalter(handler func(HaltInfo)) *Halter {
	return &Halter{handler: handler}
}

// Active reports whether a fatal condition has been raised.
func (h *Halter) Active() bool {
	return h.active.Load()
}

// Fatal raises a fatal condition and never returns.
func (h *Halter) Fatal(reason string) {
	h.halt(HaltInfo{Reason: reason})
}

// AllocFailed raises the fatal resource-exhaustion condition and never
// returns.
func (h *Halter) AllocFailed(what string) {
	h.halt(HaltInfo{Reason: "allocation failed: " + what})
}

// TaskFault raises a fatal condition on behalf of a faulting task,
// identifying it by name, and never returns.
func (h *Halter) TaskFault(task string, v any) {
	h.halt(HaltInfo{
		Reason: fmt.Sprintf("task fault: %v", v),
		Task:   task,
		Stack:  debug.Stack(),
	})
}

func (h *Halter) halt(info HaltInfo) {
	h.once.Do(func() {
		h.active.Store(true)
		if h.handler != nil {
			h.handler(info)
		}
	})
	select {}
}
