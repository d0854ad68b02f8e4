// Package blink holds the two application tasks: a producer that sends a
// sentinel value on a fixed period and a higher-priority consumer that
// validates each delivery and drives the indicator.
package blink

import (
	"ember/emberos/kernel"
	"ember/hal"
)

const (
	// SentinelValue is the payload the producer sends every period and the
	// consumer expects on every delivery.
	SentinelValue uint32 = 100

	// DefaultSendPeriod is the producer period in ticks.
	DefaultSendPeriod uint64 = 1000
)

// Producer returns the send-task body. Each cycle it clears the indicator,
// sleeps until the next absolute wake tick, and performs a zero-timeout
// send. The consumer outranks the producer, so the slot is always empty by
// the time the send runs; a failed send means the priority configuration is
// broken and the system halts.
func Producer(ind hal.Indicator, q *kernel.Queue, period uint64, h *kernel.Halter) func(*kernel.Task) {
	return func(t *kernel.Task) {
		wake := t.TickCount()
		for {
			ind.Set(hal.ChannelGreen, false)

			t.DelayUntil(&wake, period)

			if !q.Send(t, SentinelValue, 0) {
				h.Fatal("queue full on zero-timeout send: priority protocol violated")
			}
		}
	}
}

// Consumer returns the receive-task body. It blocks on the queue with no
// time limit; a sentinel match emits the success line and lights the
// indicator, anything else emits the failure line and the loop continues.
func Consumer(ind hal.Indicator, log hal.Logger, q *kernel.Queue) func(*kernel.Task) {
	return func(t *kernel.Task) {
		for {
			v, ok := q.Receive(t, kernel.Forever)
			if !ok {
				continue
			}
			if v == SentinelValue {
				log.WriteLineString("Blink")
				ind.Set(hal.ChannelGreen, true)
			} else {
				log.WriteLineString("Unexpected value received")
			}
		}
	}
}
