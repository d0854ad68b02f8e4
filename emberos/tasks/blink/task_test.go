package blink

import (
	"strings"
	"sync"
	"testing"
	"time"

	"ember/emberos/kernel"
	"ember/hal"
)

type recLogger struct {
	lines chan string
}

func (l *recLogger) WriteLineString(s string) { l.lines <- s }
func (l *recLogger) WriteLineBytes(b []byte)  { l.WriteLineString(string(b)) }

type fakeIndicator struct {
	mu      sync.Mutex
	on      [3]bool
	greenOn int
}

func (f *fakeIndicator) Enable(ch hal.Channel) {}

func (f *fakeIndicator) Set(ch hal.Channel, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(ch) < len(f.on) {
		f.on[ch] = on
	}
	if ch == hal.ChannelGreen && on {
		f.greenOn++
	}
}

func (f *fakeIndicator) greenOnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.greenOn
}

func waitLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case s := <-lines:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for console line")
		return ""
	}
}

func TestSentinelDeliveredEveryCycle(t *testing.T) {
	const (
		cycles = 1000
		period = 10
	)

	halts := make(chan kernel.HaltInfo, 1)
	h := kernel.NewHalter(func(info kernel.HaltInfo) { halts <- info })
	s := kernel.New(h)
	q := s.NewQueue()
	lines := make(chan string, 16)
	log := &recLogger{lines: lines}
	ind := &fakeIndicator{}

	s.Spawn("Rx", kernel.PriorityConsumer, Consumer(ind, log, q))
	s.Spawn("Tx", kernel.PriorityProducer, Producer(ind, q, period, h))
	s.Start()

	for k := 1; k <= cycles; k++ {
		s.TickTo(uint64(k) * period)
		if line := waitLine(t, lines); line != "Blink" {
			t.Fatalf("cycle %d: line = %q, want %q", k, line, "Blink")
		}
		if got := q.Len(); got != 0 {
			t.Fatalf("cycle %d: queue occupancy = %d, want 0", k, got)
		}
	}

	// The consumer logs before it drives the lamp; allow the final set to
	// land.
	deadline := time.After(time.Second)
	for ind.greenOnCount() < cycles {
		select {
		case <-deadline:
			t.Fatalf("green-on count = %d, want %d", ind.greenOnCount(), cycles)
		default:
			time.Sleep(time.Millisecond)
		}
	}

	select {
	case info := <-halts:
		t.Fatalf("unexpected halt: %+v", info)
	default:
	}
}

func TestMismatchRecoverable(t *testing.T) {
	const period = 10

	s := kernel.New(nil)
	q := s.NewQueue()
	lines := make(chan string, 16)
	log := &recLogger{lines: lines}
	ind := &fakeIndicator{}

	s.Spawn("Rx", kernel.PriorityConsumer, Consumer(ind, log, q))
	s.Spawn("Tx", kernel.PriorityProducer, Producer(ind, q, period, kernel.NewHalter(nil)))
	s.Start()

	for k := 1; k <= 3; k++ {
		s.TickTo(uint64(k) * period)
		if line := waitLine(t, lines); line != "Blink" {
			t.Fatalf("cycle %d: line = %q, want %q", k, line, "Blink")
		}
	}

	// Inject a wrong value while the consumer waits: exactly one failure
	// line, and later cycles keep succeeding.
	if !q.SendFromISR(SentinelValue + 1) {
		t.Fatal("SendFromISR() = false, want true")
	}
	if line := waitLine(t, lines); line != "Unexpected value received" {
		t.Fatalf("line = %q, want %q", line, "Unexpected value received")
	}

	for k := 4; k <= 6; k++ {
		s.TickTo(uint64(k) * period)
		if line := waitLine(t, lines); line != "Blink" {
			t.Fatalf("cycle %d after mismatch: line = %q, want %q", k, line, "Blink")
		}
	}
}

func TestSendFailureHaltsAsProtocolViolation(t *testing.T) {
	const period = 5

	halts := make(chan kernel.HaltInfo, 1)
	h := kernel.NewHalter(func(info kernel.HaltInfo) { halts <- info })
	s := kernel.New(nil)
	q := s.NewQueue()
	ind := &fakeIndicator{}

	// No consumer: prefill the slot so the zero-timeout send must fail.
	if !q.SendFromISR(1) {
		t.Fatal("SendFromISR() = false, want true")
	}

	s.Spawn("Tx", kernel.PriorityProducer, Producer(ind, q, period, h))
	s.Start()
	s.TickTo(period)

	select {
	case info := <-halts:
		if !strings.Contains(info.Reason, "priority protocol violated") {
			t.Fatalf("halt reason = %q, want a protocol violation", info.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for halt")
	}
}
