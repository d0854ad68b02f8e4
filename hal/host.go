package hal

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

var errIRQNotInitialized = errors.New("interrupt controller not initialized")

const consoleTailLines = 16

type hostHAL struct {
	logger *hostLogger
	ind    *hostIndicator
	irq    *hostIRQ
	cores  hostCores
	t      *hostTime
	fb     *hostFramebuffer
}

// New returns a host HAL implementation simulating a board with the given
// number of cores.
func New(cores int) HAL {
	if cores < 1 {
		cores = 1
	}
	logger := &hostLogger{w: os.Stdout}
	return &hostHAL{
		logger: logger,
		ind:    &hostIndicator{logger: logger},
		irq:    &hostIRQ{},
		cores:  hostCores{n: cores},
		t:      newHostTime(),
		fb:     newHostFramebuffer(320, 240),
	}
}

func (h *hostHAL) Logger() Logger       { return h.logger }
func (h *hostHAL) Indicator() Indicator { return h.ind }
func (h *hostHAL) IRQ() IRQ             { return h.irq }
func (h *hostHAL) Cores() Cores         { return h.cores }
func (h *hostHAL) Time() Time           { return h.t }
func (h *hostHAL) Display() Display     { return hostDisplay{fb: h.fb} }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu   sync.Mutex
	w    *os.File
	tail [consoleTailLines]string
	n    uint64
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
	l.tail[l.n%consoleTailLines] = s
	l.n++
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

// snapshotTail returns the most recent console lines, oldest first.
func (l *hostLogger) snapshotTail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.n
	if count > consoleTailLines {
		count = consoleTailLines
	}
	out := make([]string, 0, count)
	for i := l.n - count; i < l.n; i++ {
		out = append(out, l.tail[i%consoleTailLines])
	}
	return out
}

type lampState struct {
	enabled bool
	on      bool
}

type hostIndicator struct {
	mu     sync.Mutex
	lamps  [channelCount]lampState
	logger *hostLogger
}

func (ind *hostIndicator) Enable(ch Channel) {
	if ch >= channelCount {
		return
	}
	ind.mu.Lock()
	ind.lamps[ch].enabled = true
	ind.mu.Unlock()
}

func (ind *hostIndicator) Set(ch Channel, on bool) {
	if ch >= channelCount {
		return
	}
	ind.mu.Lock()
	lamp := &ind.lamps[ch]
	if !lamp.enabled || lamp.on == on {
		ind.mu.Unlock()
		return
	}
	lamp.on = on
	ind.mu.Unlock()

	if on {
		ind.logger.WriteLineString("indicator: " + ch.String() + " ON")
	} else {
		ind.logger.WriteLineString("indicator: " + ch.String() + " off")
	}
}

// snapshot copies the lamp states for rendering.
func (ind *hostIndicator) snapshot() [channelCount]lampState {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.lamps
}

type hostIRQ struct {
	mu       sync.Mutex
	inited   bool
	disabled bool
	lines    map[int]bool
}

func (c *hostIRQ) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inited = true
	c.lines = map[int]bool{}
	return nil
}

func (c *hostIRQ) Enable(line int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inited {
		return errIRQNotInitialized
	}
	c.lines[line] = true
	return nil
}

func (c *hostIRQ) DisableAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = true
	for line := range c.lines {
		c.lines[line] = false
	}
}

type hostCores struct {
	n int
}

func (c hostCores) Total() int { return c.n }
