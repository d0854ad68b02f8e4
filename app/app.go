// Package app wires the HAL, the boot rendezvous, and the scheduler into
// the running firmware: all cores boot in parallel, rendezvous, and the
// primary core then runs the producer/consumer pair forever.
package app

import (
	"fmt"
	"sync"

	"ember/emberos/boot"
	"ember/emberos/kernel"
	"ember/emberos/tasks/blink"
	"ember/hal"
	"ember/internal/buildinfo"
)

const primaryHart = 0

// lockInitFailMsg is the fixed diagnostic for a failed lock init. Emitted
// before the system halts; no task ever runs after it.
const lockInitFailMsg = "Failed to initialize boot lock"

// Config carries the boot-time parameters. There is no runtime
// configuration surface; everything is fixed before the scheduler starts.
type Config struct {
	// Cores overrides the HAL core count when nonzero.
	Cores int
	// SendPeriod is the producer period in ticks (default blink.DefaultSendPeriod).
	SendPeriod uint64
	// LockInit overrides lock initialization (fault injection in tests).
	LockInit func() error
}

// System is the booted firmware. It exists for observation only; the
// firmware itself runs until reset and is never torn down.
type System struct {
	halter *kernel.Halter

	mu    sync.Mutex
	sched *kernel.Scheduler
}

// Halter returns the system's fatal-condition funnel.
func (sys *System) Halter() *kernel.Halter { return sys.halter }

// Scheduler returns the primary core's scheduler, or nil while boot has not
// reached task creation (or never will, on the fatal path).
func (sys *System) Scheduler() *kernel.Scheduler {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return sys.sched
}

func (sys *System) setScheduler(s *kernel.Scheduler) {
	sys.mu.Lock()
	sys.sched = s
	sys.mu.Unlock()
}

// Boot launches every core's boot code and returns immediately. The cores
// run on their own goroutines forever.
func Boot(h hal.HAL, cfg Config) *System {
	if cfg.Cores == 0 {
		cfg.Cores = h.Cores().Total()
	}
	if cfg.SendPeriod == 0 {
		cfg.SendPeriod = blink.DefaultSendPeriod
	}

	var opts []boot.Option
	if cfg.LockInit != nil {
		opts = append(opts, boot.WithLockInit(cfg.LockInit))
	}
	b := boot.New(cfg.Cores, opts...)

	sys := &System{halter: installHaltHandler(h)}

	for id := primaryHart + 1; id < cfg.Cores; id++ {
		go secondaryMain(h, b, id)
	}
	go primaryMain(h, b, cfg, sys)

	return sys
}

// primaryMain is hart 0: initialize the lock, open the start gate, then run
// the application.
func primaryMain(h hal.HAL, b *boot.Boot, cfg Config, sys *System) {
	if err := b.InitLock(); err != nil {
		sys.halter.Fatal(lockInitFailMsg)
		return
	}
	b.OpenStartGate()

	setupHardware(h, b)

	h.Logger().WriteLineString("Ember multicore demo start after other hart init OK (" + buildinfo.Short() + ")")

	s := kernel.New(sys.halter)
	q := s.NewQueue()

	s.Spawn("Rx", kernel.PriorityConsumer, blink.Consumer(h.Indicator(), h.Logger(), q))
	s.Spawn("Tx", kernel.PriorityProducer, blink.Producer(h.Indicator(), q, cfg.SendPeriod, sys.halter))
	sys.setScheduler(s)

	s.Run(h.Time().Ticks())
}

// secondaryMain is every hart other than 0: wait for the gate, check in,
// then park in a low-power wait.
func secondaryMain(h hal.HAL, b *boot.Boot, id int) {
	b.AwaitStartGate()
	b.Checkin(func() {
		h.Logger().WriteLineString(fmt.Sprintf("hart %d: init", id))
	})
	b.AwaitAll()

	// wfi stand-in: the hart sleeps until hardware reset.
	select {}
}

// setupHardware completes the rendezvous and performs the single-owner
// hardware setup: interrupt controller and indicator bank.
func setupHardware(h hal.HAL, b *boot.Boot) {
	b.Checkin(nil)
	b.AwaitAll()

	irq := h.IRQ()
	if err := irq.Init(); err != nil {
		h.Logger().WriteLineString("No external interrupt controller")
		return
	}
	if err := irq.Enable(0); err != nil {
		return
	}

	ind := h.Indicator()
	for _, ch := range []hal.Channel{hal.ChannelRed, hal.ChannelGreen, hal.ChannelBlue} {
		ind.Enable(ch)
		ind.Set(ch, false)
	}
}
