package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Cores   int
	Hz      int
	Ticks   uint64
}

// RunHeadless runs the firmware without opening a window.
//
// The firmware entry receives the HAL and is expected to boot and return;
// the runner then pumps ticks until the context is cancelled or the tick
// budget is exhausted.
func RunHeadless(ctx context.Context, boot func(HAL), cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 1000
	}

	h := New(cfg.Cores).(*hostHAL)
	boot(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step(1)
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
