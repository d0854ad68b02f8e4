package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ember/app"
	"ember/emberos/tasks/blink"
	"ember/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var period uint64
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 1000, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&cfg.Cores, "cores", 2, "Number of simulated cores.")
	flag.Uint64Var(&period, "period", blink.DefaultSendPeriod, "Producer send period in ticks.")
	flag.Parse()

	boot := func(h hal.HAL) {
		app.Boot(h, app.Config{SendPeriod: period})
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, boot, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(boot, cfg.Cores); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
