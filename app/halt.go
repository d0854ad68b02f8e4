package app

import (
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"ember/emberos/kernel"
	"ember/hal"
)

// installHaltHandler builds the halter every fatal condition converges on:
// interrupts off, failure lamp on, console diagnostic, framebuffer
// diagnostic. The halter parks the faulting core after the handler returns.
func installHaltHandler(h hal.HAL) *kernel.Halter {
	return kernel.NewHalter(func(info kernel.HaltInfo) {
		if irq := h.IRQ(); irq != nil {
			irq.DisableAll()
		}
		if ind := h.Indicator(); ind != nil {
			ind.Set(hal.ChannelRed, true)
		}

		if l := h.Logger(); l != nil {
			if info.Task != "" {
				l.WriteLineString("FATAL: task " + info.Task + ": " + info.Reason)
			} else {
				l.WriteLineString("FATAL: " + info.Reason)
			}
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line == "" {
					continue
				}
				l.WriteLineString(line)
			}
		}

		drawHaltScreen(h.Display(), info)
	})
}

// drawHaltScreen paints the fatal diagnostic onto the framebuffer, if one
// exists.
func drawHaltScreen(disp hal.Display, info kernel.HaltInfo) {
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}

	fb.ClearRGB(96, 0, 0)
	cv := hal.Canvas{FB: fb}
	font := &proggy.TinySZ8pt7b
	fg := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	lines := []string{"EMBER HALT", ""}
	if info.Task != "" {
		lines = append(lines, "task: "+info.Task)
	}
	lines = append(lines, info.Reason)

	const lineHeight = 12
	y := int16(16)
	maxH := int16(fb.Height())
	for _, line := range lines {
		if y >= maxH {
			break
		}
		tinyfont.WriteLine(cv, font, 8, y, line, fg)
		y += lineHeight
	}

	_ = fb.Present()
}
