package hal

import (
	"image/color"
	"os"
	"strings"
	"testing"
)

func rgba(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func newFileLogger(t *testing.T) (*hostLogger, func() string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "console")
	if err != nil {
		t.Fatalf("CreateTemp() error = %v", err)
	}
	l := &hostLogger{w: f}
	return l, func() string {
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		return string(data)
	}
}

func TestHostLoggerTail(t *testing.T) {
	l, _ := newFileLogger(t)

	l.WriteLineString("a")
	l.WriteLineString("b")
	got := l.snapshotTail()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("snapshotTail() = %q, want [a b]", got)
	}

	for i := 0; i < consoleTailLines+3; i++ {
		l.WriteLineString("x")
	}
	got = l.snapshotTail()
	if len(got) != consoleTailLines {
		t.Fatalf("snapshotTail() length = %d, want %d", len(got), consoleTailLines)
	}
}

func TestHostIndicatorRequiresEnable(t *testing.T) {
	l, read := newFileLogger(t)
	ind := &hostIndicator{logger: l}

	ind.Set(ChannelGreen, true)
	if out := read(); out != "" {
		t.Fatalf("output before Enable = %q, want empty", out)
	}

	ind.Enable(ChannelGreen)
	ind.Set(ChannelGreen, true)
	ind.Set(ChannelGreen, true)
	ind.Set(ChannelGreen, false)

	out := read()
	if want := "indicator: green ON\nindicator: green off\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}

	lamps := ind.snapshot()
	if lamps[ChannelGreen].on {
		t.Fatal("green lamp still on after Set(false)")
	}
	if lamps[ChannelRed].enabled {
		t.Fatal("red lamp enabled without Enable")
	}
}

func TestHostIRQEnableBeforeInit(t *testing.T) {
	var irq hostIRQ
	if err := irq.Enable(0); err == nil {
		t.Fatal("Enable() before Init succeeded, want error")
	}
	if err := irq.Init(); err != nil {
		t.Fatalf("Init() error = %v, want nil", err)
	}
	if err := irq.Enable(0); err != nil {
		t.Fatalf("Enable() error = %v, want nil", err)
	}
	irq.DisableAll()
	if !irq.disabled {
		t.Fatal("DisableAll() did not latch")
	}
}

func TestHostTimeSequence(t *testing.T) {
	tm := newHostTime()
	tm.stepN(3)

	for want := uint64(1); want <= 3; want++ {
		select {
		case seq := <-tm.Ticks():
			if seq != want {
				t.Fatalf("tick = %d, want %d", seq, want)
			}
		default:
			t.Fatalf("missing tick %d", want)
		}
	}
}

func TestCanvasWritesAndClips(t *testing.T) {
	fb := newHostFramebuffer(4, 4)
	cv := Canvas{FB: fb}

	w, h := cv.Size()
	if w != 4 || h != 4 {
		t.Fatalf("Size() = (%d, %d), want (4, 4)", w, h)
	}

	cv.SetPixel(1, 2, rgba(255, 0, 0))
	// Out of bounds must be ignored.
	cv.SetPixel(-1, 0, rgba(255, 255, 255))
	cv.SetPixel(4, 0, rgba(255, 255, 255))
	cv.SetPixel(0, 4, rgba(255, 255, 255))

	buf := fb.Buffer()
	off := 2*fb.StrideBytes() + 1*2
	pixel := uint16(buf[off]) | uint16(buf[off+1])<<8
	r, g, b := rgb888From565(pixel)
	if r < 240 || g != 0 || b != 0 {
		t.Fatalf("pixel at (1,2) = (%d, %d, %d), want red", r, g, b)
	}

	for i := 0; i < len(buf); i += 2 {
		if i == off {
			continue
		}
		if buf[i] != 0 || buf[i+1] != 0 {
			t.Fatalf("unexpected pixel data at offset %d", i)
		}
	}
}

func TestCanvasFillRect(t *testing.T) {
	fb := newHostFramebuffer(8, 8)
	cv := Canvas{FB: fb}

	cv.FillRect(2, 2, 3, 3, rgba(0, 255, 0))

	buf := fb.Buffer()
	filled := 0
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != 0 || buf[i+1] != 0 {
			filled++
		}
	}
	if filled != 9 {
		t.Fatalf("filled pixels = %d, want 9", filled)
	}
}

func TestChannelStrings(t *testing.T) {
	if got := ChannelRed.String(); got != "red" {
		t.Fatalf("ChannelRed.String() = %q, want %q", got, "red")
	}
	if got := Channel(200).String(); !strings.Contains(got, "unknown") {
		t.Fatalf("Channel(200).String() = %q, want unknown", got)
	}
}
