package hal

import "errors"

// Logger writes newline-delimited console output.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Channel identifies one lamp of the indicator bank.
type Channel uint8

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue

	channelCount
)

func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Indicator is a bank of addressable lamps.
//
// A channel must be enabled before Set has a visible effect.
type Indicator interface {
	Enable(ch Channel)
	Set(ch Channel, on bool)
}

// IRQ is the interrupt controller boundary.
//
// Init and Enable are consumed once during hardware setup; DisableAll is
// reserved for the fatal path.
type IRQ interface {
	Init() error
	Enable(line int) error
	DisableAll()
}

// Cores reports the machine topology.
type Cores interface {
	Total() int
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; the scheduler counts ticks, not
// wall time.
type Time interface {
	Ticks() <-chan uint64
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// HAL provides the only contact point between the firmware and the outside
// world.
type HAL interface {
	Logger() Logger
	Indicator() Indicator
	IRQ() IRQ
	Cores() Cores
	Time() Time
	Display() Display
}
