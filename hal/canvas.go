package hal

import "image/color"

// Canvas adapts a Framebuffer to the pixel-writer contract expected by
// tinyfont drawing routines.
type Canvas struct {
	FB Framebuffer
}

func (c Canvas) Size() (x, y int16) {
	if c.FB == nil {
		return 0, 0
	}
	return int16(c.FB.Width()), int16(c.FB.Height())
}

func (c Canvas) SetPixel(x, y int16, col color.RGBA) {
	if c.FB == nil || c.FB.Format() != PixelFormatRGB565 {
		return
	}
	buf := c.FB.Buffer()
	if buf == nil {
		return
	}

	w := c.FB.Width()
	h := c.FB.Height()
	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= w || iy < 0 || iy >= h {
		return
	}

	pixel := rgb565(col.R, col.G, col.B)
	off := iy*c.FB.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (c Canvas) Display() error { return nil }

// FillRect paints a solid rectangle, clipped to the framebuffer.
func (c Canvas) FillRect(x, y, w, h int, col color.RGBA) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.SetPixel(int16(xx), int16(yy), col)
		}
	}
}
