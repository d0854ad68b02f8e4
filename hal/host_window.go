//go:build cgo

package hal

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"ember/internal/buildinfo"
)

// RunWindow starts a desktop window that shows the indicator lamps and the
// console tail. It blocks until the window closes.
func RunWindow(boot func(HAL), cores int) error {
	h := New(cores).(*hostHAL)
	boot(h)

	g := &hostGame{h: h}
	ebiten.SetWindowTitle("Ember (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	g.h.t.step(1)
	g.renderStatus()
	return nil
}

// renderStatus paints the lamp bank and console tail into the framebuffer.
func (g *hostGame) renderStatus() {
	fb := g.h.fb
	fb.ClearRGB(16, 16, 24)

	cv := Canvas{FB: fb}
	font := &proggy.TinySZ8pt7b

	lampColors := [channelCount]color.RGBA{
		ChannelRed:   {R: 255, A: 255},
		ChannelGreen: {G: 255, A: 255},
		ChannelBlue:  {B: 255, A: 255},
	}
	dim := color.RGBA{R: 48, G: 48, B: 48, A: 255}
	text := color.RGBA{R: 220, G: 220, B: 220, A: 255}

	lamps := g.h.ind.snapshot()
	for ch := Channel(0); ch < channelCount; ch++ {
		x := 16 + int(ch)*56
		col := dim
		if lamps[ch].enabled && lamps[ch].on {
			col = lampColors[ch]
		}
		cv.FillRect(x, 16, 40, 40, col)
		tinyfont.WriteLine(cv, font, int16(x), 68, ch.String(), text)
	}

	y := int16(92)
	for _, line := range g.h.logger.snapshotTail() {
		if int(y) >= fb.height {
			break
		}
		tinyfont.WriteLine(cv, font, 8, y, line, text)
		y += 10
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
