// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

// Package overlay draws the on-screen display. The display is made up of an
// optional menu image and a list of short text messages, each of which is
// shown for a limited number of frames.
//
// The result of Render() is a pixels.RawFrame in the RGBA4444 format, which
// is suitable for the Pipeline.SetOverlay() function.
package overlay

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jetsetilly/retrace/video/pixels"
)

// DefaultDuration is the number of frames a message is shown for if no
// duration is given.
const DefaultDuration = 180

// MaxMessages is the number of messages that can be shown at once. Older
// messages are removed to make room for new messages.
const MaxMessages = 4

// margin around the edge of the overlay and between lines of text
const (
	margin  = 8
	padding = 3
)

type message struct {
	text   string
	frames int
}

// Overlay is the on-screen display.
type Overlay struct {
	crit sync.Mutex

	canvas *image.NRGBA
	raw    pixels.RawFrame

	face font.Face

	messages []message

	// menu image scaled to the size of the overlay
	menu *image.NRGBA

	// the canvas needs to be redrawn
	dirty bool

	// colours
	Foreground color.NRGBA
	Background color.NRGBA
}

// NewOverlay is the preferred method of initialisation for the Overlay type.
// The dimensions are rounded down to a multiple of four.
func NewOverlay(width int, height int) *Overlay {
	width &^= 3
	height &^= 3

	ovl := &Overlay{
		canvas:     image.NewNRGBA(image.Rect(0, 0, width, height)),
		raw:        pixels.NewRawFrame(width, height, pixels.FormatRGBA4444),
		face:       basicfont.Face7x13,
		Foreground: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.NRGBA{A: 160},
	}
	return ovl
}

// Message adds a text message to the display. A duration of zero or less
// means the default duration.
func (ovl *Overlay) Message(text string, frames int) {
	ovl.crit.Lock()
	defer ovl.crit.Unlock()

	if frames <= 0 {
		frames = DefaultDuration
	}
	ovl.messages = append(ovl.messages, message{text: text, frames: frames})
	if len(ovl.messages) > MaxMessages {
		ovl.messages = ovl.messages[len(ovl.messages)-MaxMessages:]
	}
	ovl.dirty = true
}

// Messages returns the text of the messages currently shown.
func (ovl *Overlay) Messages() []string {
	ovl.crit.Lock()
	defer ovl.crit.Unlock()

	m := make([]string, 0, len(ovl.messages))
	for _, msg := range ovl.messages {
		m = append(m, msg.text)
	}
	return m
}

// SetMenu sets the image shown behind the messages. The image is scaled to
// fill the overlay. A nil image removes the menu.
func (ovl *Overlay) SetMenu(img image.Image, smooth bool) {
	ovl.crit.Lock()
	defer ovl.crit.Unlock()

	ovl.dirty = true

	if img == nil {
		ovl.menu = nil
		return
	}

	ovl.menu = image.NewNRGBA(ovl.canvas.Bounds())
	var scaler draw.Scaler = draw.NearestNeighbor
	if smooth {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(ovl.menu, ovl.menu.Bounds(), img, img.Bounds(), draw.Src, nil)
}

// Tick should be called once per frame. Messages that have expired are
// removed.
func (ovl *Overlay) Tick() {
	ovl.crit.Lock()
	defer ovl.crit.Unlock()

	n := 0
	for _, msg := range ovl.messages {
		msg.frames--
		if msg.frames > 0 {
			ovl.messages[n] = msg
			n++
		}
	}
	if n != len(ovl.messages) {
		ovl.dirty = true
	}
	ovl.messages = ovl.messages[:n]
}

// Active returns true if there is anything to display.
func (ovl *Overlay) Active() bool {
	ovl.crit.Lock()
	defer ovl.crit.Unlock()
	return ovl.menu != nil || len(ovl.messages) > 0
}

// Render the overlay. Returns nil if there is nothing to display. The returned
// frame is reused by the next call to Render().
func (ovl *Overlay) Render() *pixels.RawFrame {
	ovl.crit.Lock()
	defer ovl.crit.Unlock()

	if ovl.menu == nil && len(ovl.messages) == 0 {
		return nil
	}

	if ovl.dirty {
		ovl.draw()
		encode(ovl.canvas, ovl.raw)
		ovl.dirty = false
	}

	return &ovl.raw
}

func (ovl *Overlay) draw() {
	b := ovl.canvas.Bounds()

	if ovl.menu != nil {
		draw.Draw(ovl.canvas, b, ovl.menu, image.Point{}, draw.Src)
	} else {
		draw.Draw(ovl.canvas, b, image.Transparent, image.Point{}, draw.Src)
	}

	metrics := ovl.face.Metrics()
	lineHeight := metrics.Height.Ceil() + padding*2

	// messages are drawn from the bottom of the overlay upwards with the
	// most recent message at the bottom
	y := b.Max.Y - margin
	for i := len(ovl.messages) - 1; i >= 0; i-- {
		text := ovl.messages[i].text
		width := font.MeasureString(ovl.face, text).Ceil()

		box := image.Rect(margin, y-lineHeight, margin+width+padding*2, y)
		box = box.Intersect(b)
		if box.Empty() {
			break // for loop
		}
		draw.Draw(ovl.canvas, box, image.NewUniform(ovl.Background), image.Point{}, draw.Over)

		d := &font.Drawer{
			Dst:  ovl.canvas,
			Src:  image.NewUniform(ovl.Foreground),
			Face: ovl.face,
			Dot:  fixed.P(margin+padding, y-padding-metrics.Descent.Ceil()),
		}
		d.DrawString(text)

		y -= lineHeight + padding
	}
}

// encode the canvas as RGBA4444. each pixel is little-endian with red in the
// most significant nibble
func encode(img *image.NRGBA, raw pixels.RawFrame) {
	for y := range raw.Height {
		src := img.Pix[y*img.Stride:]
		dst := raw.Data[y*raw.Pitch:]
		for x := range raw.Width {
			r := src[x*4] >> 4
			g := src[x*4+1] >> 4
			b := src[x*4+2] >> 4
			a := src[x*4+3] >> 4
			dst[x*2] = b<<4 | a
			dst[x*2+1] = r<<4 | g
		}
	}
}
