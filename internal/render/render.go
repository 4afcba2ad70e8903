// Package render converts decoded images into terminal escape sequences.
// The halfblock backend is pure Go and works on any true-color terminal;
// kitty, iTerm2, and sixel go through go-termimg.
package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/blacktop/go-termimg"
)

// Protocol selects the terminal graphics backend.
type Protocol int

const (
	ProtocolHalfblocks Protocol = iota
	ProtocolKitty
	ProtocolITerm2
	ProtocolSixel
)

func (p Protocol) String() string {
	switch p {
	case ProtocolKitty:
		return "kitty"
	case ProtocolITerm2:
		return "iterm2"
	case ProtocolSixel:
		return "sixel"
	default:
		return "halfblocks"
	}
}

// ParseProtocol maps a flag value to a Protocol. Unknown values fall back
// to halfblocks, which every true-color terminal can display.
func ParseProtocol(s string) Protocol {
	switch strings.ToLower(s) {
	case "kitty":
		return ProtocolKitty
	case "iterm2", "iterm":
		return ProtocolITerm2
	case "sixel":
		return ProtocolSixel
	default:
		return ProtocolHalfblocks
	}
}

// Renderer turns images into escape strings sized in terminal cells.
type Renderer struct {
	protocol Protocol
	cellW    int
	cellH    int
}

// New creates a renderer for the given protocol with default cell metrics.
func New(protocol Protocol) *Renderer {
	return &Renderer{protocol: protocol, cellW: 8, cellH: 16}
}

// Protocol returns the active rendering protocol.
func (r *Renderer) Protocol() Protocol {
	return r.protocol
}

// Render resizes img to fit widthCells x heightCells and renders it with
// the active protocol.
func (r *Renderer) Render(img image.Image, widthCells, heightCells int) (string, error) {
	if img == nil {
		return "", fmt.Errorf("image is nil")
	}
	resized := ResizeToFit(img, widthCells, heightCells, r.cellW, r.cellH)

	switch r.protocol {
	case ProtocolKitty:
		return renderTermimg(resized, termimg.Kitty, widthCells, heightCells)
	case ProtocolITerm2:
		return renderTermimg(resized, termimg.ITerm2, widthCells, heightCells)
	case ProtocolSixel:
		return renderTermimg(resized, termimg.Sixel, widthCells, heightCells)
	default:
		return renderHalfblocks(resized)
	}
}

// renderTermimg delegates to go-termimg for the protocols it implements.
func renderTermimg(img image.Image, proto termimg.Protocol, widthCells, heightCells int) (string, error) {
	ti := termimg.New(img)
	if ti == nil {
		return "", fmt.Errorf("go-termimg: failed to wrap image")
	}
	ti.Protocol(proto).Size(widthCells, heightCells).Scale(termimg.ScaleFit)
	return ti.Render()
}

// renderHalfblocks encodes two vertical pixels per character cell using
// the upper half block (U+2580): top pixel as foreground, bottom pixel as
// background, both in 24-bit color. Transparent pixels keep the terminal
// default background.
func renderHalfblocks(img image.Image) (string, error) {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return "", nil
	}

	nrgba := toNRGBA(img)

	var b strings.Builder
	b.Grow(srcW * (srcH/2 + 1) * 30)

	for y := 0; y < srcH; y += 2 {
		if y > 0 {
			b.WriteString("\x1b[0m\n")
		}
		for x := 0; x < srcW; x++ {
			top := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)

			var bot struct{ R, G, B, A uint8 }
			if y+1 < srcH {
				px := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y+1)
				bot.R, bot.G, bot.B, bot.A = px.R, px.G, px.B, px.A
			}

			switch {
			case top.A == 0 && bot.A == 0:
				b.WriteString("\x1b[0m ")
			case top.A == 0:
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[49m▄", bot.R, bot.G, bot.B)
			case bot.A == 0:
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[49m▀", top.R, top.G, top.B)
			default:
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
					top.R, top.G, top.B, bot.R, bot.G, bot.B)
			}
		}
	}

	b.WriteString("\x1b[0m")
	return b.String(), nil
}
