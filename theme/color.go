package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an ARGB color, 0xAARRGGBB.
type Color uint32

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return Color(0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ParseColor parses #RRGGBB and #RRGGBBAA. Short forms and names are
// rejected.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 9) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, false
	}
	if len(s) == 7 {
		return Color(0xFF000000 | uint32(v)), true
	}
	rgb, a := uint32(v)>>8, uint32(v)&0xFF
	return Color(a<<24 | rgb), true
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Hex formats c as #RRGGBB, or #RRGGBBAA when not opaque.
func (c Color) Hex() string {
	if c.A() == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R(), c.G(), c.B())
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R(), c.G(), c.B(), c.A())
}

func (c Color) String() string { return c.Hex() }

// Colorful converts c for color math. Alpha is dropped.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
}

// FromColorful converts back to an opaque Color.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

// IsDark reports whether c is closer to black than white in perceived
// lightness.
func (c Color) IsDark() bool {
	l, _, _ := c.Colorful().Lab()
	return l < 0.5
}

// Blend mixes c toward o by t in [0, 1], in Lab space.
func (c Color) Blend(o Color, t float64) Color {
	return FromColorful(c.Colorful().BlendLab(o.Colorful(), t))
}

// FontStyle is a set of font attributes.
type FontStyle uint8

const (
	Italic FontStyle = 1 << iota
	Bold
	Underline
	Strikethrough
)

// None is an explicitly empty font style.
const None FontStyle = 0

var fontStyleNames = []struct {
	name  string
	style FontStyle
}{
	{"italic", Italic},
	{"bold", Bold},
	{"underline", Underline},
	{"strikethrough", Strikethrough},
}

// ParseFontStyle parses a space-separated list of italic, bold, underline
// and strikethrough, case-insensitively. Unknown words are ignored; an
// empty string is None.
func ParseFontStyle(s string) FontStyle {
	var fs FontStyle
	for _, word := range strings.Fields(strings.ToLower(s)) {
		for _, n := range fontStyleNames {
			if word == n.name {
				fs |= n.style
			}
		}
	}
	return fs
}

func (fs FontStyle) Has(o FontStyle) bool { return fs&o == o }

func (fs FontStyle) String() string {
	var parts []string
	for _, n := range fontStyleNames {
		if fs.Has(n.style) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}
