package blend

import "image/color"

// Grid holds decoded pixel data.
// Buf always stores 4 bytes per pixel (R, G, B, A), non-premultiplied.
type Grid struct {
	Buf    []byte
	Width  int
	Height int
	Depth  int // channels: 3=RGB, 4=RGBA

	// Components and BitDepth describe the decoded source, not Buf.
	Components  int
	BitDepth    int
	Translucent bool
}

// NewGrid allocates an opaque black RGB grid.
func NewGrid(width, height int) *Grid {
	buf := make([]byte, width*height*4)
	for i := 3; i < len(buf); i += 4 {
		buf[i] = 255
	}
	return &Grid{
		Buf:        buf,
		Width:      width,
		Height:     height,
		Depth:      3,
		Components: 3,
		BitDepth:   24,
	}
}

// HasAlpha reports whether the grid carries a meaningful alpha channel.
func (g *Grid) HasAlpha() bool {
	return g.Depth == 4
}

// At returns the pixel at (x, y).
func (g *Grid) At(x, y int) color.RGBA {
	i := (y*g.Width + x) * 4
	return color.RGBA{R: g.Buf[i], G: g.Buf[i+1], B: g.Buf[i+2], A: g.Buf[i+3]}
}

// Set writes the pixel at (x, y).
func (g *Grid) Set(x, y int, c color.RGBA) {
	i := (y*g.Width + x) * 4
	g.Buf[i] = c.R
	g.Buf[i+1] = c.G
	g.Buf[i+2] = c.B
	g.Buf[i+3] = c.A
}

// TransparencyMode selects how a watermark pixel is exempted from blending.
type TransparencyMode int

const (
	TransparencyNone TransparencyMode = iota
	TransparencyAlpha
	TransparencyKey
)

// Transparency is either none, the watermark's alpha channel, or a color key.
type Transparency struct {
	Mode TransparencyMode
	Key  color.RGBA
}

func NoTransparency() Transparency {
	return Transparency{Mode: TransparencyNone}
}

func AlphaTransparency() Transparency {
	return Transparency{Mode: TransparencyAlpha}
}

// KeyTransparency treats watermark pixels whose RGB equals key as transparent.
// The alpha component of key is ignored.
func KeyTransparency(key color.RGBA) Transparency {
	return Transparency{Mode: TransparencyKey, Key: color.RGBA{R: key.R, G: key.G, B: key.B, A: 255}}
}

func (t Transparency) String() string {
	switch t.Mode {
	case TransparencyAlpha:
		return "alpha"
	case TransparencyKey:
		return "key"
	default:
		return "none"
	}
}

// PlacementMode selects how watermark coordinates are derived.
type PlacementMode int

const (
	PlacementTiled PlacementMode = iota
	PlacementFixed
)

// Placement is either a tiled grid or a single copy at (X, Y).
type Placement struct {
	Mode PlacementMode
	X, Y int
}

func Tiled() Placement {
	return Placement{Mode: PlacementTiled}
}

func Fixed(x, y int) Placement {
	return Placement{Mode: PlacementFixed, X: x, Y: y}
}

func (p Placement) String() string {
	if p.Mode == PlacementFixed {
		return "single"
	}
	return "grid"
}

// Weight bounds
const (
	MinWeight = 0
	MaxWeight = 100
)
