package blend

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// KeyAuto selects the watermark's dominant color as the transparency key.
const KeyAuto = "auto"

// ParseYes reports whether an answer opts in.
func ParseYes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

func fields(s string) []string {
	return strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}

// ParseRGB parses a transparency color typed as exactly three integers in
// [0,255] separated by single spaces.
func ParseRGB(input string) (color.RGBA, error) {
	return rgbTokens(strings.Split(input, " "))
}

// ParseKeyColor parses a transparency color given as "R G B", "R,G,B",
// "#rrggbb" or "auto". wm is only consulted for "auto".
func ParseKeyColor(input string, wm *Grid) (color.RGBA, error) {
	s := strings.TrimSpace(input)

	if strings.EqualFold(s, KeyAuto) {
		if wm == nil {
			return color.RGBA{}, newDiagnostic(ErrInvalidParameter, "The transparency color input is invalid.")
		}
		c := dominantcolor.Find(wm.Image())
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, nil
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, newDiagnostic(ErrInvalidParameter, "The transparency color input is invalid.")
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	}

	return rgbTokens(fields(s))
}

func rgbTokens(parts []string) (color.RGBA, error) {
	if len(parts) != 3 {
		return color.RGBA{}, newDiagnostic(ErrInvalidParameter, "The transparency color input is invalid.")
	}

	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, newDiagnostic(ErrInvalidParameter, "The transparency color input is invalid.")
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}

// ParseWeight parses the transparency percentage.
func ParseWeight(input string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, newDiagnostic(ErrInvalidParameter, "The transparency percentage isn't an integer number.")
	}
	if err := ValidateWeight(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseMethod parses the placement method name. single placements still
// need a position from ParsePosition.
func ParseMethod(input string) (PlacementMode, error) {
	switch strings.TrimSpace(input) {
	case "single":
		return PlacementFixed, nil
	case "grid":
		return PlacementTiled, nil
	}
	return 0, newDiagnostic(ErrInvalidParameter, "The position method input is invalid.")
}

// ParsePosition parses "X Y" and checks it against the base and watermark
// dimensions.
func ParsePosition(input string, base, wm *Grid) (Placement, error) {
	parts := fields(input)
	if len(parts) != 2 {
		return Placement{}, newDiagnostic(ErrInvalidParameter, "The position input is invalid.")
	}

	var xy [2]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Placement{}, newDiagnostic(ErrInvalidParameter, "The position input is invalid.")
		}
		xy[i] = v
	}

	p := Fixed(xy[0], xy[1])
	if err := ValidatePlacement(p, base, wm); err != nil {
		return Placement{}, err
	}
	return p, nil
}
