package blend

import "fmt"

func validDepth(bits int) bool {
	return bits == 24 || bits == 32
}

// ValidateBase accepts only 3-component images of 24 or 32 bits per pixel.
func ValidateBase(g *Grid) error {
	if g.Components != 3 {
		return newDiagnostic(ErrInvalidImageFormat, "The number of image color components isn't 3.")
	}
	if !validDepth(g.BitDepth) {
		return newDiagnostic(ErrInvalidImageFormat, "The image isn't 24 or 32-bit.")
	}
	return nil
}

// ValidateWatermark accepts 3-component images and translucent images, both
// limited to 24 or 32 bits per pixel.
func ValidateWatermark(g *Grid) error {
	if g.Components != 3 && !g.Translucent {
		return newDiagnostic(ErrInvalidImageFormat, "The number of watermark color components isn't 3.")
	}
	if !validDepth(g.BitDepth) {
		return newDiagnostic(ErrInvalidImageFormat, "The watermark isn't 24 or 32-bit.")
	}
	return nil
}

// CheckFits rejects a watermark larger than the base in either dimension.
func CheckFits(base, wm *Grid) error {
	if base.Width < wm.Width || base.Height < wm.Height {
		return newDiagnostic(ErrWatermarkTooLarge, "The watermark's dimensions are larger.")
	}
	return nil
}

// ValidateWeight checks the blend weight range.
func ValidateWeight(weight int) error {
	if weight < MinWeight || weight > MaxWeight {
		return newDiagnostic(ErrInvalidParameter, "The transparency percentage is out of range.")
	}
	return nil
}

// ValidatePlacement checks that a fixed placement keeps the watermark inside
// the base image.
func ValidatePlacement(p Placement, base, wm *Grid) error {
	if p.Mode != PlacementFixed {
		return nil
	}
	dx, dy := base.Width-wm.Width, base.Height-wm.Height
	if p.X < 0 || p.Y < 0 || p.X > dx || p.Y > dy {
		return newDiagnostic(ErrInvalidParameter, "The position input is out of range.")
	}
	return nil
}

// Validate runs every precondition of Composite.
func Validate(base, wm *Grid, weight int, p Placement) error {
	if err := CheckFits(base, wm); err != nil {
		return err
	}
	if err := ValidateWeight(weight); err != nil {
		return err
	}
	if err := ValidatePlacement(p, base, wm); err != nil {
		return err
	}
	return nil
}

// PositionRange returns the inclusive upper bounds for a fixed placement.
func PositionRange(base, wm *Grid) (dx, dy int) {
	return base.Width - wm.Width, base.Height - wm.Height
}

// PositionPrompt renders the position range hint shown to users.
func PositionPrompt(base, wm *Grid) string {
	dx, dy := PositionRange(base, wm)
	return fmt.Sprintf("[x 0-%d] [y 0-%d]", dx, dy)
}
