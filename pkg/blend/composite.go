package blend

import "github.com/sourcegraph/conc"

// Composite blends wm onto base and returns a new opaque RGB grid with the
// dimensions of base. Callers must validate the inputs first (CheckFits,
// ValidateWeight, ValidatePlacement); Composite itself never fails.
func Composite(base, wm *Grid, weight int, t Transparency, p Placement) *Grid {
	return CompositeRows(base, wm, weight, t, p, 1)
}

// CompositeRows is Composite with the scanlines split across up to workers
// goroutines. The result is identical for any worker count.
func CompositeRows(base, wm *Grid, weight int, t Transparency, p Placement, workers int) *Grid {
	out := NewGrid(base.Width, base.Height)

	if workers <= 1 || base.Height < 2 {
		compositeRange(out, base, wm, weight, t, p, 0, base.Height)
		return out
	}
	if workers > base.Height {
		workers = base.Height
	}

	rows := (base.Height + workers - 1) / workers
	var wg conc.WaitGroup
	for y0 := 0; y0 < base.Height; y0 += rows {
		y0 := y0 // per-iteration copy (go1.22 loopvar semantics under go 1.21)
		y1 := min(y0+rows, base.Height)
		wg.Go(func() {
			compositeRange(out, base, wm, weight, t, p, y0, y1)
		})
	}
	wg.Wait()

	return out
}

func compositeRange(out, base, wm *Grid, weight int, t Transparency, p Placement, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < base.Width; x++ {
			dst := (y*base.Width + x) * 4
			src := dst

			wx, wy, ok := p.locate(x, y, wm.Width, wm.Height)
			if !ok {
				copy(out.Buf[dst:dst+3], base.Buf[src:src+3])
				continue
			}

			widx := (wy*wm.Width + wx) * 4
			if t.exempts(wm, widx) {
				copy(out.Buf[dst:dst+3], base.Buf[src:src+3])
				continue
			}

			for c := 0; c < 3; c++ {
				out.Buf[dst+c] = mix(base.Buf[src+c], wm.Buf[widx+c], weight)
			}
		}
	}
}

// locate maps base coordinates to watermark coordinates. ok is false when
// (x, y) lies outside the watermark footprint.
func (p Placement) locate(x, y, w, h int) (wx, wy int, ok bool) {
	if p.Mode == PlacementTiled {
		return x % w, y % h, true
	}
	wx, wy = x-p.X, y-p.Y
	if wx < 0 || wy < 0 || wx >= w || wy >= h {
		return 0, 0, false
	}
	return wx, wy, true
}

// exempts reports whether the watermark pixel at byte offset i passes the
// base pixel through unchanged.
func (t Transparency) exempts(wm *Grid, i int) bool {
	switch t.Mode {
	case TransparencyAlpha:
		return wm.HasAlpha() && wm.Buf[i+3] == 0
	case TransparencyKey:
		return wm.Buf[i] == t.Key.R && wm.Buf[i+1] == t.Key.G && wm.Buf[i+2] == t.Key.B
	}
	return false
}

// mix applies ((100-w)*b + w*m) / 100 with floor division.
func mix(b, m byte, weight int) byte {
	return byte(((MaxWeight-weight)*int(b) + weight*int(m)) / MaxWeight)
}
