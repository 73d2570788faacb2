package blend

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// Extra decoders beyond the ones imaging registers.
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when EncodeOptions.JPEGQuality is zero.
const DefaultJPEGQuality = 95

// EncodeOptions controls output encoding.
type EncodeOptions struct {
	JPEGQuality int
}

// Open decodes the image file at path.
func Open(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newDiagnostic(ErrMissingFile, fmt.Sprintf("The file %s doesn't exist.", path))
		}
		return nil, err
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return g, nil
}

// Decode reads an image and converts it to a Grid, recording the source's
// component count and bit depth for validation.
func Decode(r io.Reader) (*Grid, error) {
	if r == nil {
		return nil, errors.New("nil reader provided to Decode")
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image to a Grid.
func FromImage(img image.Image) *Grid {
	components, bits, translucent := describe(img)

	nrgba := imaging.Clone(img)
	depth := 3
	if translucent {
		depth = 4
	} else {
		for i := 3; i < len(nrgba.Pix); i += 4 {
			nrgba.Pix[i] = 255
		}
	}

	return &Grid{
		Buf:         nrgba.Pix,
		Width:       nrgba.Rect.Dx(),
		Height:      nrgba.Rect.Dy(),
		Depth:       depth,
		Components:  components,
		BitDepth:    bits,
		Translucent: translucent,
	}
}

// Image exposes the grid as an image.NRGBA sharing its buffer.
func (g *Grid) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    g.Buf,
		Stride: g.Width * 4,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// describe reports the number of color components, bits per pixel and
// whether the image carries an alpha channel. The decoders pick the color
// model from the file header (PNG truecolor decodes to RGBA, truecolor with
// alpha to NRGBA), so the answer follows the file and not its pixel data.
func describe(img image.Image) (components, bits int, translucent bool) {
	switch m := img.ColorModel().(type) {
	case color.Palette:
		for _, c := range m {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4, 8, true
			}
		}
		return 3, 8, false
	}

	switch img.ColorModel() {
	case color.YCbCrModel, color.RGBAModel:
		return 3, 24, false
	case color.NYCbCrAModel, color.NRGBAModel:
		return 4, 32, true
	case color.RGBA64Model:
		return 3, 48, false
	case color.NRGBA64Model:
		return 4, 64, true
	case color.GrayModel:
		return 1, 8, false
	case color.Gray16Model:
		return 1, 16, false
	case color.AlphaModel:
		return 1, 8, true
	case color.Alpha16Model:
		return 1, 16, true
	case color.CMYKModel:
		return 4, 32, false
	}
	return 0, 0, false
}

// Format resolves the output format from a file name. A non-nil warning
// wrapping ErrUnsupportedOutputExtension is returned for extensions other
// than png and jpg; err is set only when no encoder exists at all.
func Format(path string) (f imaging.Format, warning, err error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext != "png" && ext != "jpg" {
		warning = newDiagnostic(ErrUnsupportedOutputExtension, `The output file extension isn't "jpg" or "png".`)
	}

	f, err = imaging.FormatFromExtension(ext)
	if err != nil {
		return f, warning, fmt.Errorf("%w: %q", err, ext)
	}
	return f, warning, nil
}

// Encode writes the grid to w in the given format.
func Encode(w io.Writer, g *Grid, f imaging.Format, opts EncodeOptions) error {
	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	return imaging.Encode(w, g.Image(), f, imaging.JPEGQuality(quality))
}

// Save encodes the grid into the file at path. The image is encoded into a
// temporary file next to path and renamed over it, so an existing file is
// only replaced by a complete image.
func Save(path string, g *Grid, f imaging.Format, opts EncodeOptions) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, g, f, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
