// Package watermark runs watermark jobs: it validates a base/watermark pair,
// composites them and writes or renders the result.
package watermark

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/kiesman99/watermark/pkg/blend"
)

// Options configures a Watermarker.
type Options struct {
	JPEGQuality int
	Workers     int
	Logger      *zerolog.Logger
}

// Job is a fully resolved watermark request.
type Job struct {
	Base         *blend.Grid
	Watermark    *blend.Grid
	Weight       int
	Transparency blend.Transparency
	Placement    blend.Placement
	Output       string
}

// Result is an encoded watermarked image.
type Result struct {
	ImageData   []byte
	ContentType string
	Width       int
	Height      int
}

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// Watermarker applies jobs.
type Watermarker struct {
	options Options
	logger  zerolog.Logger
}

// NewWatermarker creates a new watermarker instance
func NewWatermarker(opts Options) *Watermarker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = blend.DefaultJPEGQuality
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Watermarker{options: opts, logger: logger}
}

func (w *Watermarker) composite(job *Job) (*blend.Grid, error) {
	if job.Base == nil || job.Watermark == nil {
		return nil, errors.New("job is missing an image")
	}
	if err := blend.Validate(job.Base, job.Watermark, job.Weight, job.Placement); err != nil {
		return nil, err
	}

	w.logger.Debug().
		Int("width", job.Base.Width).
		Int("height", job.Base.Height).
		Int("weight", job.Weight).
		Stringer("transparency", job.Transparency).
		Stringer("placement", job.Placement).
		Msg("compositing")

	return blend.CompositeRows(job.Base, job.Watermark, job.Weight, job.Transparency, job.Placement, w.options.Workers), nil
}

// Apply composites the job and writes it to job.Output. Nothing is written
// when validation or format resolution fails.
func (w *Watermarker) Apply(job *Job) error {
	format, warning, err := blend.Format(job.Output)
	if warning != nil {
		w.logger.Warn().Str("output", job.Output).Msg(warning.Error())
	}

	out, cerr := w.composite(job)
	if cerr != nil {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", job.Output, err)
	}

	if err := blend.Save(job.Output, out, format, blend.EncodeOptions{JPEGQuality: w.options.JPEGQuality}); err != nil {
		return fmt.Errorf("failed to write %s: %w", job.Output, err)
	}
	return nil
}

// Render composites the job in memory and encodes it as format.
func (w *Watermarker) Render(ctx context.Context, job *Job, format imaging.Format) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := w.composite(job)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := blend.Encode(&buf, out, format, blend.EncodeOptions{JPEGQuality: w.options.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode result image: %w", err)
	}

	return &Result{
		ImageData:   buf.Bytes(),
		ContentType: contentTypes[format],
		Width:       out.Width,
		Height:      out.Height,
	}, nil
}
