// Package prompt implements the interactive question-and-answer session that
// collects a watermark job one value per line.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kiesman99/watermark/internal/watermark"
	"github.com/kiesman99/watermark/pkg/blend"
)

// Session asks the questions on out and reads answers from in.
type Session struct {
	in  *bufio.Reader
	out io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewReader(in), out: out}
}

func (s *Session) ask(question string) (string, error) {
	fmt.Fprintln(s.out, question)

	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("no answer to %q: %w", question, io.ErrUnexpectedEOF)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Run walks through every question and returns the resolved job. The first
// invalid answer ends the session with an error.
func (s *Session) Run() (*watermark.Job, error) {
	job := &watermark.Job{}

	name, err := s.ask("Input the image filename:")
	if err != nil {
		return nil, err
	}
	if job.Base, err = blend.Open(name); err != nil {
		return nil, err
	}
	if err := blend.ValidateBase(job.Base); err != nil {
		return nil, err
	}

	name, err = s.ask("Input the watermark image filename:")
	if err != nil {
		return nil, err
	}
	if job.Watermark, err = blend.Open(name); err != nil {
		return nil, err
	}
	if err := blend.ValidateWatermark(job.Watermark); err != nil {
		return nil, err
	}

	if err := blend.CheckFits(job.Base, job.Watermark); err != nil {
		return nil, err
	}

	if job.Transparency, err = s.transparency(job.Watermark); err != nil {
		return nil, err
	}

	answer, err := s.ask("Input the watermark transparency percentage (Integer 0-100):")
	if err != nil {
		return nil, err
	}
	if job.Weight, err = blend.ParseWeight(answer); err != nil {
		return nil, err
	}

	if job.Placement, err = s.placement(job.Base, job.Watermark); err != nil {
		return nil, err
	}

	if job.Output, err = s.ask("Input the output image filename (jpg or png extension):"); err != nil {
		return nil, err
	}

	return job, nil
}

func (s *Session) transparency(wm *blend.Grid) (blend.Transparency, error) {
	if wm.Translucent {
		answer, err := s.ask("Do you want to use the watermark's Alpha channel?")
		if err != nil {
			return blend.Transparency{}, err
		}
		if blend.ParseYes(answer) {
			return blend.AlphaTransparency(), nil
		}
		return blend.NoTransparency(), nil
	}

	answer, err := s.ask("Do you want to set a transparency color?")
	if err != nil {
		return blend.Transparency{}, err
	}
	if !blend.ParseYes(answer) {
		return blend.NoTransparency(), nil
	}

	answer, err = s.ask("Input a transparency color ([Red] [Green] [Blue]):")
	if err != nil {
		return blend.Transparency{}, err
	}
	key, err := blend.ParseRGB(answer)
	if err != nil {
		return blend.Transparency{}, err
	}
	return blend.KeyTransparency(key), nil
}

func (s *Session) placement(base, wm *blend.Grid) (blend.Placement, error) {
	answer, err := s.ask("Choose the position method (single, grid):")
	if err != nil {
		return blend.Placement{}, err
	}
	mode, err := blend.ParseMethod(answer)
	if err != nil {
		return blend.Placement{}, err
	}
	if mode == blend.PlacementTiled {
		return blend.Tiled(), nil
	}

	answer, err = s.ask(fmt.Sprintf("Input the watermark position (%s):", blend.PositionPrompt(base, wm)))
	if err != nil {
		return blend.Placement{}, err
	}
	return blend.ParsePosition(answer, base, wm)
}
