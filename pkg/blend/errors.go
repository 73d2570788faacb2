package blend

import "errors"

var (
	ErrMissingFile                = errors.New("missing file")
	ErrInvalidImageFormat         = errors.New("invalid image format")
	ErrWatermarkTooLarge          = errors.New("watermark too large")
	ErrInvalidParameter           = errors.New("invalid parameter")
	ErrUnsupportedOutputExtension = errors.New("unsupported output extension")
)

// diagnostic pairs a sentinel with the human-readable line shown to the user.
type diagnostic struct {
	kind error
	msg  string
}

func (d *diagnostic) Error() string { return d.msg }

func (d *diagnostic) Unwrap() error { return d.kind }

func newDiagnostic(kind error, msg string) error {
	return &diagnostic{kind: kind, msg: msg}
}
