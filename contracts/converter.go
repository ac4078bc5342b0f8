package contracts

import (
	"fmt"
	"time"
)

type Converter interface {
	ConvertFile(inputPath, outputPath string) ConvertResult
}

type OutputMode int

const (
	Greyscale OutputMode = iota
	Color
)

func (m OutputMode) String() string {
	if m == Color {
		return "color"
	}
	return "greyscale"
}

func (m OutputMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *OutputMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "greyscale":
		*m = Greyscale
	case "color":
		*m = Color
	default:
		return fmt.Errorf("unknown output mode %q", text)
	}
	return nil
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindDecode           ErrorKind = "decode"
	KindMetadata         ErrorKind = "metadata"
	KindEmptyPixels      ErrorKind = "empty_pixels"
	KindUnsupportedShape ErrorKind = "unsupported_shape"
	KindEncode           ErrorKind = "encode"
	KindMissingRoot      ErrorKind = "missing_root"
	KindOutputRoot       ErrorKind = "output_root"
)

// ConvertResult is the outcome of one file. Err is set for skipped and failed files.
type ConvertResult struct {
	InputPath   string        `json:"input"`
	OutputPath  string        `json:"output,omitempty"`
	Status      Status        `json:"status"`
	Kind        ErrorKind     `json:"kind,omitempty"`
	Message     string        `json:"message,omitempty"`
	Err         error         `json:"-"`
	Mode        OutputMode    `json:"mode"`
	PixelWidth  int           `json:"width,omitempty"`
	PixelHeight int           `json:"height,omitempty"`
	MultiFrame  bool          `json:"multiFrame,omitempty"`
	Duration    time.Duration `json:"durationNs"`
}

func (r ConvertResult) OK() bool {
	return r.Status == StatusSuccess
}

func Succeeded(inputPath, outputPath string) ConvertResult {
	return ConvertResult{InputPath: inputPath, OutputPath: outputPath, Status: StatusSuccess}
}

func Skipped(inputPath string, kind ErrorKind, err error) ConvertResult {
	return ConvertResult{
		InputPath: inputPath,
		Status:    StatusSkipped,
		Kind:      kind,
		Err:       NewConvertError(kind, inputPath, err),
		Message:   err.Error(),
	}
}

func Failed(inputPath string, kind ErrorKind, err error) ConvertResult {
	return ConvertResult{
		InputPath: inputPath,
		Status:    StatusFailed,
		Kind:      kind,
		Err:       NewConvertError(kind, inputPath, err),
		Message:   err.Error(),
	}
}

// ConvertError carries the kind and file of a conversion problem. errors.Is matches
// another *ConvertError by kind, and by path when the target names one.
type ConvertError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func NewConvertError(kind ErrorKind, path string, err error) *ConvertError {
	return &ConvertError{Kind: kind, Path: path, Err: err}
}

func (e *ConvertError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

func (e *ConvertError) Is(target error) bool {
	t, ok := target.(*ConvertError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}
