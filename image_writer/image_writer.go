// Package image_writer serializes normalized pixel rows to raster files.
package image_writer

import (
	"errors"
	"fmt"
	"image"
	"io"

	"mritopng/contracts"
)

var (
	ErrRowCount          = errors.New("row count does not match image height")
	ErrRowWidth          = errors.New("row length does not match image width")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Image is what the converter hands to an encoder: a width, a height, a channel mode and
// row-major rows of 8 bit samples.
type Image struct {
	Mode   contracts.OutputMode
	Width  int
	Height int
	Rows   [][]uint8
	// PixelSpacing is row then column spacing in millimetres; zero when unknown.
	PixelSpacing [2]float64
}

func (img Image) Channels() int {
	if img.Mode == contracts.Color {
		return 3
	}
	return 1
}

// Validate checks the rows against the declared geometry.
func (img Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", img.Width, img.Height)
	}
	if len(img.Rows) != img.Height {
		return fmt.Errorf("%w: %d rows, height %d", ErrRowCount, len(img.Rows), img.Height)
	}
	want := img.Width * img.Channels()
	for i, row := range img.Rows {
		if len(row) != want {
			return fmt.Errorf("%w: row %d holds %d values, want %d", ErrRowWidth, i, len(row), want)
		}
	}
	return nil
}

// ToImage copies the rows into an *image.Gray or an opaque *image.RGBA.
func (img Image) ToImage() (image.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Mode == contracts.Greyscale {
		g := image.NewGray(rect)
		for y, row := range img.Rows {
			copy(g.Pix[y*g.Stride:], row)
		}
		return g, nil
	}
	m := image.NewRGBA(rect)
	for y, row := range img.Rows {
		dst := m.Pix[y*m.Stride:]
		for x := 0; x < img.Width; x++ {
			dst[x*4+0] = row[x*3+0]
			dst[x*4+1] = row[x*3+1]
			dst[x*4+2] = row[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return m, nil
}

type Encoder interface {
	Encode(w io.Writer, img Image) error
	// Extension is the file name suffix of the output, dot included.
	Extension() string
}

type Options struct {
	Format    string
	Quality   int
	Backend   string
	MaxWidth  int
	MaxHeight int
}

var extensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"tiff": ".tiff",
	"bmp":  ".bmp",
	"pdf":  ".pdf",
	"webp": ".webp",
}

func Extension(format string) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return ext, nil
}

// NewEncoder returns the encoder for opts.Format on opts.Backend ("native" when empty).
func NewEncoder(opts Options) (Encoder, error) {
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.Quality == 0 {
		opts.Quality = 90
	}
	if _, err := Extension(opts.Format); err != nil {
		return nil, err
	}
	switch opts.Backend {
	case "", "native":
		return newNativeEncoder(opts)
	case "imagick":
		return newImagickEncoder(opts)
	case "vips":
		return newVipsEncoder(opts)
	}
	return nil, fmt.Errorf("unknown encoder backend %q", opts.Backend)
}
