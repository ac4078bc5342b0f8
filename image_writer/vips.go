//go:build vips

package image_writer

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var vipsOnce sync.Once

// vipsEncoder round-trips a PNG through libvips and re-exports it in the target format.
type vipsEncoder struct {
	bounds
	format  string
	quality int
}

func newVipsEncoder(opts Options) (Encoder, error) {
	if opts.Format == "pdf" || opts.Format == "bmp" {
		return nil, fmt.Errorf("%w: %s with the vips backend", ErrUnsupportedFormat, opts.Format)
	}
	vipsOnce.Do(func() { vips.Startup(nil) })
	return &vipsEncoder{
		bounds:  bounds{opts.MaxWidth, opts.MaxHeight},
		format:  opts.Format,
		quality: opts.Quality,
	}, nil
}

func (e *vipsEncoder) Extension() string {
	return extensions[e.format]
}

func (e *vipsEncoder) Encode(w io.Writer, img Image) error {
	m, err := e.prepare(img)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return err
	}
	ref, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	var out []byte
	switch e.format {
	case "webp":
		params := vips.NewWebpExportParams()
		params.Quality = e.quality
		out, _, err = ref.ExportWebp(params)
	case "jpeg":
		params := vips.NewJpegExportParams()
		params.Quality = e.quality
		out, _, err = ref.ExportJpeg(params)
	case "tiff":
		out, _, err = ref.ExportTiff(vips.NewTiffExportParams())
	default:
		out, _, err = ref.ExportPng(vips.NewPngExportParams())
	}
	if err != nil {
		return fmt.Errorf("vips export %s: %w", e.format, err)
	}
	_, err = w.Write(out)
	return err
}
