package image_writer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"mritopng/contracts"
	"mritopng/pdf_writer"
	"mritopng/utils"
)

// nativeEncoder writes every format except webp with pure Go encoders.
type nativeEncoder struct {
	bounds
	format  string
	quality int
}

func newNativeEncoder(opts Options) (Encoder, error) {
	if opts.Format == "webp" {
		return nil, fmt.Errorf("%w: webp needs the imagick or vips backend", ErrUnsupportedFormat)
	}
	return &nativeEncoder{
		bounds:  bounds{opts.MaxWidth, opts.MaxHeight},
		format:  opts.Format,
		quality: opts.Quality,
	}, nil
}

func (e *nativeEncoder) Extension() string {
	return extensions[e.format]
}

func (e *nativeEncoder) Encode(w io.Writer, img Image) error {
	m, err := e.prepare(img)
	if err != nil {
		return err
	}
	switch e.format {
	case "png":
		return png.Encode(w, m)
	case "jpeg":
		return jpeg.Encode(w, m, &jpeg.Options{Quality: e.quality})
	case "tiff":
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case "bmp":
		return bmp.Encode(w, m)
	case "pdf":
		return writePDF(w, m, img, e.quality)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, e.format)
}

// writePDF embeds m as a JPEG on a single page sized from the pixel spacing of img.
func writePDF(w io.Writer, m image.Image, img Image, quality int) error {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, m, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding page JPEG: %w", err)
	}
	size := m.Bounds().Size()
	pageWidth, pageHeight := utils.PageSizePoints(img.Width, img.Height, img.PixelSpacing)

	pw, err := pdf_writer.NewPDFWriter(w)
	if err != nil {
		return err
	}
	page := pdf_writer.PageImage{
		JPEG:       jpg.Bytes(),
		Width:      size.X,
		Height:     size.Y,
		Gray:       img.Mode == contracts.Greyscale,
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
	}
	if err := pw.WriteImage(page); err != nil {
		return err
	}
	return pw.Finish()
}
