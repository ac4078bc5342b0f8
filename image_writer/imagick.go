//go:build imagick

package image_writer

import (
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"gopkg.in/gographics/imagick.v2/imagick"
)

var imagickOnce sync.Once

// imagickEncoder hands the pixels to ImageMagick, which writes any format it knows.
type imagickEncoder struct {
	bounds
	format  string
	quality uint
}

func newImagickEncoder(opts Options) (Encoder, error) {
	imagickOnce.Do(imagick.Initialize)
	return &imagickEncoder{
		bounds:  bounds{opts.MaxWidth, opts.MaxHeight},
		format:  opts.Format,
		quality: uint(opts.Quality),
	}, nil
}

func (e *imagickEncoder) Extension() string {
	return extensions[e.format]
}

func (e *imagickEncoder) Encode(w io.Writer, img Image) error {
	m, err := e.prepare(img)
	if err != nil {
		return err
	}
	pix, pmap := packPixels(m)

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	size := m.Bounds().Size()
	if err := mw.ConstituteImage(uint(size.X), uint(size.Y), pmap, imagick.PIXEL_CHAR, pix); err != nil {
		return fmt.Errorf("imagick constitute: %w", err)
	}
	if err := mw.SetImageFormat(strings.ToUpper(e.format)); err != nil {
		return fmt.Errorf("imagick format %s: %w", e.format, err)
	}
	if err := mw.SetImageCompressionQuality(e.quality); err != nil {
		return fmt.Errorf("imagick quality: %w", err)
	}
	_, err = w.Write(mw.GetImageBlob())
	return err
}

// packPixels returns tightly packed samples and their ImageMagick channel map.
func packPixels(m image.Image) ([]byte, string) {
	size := m.Bounds().Size()
	switch p := m.(type) {
	case *image.Gray:
		out := make([]byte, 0, size.X*size.Y)
		for y := 0; y < size.Y; y++ {
			out = append(out, p.Pix[y*p.Stride:y*p.Stride+size.X]...)
		}
		return out, "I"
	case *image.RGBA:
		out := make([]byte, 0, size.X*size.Y*4)
		for y := 0; y < size.Y; y++ {
			out = append(out, p.Pix[y*p.Stride:y*p.Stride+size.X*4]...)
		}
		return out, "RGBA"
	}
	rgba := image.NewRGBA(m.Bounds())
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			rgba.Set(x, y, m.At(m.Bounds().Min.X+x, m.Bounds().Min.Y+y))
		}
	}
	return packPixels(rgba)
}
