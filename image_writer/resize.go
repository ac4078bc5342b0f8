package image_writer

import (
	"image"

	"github.com/nfnt/resize"
)

type bounds struct {
	maxWidth  int
	maxHeight int
}

// fit downscales m to the configured bounds keeping its aspect ratio. Images already
// inside the bounds are returned as is.
func (b bounds) fit(m image.Image) image.Image {
	if b.maxWidth <= 0 && b.maxHeight <= 0 {
		return m
	}
	size := m.Bounds().Size()
	w, h := b.maxWidth, b.maxHeight
	if w <= 0 {
		w = size.X
	}
	if h <= 0 {
		h = size.Y
	}
	return resize.Thumbnail(uint(w), uint(h), m, resize.Lanczos3)
}

// prepare validates img and returns it as a Go image within the bounds.
func (b bounds) prepare(img Image) (image.Image, error) {
	m, err := img.ToImage()
	if err != nil {
		return nil, err
	}
	return b.fit(m), nil
}
