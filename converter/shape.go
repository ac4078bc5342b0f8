package converter

import (
	"errors"
	"fmt"

	"mritopng/contracts"
	"mritopng/pixel_data"
)

var ErrUnsupportedShape = errors.New("unsupported image dimensions")

// Layout is a normalized raster flattened into the rows an encoder consumes.
type Layout struct {
	Mode   contracts.OutputMode
	Width  int
	Height int
	Rows   [][]uint8
	// MultiFrame is set when only the first of Frames slices was kept.
	MultiFrame bool
	Frames     int
}

// Classify derives the output mode, geometry and pixel rows of r.
//
// A colour raster (rows, columns, 3) reports the column count as its height, so a
// non-square colour raster carries fewer or more rows than its declared height.
func Classify(r pixel_data.Raster) (Layout, error) {
	switch {
	case r.Dims() == 3 && r.Shape[2] == 3:
		return Layout{
			Mode:   contracts.Color,
			Width:  r.Shape[1],
			Height: r.Shape[1],
			Rows:   r.Rows(),
		}, nil
	case r.Dims() == 3:
		first, err := r.Frame(0)
		if err != nil {
			return Layout{}, fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
		}
		return Layout{
			Mode:       contracts.Greyscale,
			Width:      r.Shape[2],
			Height:     r.Shape[1],
			Rows:       first.Rows(),
			MultiFrame: true,
			Frames:     r.Shape[0],
		}, nil
	case r.Dims() == 2:
		return Layout{
			Mode:   contracts.Greyscale,
			Width:  r.Shape[1],
			Height: r.Shape[0],
			Rows:   r.Rows(),
		}, nil
	}
	return Layout{}, fmt.Errorf("%w: shape %v", ErrUnsupportedShape, r.Shape)
}
