package dicom_reader

import (
	"fmt"

	"github.com/suyashkumar/dicom"

	"mritopng/pixel_data"
)

// pixelArray flattens the native frames of info into a sample array shaped like
// (rows, cols), (rows, cols, samples), (frames, rows, cols) or (frames, rows, cols, samples).
// Colour-by-plane data is reordered to interleaved samples. Sizes come from the frames
// the parser actually read; a declared frame count is only compared against them.
func pixelArray(m Metadata, info dicom.PixelDataInfo) (pixel_data.Array, error) {
	if info.IsEncapsulated {
		return pixel_data.Array{}, ErrCompressedPixelData
	}
	if len(info.Frames) == 0 {
		return pixel_data.Zeros[float64](0), nil
	}
	if err := checkImage(m); err != nil {
		return pixel_data.Array{}, err
	}

	rows, cols, spp := m.Rows, m.Columns, m.samplesPerPixel()
	pixels := rows * cols
	if pixels == 0 {
		return pixel_data.Zeros[float64](0), nil
	}
	frames := len(info.Frames)
	if frames != m.frames() {
		return pixel_data.Array{}, fmt.Errorf("pixel data holds %d frames, %d declared", frames, m.frames())
	}

	signed := m.PixelRepresentation == 1
	shift := uint(64 - m.bitsStored())
	samples := make([]float64, 0, frames*pixels*spp)
	for i, fr := range info.Frames {
		if fr.IsEncapsulated() {
			return pixel_data.Array{}, ErrCompressedPixelData
		}
		native, err := fr.GetNativeFrame()
		if err != nil {
			return pixel_data.Array{}, fmt.Errorf("frame %d: %w", i, err)
		}
		if len(native.Data) != pixels {
			return pixel_data.Array{}, fmt.Errorf("frame %d holds %d pixels, %d expected for %dx%d",
				i, len(native.Data), pixels, rows, cols)
		}
		for _, px := range native.Data {
			if len(px) != spp {
				return pixel_data.Array{}, fmt.Errorf("frame %d has %d samples per pixel, %d expected", i, len(px), spp)
			}
			for _, v := range px {
				if signed {
					samples = append(samples, float64(int64(uint64(v)<<shift)>>shift))
				} else {
					samples = append(samples, float64(v))
				}
			}
		}
	}

	if spp > 1 && m.Has(FieldPlanarConfiguration) && m.PlanarConfiguration == 1 {
		samples = interleavePlanes(samples, frames, pixels, spp)
	}

	var shape []int
	if frames > 1 {
		shape = append(shape, frames)
	}
	shape = append(shape, rows, cols)
	if spp > 1 {
		shape = append(shape, spp)
	}
	return pixel_data.New(shape, samples)
}

// interleavePlanes reorders each frame from (samples, pixels) to (pixels, samples).
func interleavePlanes(src []float64, frames, pixels, spp int) []float64 {
	dst := make([]float64, len(src))
	frameLen := pixels * spp
	for f := 0; f < frames; f++ {
		base := f * frameLen
		for s := 0; s < spp; s++ {
			for p := 0; p < pixels; p++ {
				dst[base+p*spp+s] = src[base+s*pixels+p]
			}
		}
	}
	return dst
}
