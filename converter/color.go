package converter

import (
	"fmt"
	"math"

	"mritopng/dicom_reader"
	"mritopng/pixel_data"
)

// NormalizeColorSpace converts RGB and YBR_FULL arrays to RGB when the file carries a
// planar configuration element. Every other array is returned unchanged.
func NormalizeColorSpace(arr pixel_data.Array, meta dicom_reader.Metadata) (pixel_data.Array, error) {
	if !meta.Has(dicom_reader.FieldPlanarConfiguration) {
		return arr, nil
	}
	switch meta.PhotometricInterpretation {
	case dicom_reader.RGB:
		return arr, nil
	case dicom_reader.YBRFull:
		return ybrFullToRGB(arr, meta.BitsAllocated)
	}
	return arr, nil
}

// ybrFullToRGB applies the full range ITU-R BT.601 matrix to the interleaved last axis.
func ybrFullToRGB(arr pixel_data.Array, bitsAllocated int) (pixel_data.Array, error) {
	if arr.Dims() < 2 || arr.Shape[arr.Dims()-1] != 3 {
		return pixel_data.Array{}, fmt.Errorf("%w: YBR_FULL array of shape %v has no 3 sample axis",
			dicom_reader.ErrMalformedMetadata, arr.Shape)
	}
	if bitsAllocated <= 0 {
		bitsAllocated = 8
	}
	half := math.Exp2(float64(bitsAllocated - 1))
	top := math.Exp2(float64(bitsAllocated)) - 1

	out := pixel_data.Zeros[float64](arr.Shape...)
	for i := 0; i+2 < len(arr.Data); i += 3 {
		y, cb, cr := arr.Data[i], arr.Data[i+1]-half, arr.Data[i+2]-half
		out.Data[i] = clip(y+1.402*cr, top)
		out.Data[i+1] = clip(y-0.344136*cb-0.714136*cr, top)
		out.Data[i+2] = clip(y+1.772*cb, top)
	}
	return out, nil
}

func clip(v, top float64) float64 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > top {
		return top
	}
	return v
}
