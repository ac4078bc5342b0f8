package converter

import (
	"math"

	"mritopng/pixel_data"
)

// NormalizeIntensity stretches arr linearly so that its minimum maps to 0 and its
// maximum to 255. A constant array yields zeros of the same shape.
func NormalizeIntensity(arr pixel_data.Array) pixel_data.Raster {
	out := pixel_data.Zeros[uint8](arr.Shape...)
	lo, hi := arr.MinMax()
	if hi == lo {
		return out
	}
	span := hi - lo
	for i, v := range arr.Data {
		s := math.Round((v - lo) / span * 255)
		switch {
		case s < 0:
			s = 0
		case s > 255:
			s = 255
		}
		out.Data[i] = uint8(s)
	}
	return out
}
