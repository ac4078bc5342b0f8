package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mritopng/dicom_reader"
	"mritopng/dicom_reader/dicomfixture"
)

func TestNormalizeColorSpace(t *testing.T) {
	t.Run("YBR_FULL to RGB", func(t *testing.T) {
		rec := parseFixture(t, ybr(1, 3,
			128, 128, 128,
			0, 128, 255,
			255, 0, 0,
		))

		out, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 3}, out.Shape)
		assert.Equal(t, []float64{
			128, 128, 128,
			178, 0, 0,
			76, 255, 28,
		}, out.Data)
	})

	t.Run("RGB is unchanged", func(t *testing.T) {
		opts := ybr(1, 1, 1, 2, 3)
		opts.Photometric = dicom_reader.RGB
		rec := parseFixture(t, opts)

		out, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, out.Data)
	})

	t.Run("no planar configuration", func(t *testing.T) {
		opts := ybr(1, 1, 0, 128, 255)
		opts.PlanarConfiguration = nil
		rec := parseFixture(t, opts)

		out, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 128, 255}, out.Data)
	})

	t.Run("other interpretations pass through", func(t *testing.T) {
		opts := dicomfixture.Greyscale(1, 2, 5, 6)
		opts.PlanarConfiguration = dicomfixture.Planar(0)
		rec := parseFixture(t, opts)

		out, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 6}, out.Data)
	})

	t.Run("YBR without three samples", func(t *testing.T) {
		opts := ybr(1, 2, 5, 6)
		opts.SamplesPerPixel = 1
		rec := parseFixture(t, opts)

		_, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
		assert.ErrorIs(t, err, dicom_reader.ErrMalformedMetadata)
	})

	t.Run("16 bit range", func(t *testing.T) {
		opts := ybr(1, 1, 1000, 32768, 32768)
		opts.BitsAllocated = 16
		rec := parseFixture(t, opts)

		out, err := NormalizeColorSpace(rec.Pixels, rec.Metadata)
		require.NoError(t, err)
		assert.Equal(t, []float64{1000, 1000, 1000}, out.Data)
	})
}
