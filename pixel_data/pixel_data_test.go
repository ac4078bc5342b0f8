package pixel_data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("matching shape", func(t *testing.T) {
		a, err := New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
		require.NoError(t, err)
		assert.Equal(t, 2, a.Dims())
		assert.Equal(t, 6, a.Size())
		assert.Equal(t, 6.0, a.At(1, 2))
		assert.Equal(t, 2.0, a.At(0, 1))
	})

	t.Run("mismatched shape", func(t *testing.T) {
		_, err := New([]int{2, 2}, []float64{1, 2, 3})
		assert.Error(t, err)
	})

	t.Run("zero axis is empty", func(t *testing.T) {
		a, err := New([]int{0, 4}, []float64{})
		require.NoError(t, err)
		assert.True(t, a.Empty())
	})
}

func TestMinMax(t *testing.T) {
	a, err := New([]int{4}, []float64{3, -7, 12, 0})
	require.NoError(t, err)
	lo, hi := a.MinMax()
	assert.Equal(t, -7.0, lo)
	assert.Equal(t, 12.0, hi)

	lo, hi = Zeros[float64](0).MinMax()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestFrame(t *testing.T) {
	a, err := New([]int{2, 2, 2}, []uint8{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	f, err := a.Frame(1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, f.Shape)
	assert.Equal(t, []uint8{5, 6, 7, 8}, f.Data)

	_, err = a.Frame(2)
	assert.Error(t, err)

	flat := Zeros[uint8](4)
	_, err = flat.Frame(0)
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	a, err := New([]int{2, 2, 3}, []uint8{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	})
	require.NoError(t, err)

	rows := a.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, rows[0])
	assert.Equal(t, []uint8{7, 8, 9, 10, 11, 12}, rows[1])

	assert.Nil(t, Zeros[uint8](0, 3).Rows())
}
