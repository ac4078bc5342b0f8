// Package pixel_data holds the row-major sample buffers passed between the DICOM reader
// and the converter.
package pixel_data

import (
	"fmt"
	"strings"
)

type Sample interface {
	~uint8 | ~float64
}

// NDArray is a row-major N-dimensional buffer. Shape[0] is the slowest axis.
type NDArray[T Sample] struct {
	Shape []int
	Data  []T
}

// Array is a decoded sample buffer of arbitrary numeric range.
type Array = NDArray[float64]

// Raster is a normalized 8-bit buffer.
type Raster = NDArray[uint8]

func New[T Sample](shape []int, data []T) (NDArray[T], error) {
	if want := product(shape); want != len(data) {
		return NDArray[T]{}, fmt.Errorf("shape %s needs %d samples, got %d", formatShape(shape), want, len(data))
	}
	return NDArray[T]{Shape: append([]int(nil), shape...), Data: data}, nil
}

func Zeros[T Sample](shape ...int) NDArray[T] {
	return NDArray[T]{Shape: append([]int(nil), shape...), Data: make([]T, product(shape))}
}

func (a NDArray[T]) Dims() int {
	return len(a.Shape)
}

func (a NDArray[T]) Size() int {
	return len(a.Data)
}

func (a NDArray[T]) Empty() bool {
	return len(a.Data) == 0
}

// MinMax returns the smallest and largest sample. An empty array yields zeros.
func (a NDArray[T]) MinMax() (T, T) {
	var lo, hi T
	if len(a.Data) == 0 {
		return lo, hi
	}
	lo, hi = a.Data[0], a.Data[0]
	for _, v := range a.Data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// At returns the sample at the given index, one coordinate per axis.
func (a NDArray[T]) At(idx ...int) T {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("pixel_data: %d indices for %d-d array", len(idx), len(a.Shape)))
	}
	off := 0
	for i, n := range a.Shape {
		if idx[i] < 0 || idx[i] >= n {
			panic(fmt.Sprintf("pixel_data: index %d out of range [0,%d) on axis %d", idx[i], n, i))
		}
		off = off*n + idx[i]
	}
	return a.Data[off]
}

// Frame returns the i-th sub-array along axis 0. The data is shared, not copied.
func (a NDArray[T]) Frame(i int) (NDArray[T], error) {
	if len(a.Shape) < 2 {
		return NDArray[T]{}, fmt.Errorf("frame of %d-d array", len(a.Shape))
	}
	if i < 0 || i >= a.Shape[0] {
		return NDArray[T]{}, fmt.Errorf("frame %d out of range [0,%d)", i, a.Shape[0])
	}
	step := product(a.Shape[1:])
	return NDArray[T]{
		Shape: append([]int(nil), a.Shape[1:]...),
		Data:  a.Data[i*step : (i+1)*step],
	}, nil
}

// Rows splits the buffer along axis 0; each row holds every remaining axis flattened.
func (a NDArray[T]) Rows() [][]T {
	if len(a.Shape) == 0 || a.Shape[0] == 0 {
		return nil
	}
	n := a.Shape[0]
	step := len(a.Data) / n
	rows := make([][]T, n)
	for i := range rows {
		rows[i] = a.Data[i*step : (i+1)*step]
	}
	return rows
}

func (a NDArray[T]) String() string {
	return fmt.Sprintf("%T%s", a.Data, formatShape(a.Shape))
}

func product(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
