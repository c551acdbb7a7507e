// Package model contains the motion-sequence types passed between pipeline stages.
package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Array is a dense, row-major numeric array with an explicit shape.
// Rank 0 (scalar), 1, 2 and 3 are the ranks produced by upstream motion
// bundles; everything past the shape normalizer is rank 1 or 2.
type Array struct {
	shape []int
	data  []float64
}

// NewArray builds an array from a shape and row-major data. The product of
// the shape dimensions must equal len(data).
func NewArray(shape []int, data []float64) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrBadShape, d)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v wants %d elements, have %d", ErrBadShape, shape, n, len(data))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Array{shape: s, data: data}, nil
}

// MustArray is NewArray that panics on a malformed shape. Intended for
// fixtures and tables with hand-written shapes.
func MustArray(shape []int, data []float64) *Array {
	a, err := NewArray(shape, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Scalar wraps a single value as a rank-0 array.
func Scalar(v float64) *Array {
	return &Array{shape: []int{}, data: []float64{v}}
}

// Vector wraps a slice as a rank-1 array without copying the data.
func Vector(v []float64) *Array {
	return &Array{shape: []int{len(v)}, data: v}
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int {
	s := make([]int, len(a.shape))
	copy(s, a.shape)
	return s
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.data) }

// Data returns the underlying row-major storage. Callers treat it as
// read-only; stages that modify values work on a Clone.
func (a *Array) Data() []float64 { return a.data }

// Rows returns the frame count: the leading dimension for rank >= 2, and 1
// for a single rank-0/1 frame.
func (a *Array) Rows() int {
	if len(a.shape) < 2 {
		return 1
	}
	return a.shape[0]
}

// Cols returns the per-frame parameter count. For rank 1 this is the vector
// length, for rank 2 the trailing dimension.
func (a *Array) Cols() int {
	switch len(a.shape) {
	case 0:
		return 1
	case 1:
		return a.shape[0]
	default:
		return a.shape[len(a.shape)-1]
	}
}

// Scalar returns the single value of a rank-0 or one-element array.
func (a *Array) Scalar() (float64, error) {
	if len(a.data) != 1 {
		return 0, fmt.Errorf("%w: shape %v is not scalar", ErrBadShape, a.shape)
	}
	return a.data[0], nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	d := make([]float64, len(a.data))
	copy(d, a.data)
	s := make([]int, len(a.shape))
	copy(s, a.shape)
	return &Array{shape: s, data: d}
}

// FlattenTrailing merges the last two dimensions of a rank-3 array into one,
// row-major, preserving frame and joint order. (F, J, 3) becomes (F, J*3).
func (a *Array) FlattenTrailing() (*Array, error) {
	if len(a.shape) != 3 {
		return nil, fmt.Errorf("%w: rank %d, want 3", ErrBadShape, len(a.shape))
	}
	out := a.Clone()
	out.shape = []int{a.shape[0], a.shape[1] * a.shape[2]}
	return out, nil
}

// AsMatrix exposes a rank-1 or rank-2 array as a gonum dense matrix. A rank-1
// array is viewed as a single row. The matrix shares the array's storage.
func (a *Array) AsMatrix() (*mat.Dense, error) {
	switch len(a.shape) {
	case 1:
		if a.shape[0] == 0 {
			return nil, fmt.Errorf("%w: empty vector", ErrBadShape)
		}
		return mat.NewDense(1, a.shape[0], a.data), nil
	case 2:
		if a.shape[0] == 0 || a.shape[1] == 0 {
			return nil, fmt.Errorf("%w: empty matrix shape %v", ErrBadShape, a.shape)
		}
		return mat.NewDense(a.shape[0], a.shape[1], a.data), nil
	default:
		return nil, fmt.Errorf("%w: rank %d is not a matrix", ErrBadShape, len(a.shape))
	}
}

// FromMatrix wraps a gonum dense matrix as a rank-2 array.
func FromMatrix(m *mat.Dense) *Array {
	r, c := m.Dims()
	return &Array{shape: []int{r, c}, data: m.RawMatrix().Data}
}

// CountNonFinite reports how many entries are NaN and how many are +/-Inf.
func (a *Array) CountNonFinite() (nan, inf int) {
	for _, v := range a.data {
		switch {
		case math.IsNaN(v):
			nan++
		case math.IsInf(v, 0):
			inf++
		}
	}
	return nan, inf
}

// Equal reports whether two arrays have the same shape and values. NaNs are
// not equal to anything, matching float semantics.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}
