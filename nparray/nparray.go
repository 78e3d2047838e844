// Package nparray implements a dense, row-major, strictly-typed 2-D numeric
// matrix ("NPArray") with broadcasting arithmetic, axis-wise reductions,
// predicate queries, in-place transforms, and a bit-exact reader/writer for
// the NumPy .npy v1 binary format.
//
// An NPArray is a value type: it owns its backing storage and carries no
// shared mutable state with any other NPArray. Operations that cannot
// succeed (bad shape, out-of-range index) either return an error (for
// recoverable, caller-facing conditions such as a corrupt .npy file) or are
// documented as programmer errors, matching the "do not do this" contract
// described by the framework this package implements.
package nparray

import "fmt"

// Numeric enumerates the ten element types NPArray supports. This mirrors
// the sealed element-type discipline of the source framework without
// requiring runtime reflection for the common case.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Axis selects rows or columns for range-scoped and axis-wise operations.
type Axis int

const (
	Row Axis = iota
	Column
)

// NPArray is a dense rows x cols matrix of element type T, stored row-major.
// The zero value is not usable; construct with New, Zeros, Ones, Identity,
// FromSlice, or one of the .npy readers.
type NPArray[T Numeric] struct {
	rows, cols int
	data       []T
	err        error
}

// Good reports whether a is operable. An NPArray that failed to load from
// disk carries a diagnostic in Error() and is read-only: callers must check
// Good() before using it for anything but inspecting the error.
func (a *NPArray[T]) Good() bool { return a.err == nil }

// Error returns the diagnostic string for a failed NPArray, or "" if a is
// Good.
func (a *NPArray[T]) Error() string {
	if a.err == nil {
		return ""
	}
	return a.err.Error()
}

// Rows returns the number of rows.
func (a *NPArray[T]) Rows() int { return a.rows }

// Cols returns the number of columns.
func (a *NPArray[T]) Cols() int { return a.cols }

// ElemSize returns sizeof(T) in bytes.
func (a *NPArray[T]) ElemSize() int {
	var z T
	return elemSize(z)
}

func elemSize[T Numeric](T) int {
	var v T
	switch any(v).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	case uint64, int64, float64:
		return 8
	default:
		return 0
	}
}

// setErr marks a in the error state with a diagnostic string. The storage
// is left untouched; callers must not rely on its contents.
func (a *NPArray[T]) setErr(format string, args ...interface{}) {
	a.err = fmt.Errorf(format, args...)
}

// New returns an uninitialised r x c array. Contents are the zero value of
// T, matching Go's native zeroing of freshly allocated slices (the source
// framework leaves this memory undefined; zeroing is simply what Go gives
// us for free and is a stricter guarantee, never a weaker one).
func New[T Numeric](rows, cols int) (*NPArray[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("nparray: negative shape (%d, %d)", rows, cols)
	}
	return &NPArray[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}, nil
}

// Empty returns a valid 0x0 array.
func Empty[T Numeric]() *NPArray[T] {
	return &NPArray[T]{}
}

// Zeros returns an r x c array filled with zero.
func Zeros[T Numeric](rows, cols int) (*NPArray[T], error) {
	return New[T](rows, cols)
}

// Ones returns an r x c array filled with one.
func Ones[T Numeric](rows, cols int) (*NPArray[T], error) {
	a, err := New[T](rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range a.data {
		a.data[i] = T(1)
	}
	return a, nil
}

// Identity returns the n x n identity matrix.
func Identity[T Numeric](n int) (*NPArray[T], error) {
	a, err := New[T](n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		a.data[i*n+i] = T(1)
	}
	return a, nil
}

// FromSlice wraps a flat, row-major buffer of exactly rows*cols elements.
// The returned NPArray takes ownership of buf; callers must not mutate buf
// afterwards through any other reference.
func FromSlice[T Numeric](rows, cols int, buf []T) (*NPArray[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("nparray: negative shape (%d, %d)", rows, cols)
	}
	if len(buf) != rows*cols {
		return nil, fmt.Errorf("nparray: buffer length %d does not match shape (%d, %d)", len(buf), rows, cols)
	}
	return &NPArray[T]{rows: rows, cols: cols, data: buf}, nil
}

// String implements fmt.Stringer with a compact shape + status summary,
// useful in test failure output alongside go-spew/deep diffs.
func (a *NPArray[T]) String() string {
	if !a.Good() {
		return fmt.Sprintf("NPArray[error: %s]", a.err)
	}
	return fmt.Sprintf("NPArray[%dx%d]", a.rows, a.cols)
}
