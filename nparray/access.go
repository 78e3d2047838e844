package nparray

import "fmt"

// Get returns the element at (r, c).
func (a *NPArray[T]) Get(r, c int) (T, error) {
	var zero T
	if r < 0 || r >= a.rows || c < 0 || c >= a.cols {
		return zero, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfRange, r, c, a.rows, a.cols)
	}
	return a.data[r*a.cols+c], nil
}

// MustGet is Get without the error return, for call sites that have already
// validated the index (e.g. inside a bounded loop). It panics on an invalid
// index: this is the "programmer bug" half of the §7 taxonomy.
func (a *NPArray[T]) MustGet(r, c int) T {
	v, err := a.Get(r, c)
	if err != nil {
		panic(err)
	}
	return v
}

// Set stores v at (r, c).
func (a *NPArray[T]) Set(r, c int, v T) error {
	if r < 0 || r >= a.rows || c < 0 || c >= a.cols {
		return fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfRange, r, c, a.rows, a.cols)
	}
	a.data[r*a.cols+c] = v
	return nil
}

// MustSet is Set without the error return.
func (a *NPArray[T]) MustSet(r, c int, v T) {
	if err := a.Set(r, c, v); err != nil {
		panic(err)
	}
}

// Raw returns the flat row-major backing slice. Mutating it mutates a.
func (a *NPArray[T]) Raw() []T { return a.data }

// RowView is a non-owning view over one row, exposing index access without
// copying storage.
type RowView[T Numeric] struct {
	arr *NPArray[T]
	row int
}

// Row returns a view over row r.
func (a *NPArray[T]) Row(r int) (RowView[T], error) {
	if r < 0 || r >= a.rows {
		return RowView[T]{}, fmt.Errorf("%w: row %d not in [0,%d)", ErrOutOfRange, r, a.rows)
	}
	return RowView[T]{arr: a, row: r}, nil
}

// Len returns the number of columns (the length of the row).
func (v RowView[T]) Len() int { return v.arr.cols }

// At returns column i of the viewed row.
func (v RowView[T]) At(i int) T {
	return v.arr.data[v.row*v.arr.cols+i]
}

// SetAt stores val at column i of the viewed row.
func (v RowView[T]) SetAt(i int, val T) {
	v.arr.data[v.row*v.arr.cols+i] = val
}

// Slice returns the backing slice for the viewed row, still owned by the
// parent NPArray.
func (v RowView[T]) Slice() []T {
	start := v.row * v.arr.cols
	return v.arr.data[start : start+v.arr.cols]
}
