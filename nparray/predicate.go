package nparray

import "fmt"

// scan invokes f(value) for every cell selected by (axis, lo, hi):
//   - axis == Row, lo==0 && hi==rows: whole-matrix in row-major order.
//   - axis == Row: half-open range of rows [lo,hi).
//   - axis == Column: half-open range of columns [lo,hi).
// It stops early the first time f returns false, returning whether it ran
// to completion.
func (a *NPArray[T]) scan(axis Axis, lo, hi int, f func(T) bool) bool {
	switch axis {
	case Row:
		for r := lo; r < hi; r++ {
			base := r * a.cols
			for c := 0; c < a.cols; c++ {
				if !f(a.data[base+c]) {
					return false
				}
			}
		}
	case Column:
		for c := lo; c < hi; c++ {
			for r := 0; r < a.rows; r++ {
				if !f(a.data[r*a.cols+c]) {
					return false
				}
			}
		}
	}
	return true
}

func (a *NPArray[T]) checkRange(axis Axis, lo, hi int) error {
	var limit int
	switch axis {
	case Row:
		limit = a.rows
	case Column:
		limit = a.cols
	default:
		return fmt.Errorf("nparray: invalid axis %d", axis)
	}
	if lo < 0 || hi > limit || lo > hi {
		return fmt.Errorf("%w: range [%d,%d) not within [0,%d)", ErrOutOfRange, lo, hi, limit)
	}
	return nil
}

// All reports whether pred holds for every element of the whole matrix.
func (a *NPArray[T]) All(pred func(T) bool) bool {
	return a.scan(Row, 0, a.rows, pred)
}

// Any reports whether pred holds for at least one element of the whole
// matrix.
func (a *NPArray[T]) Any(pred func(T) bool) bool {
	found := false
	a.scan(Row, 0, a.rows, func(v T) bool {
		if pred(v) {
			found = true
			return false
		}
		return true
	})
	return found
}

// None reports whether pred holds for no element of the whole matrix.
func (a *NPArray[T]) None(pred func(T) bool) bool {
	return !a.Any(pred)
}

// Count returns the number of elements of the whole matrix satisfying pred.
func (a *NPArray[T]) Count(pred func(T) bool) int {
	n := 0
	a.scan(Row, 0, a.rows, func(v T) bool {
		if pred(v) {
			n++
		}
		return true
	})
	return n
}

// AllRange reports whether pred holds for every element in the half-open
// range [lo,hi) of rows (axis==Row) or columns (axis==Column).
func (a *NPArray[T]) AllRange(axis Axis, lo, hi int, pred func(T) bool) (bool, error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return false, err
	}
	return a.scan(axis, lo, hi, pred), nil
}

// AnyRange reports whether pred holds for at least one element in the
// half-open range.
func (a *NPArray[T]) AnyRange(axis Axis, lo, hi int, pred func(T) bool) (bool, error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return false, err
	}
	found := false
	a.scan(axis, lo, hi, func(v T) bool {
		if pred(v) {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

// NoneRange reports whether pred holds for no element in the half-open
// range.
func (a *NPArray[T]) NoneRange(axis Axis, lo, hi int, pred func(T) bool) (bool, error) {
	v, err := a.AnyRange(axis, lo, hi, pred)
	if err != nil {
		return false, err
	}
	return !v, nil
}

// CountRange returns the number of elements satisfying pred in the
// half-open range.
func (a *NPArray[T]) CountRange(axis Axis, lo, hi int, pred func(T) bool) (int, error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return 0, err
	}
	n := 0
	a.scan(axis, lo, hi, func(v T) bool {
		if pred(v) {
			n++
		}
		return true
	})
	return n, nil
}

// AllInRow reports whether pred holds for every element of row r.
func (a *NPArray[T]) AllInRow(r int, pred func(T) bool) (bool, error) {
	return a.AllRange(Row, r, r+1, pred)
}

// AllInColumn reports whether pred holds for every element of column c.
func (a *NPArray[T]) AllInColumn(c int, pred func(T) bool) (bool, error) {
	return a.AllRange(Column, c, c+1, pred)
}
