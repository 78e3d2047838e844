package nparray

import "fmt"

// Location identifies a cell found by a location-returning reduction, in
// row-major traversal order.
type Location struct {
	Row, Col int
}

func absT[T Numeric](v T) T {
	switch x := any(v).(type) {
	case int8:
		if x < 0 {
			return any(-x).(T)
		}
	case int16:
		if x < 0 {
			return any(-x).(T)
		}
	case int32:
		if x < 0 {
			return any(-x).(T)
		}
	case int64:
		if x < 0 {
			return any(-x).(T)
		}
	case float32:
		if x < 0 {
			return any(-x).(T)
		}
	case float64:
		if x < 0 {
			return any(-x).(T)
		}
	}
	return v
}

// reduceRange folds over the half-open range [lo,hi) of axis -- a merged
// set of cells (not a per-row/per-col vector), tracking the first winning
// location in row-major order. Used by the whole-matrix / range forms of
// Min / Max / MinAbs / MaxAbs, which always collapse to a single scalar
// regardless of axis.
func (a *NPArray[T]) reduceRange(axis Axis, lo, hi int, better func(candidate, current T) bool) (T, Location, error) {
	var best T
	var bestLoc Location
	seen := false
	switch axis {
	case Row:
		for r := lo; r < hi; r++ {
			for c := 0; c < a.cols; c++ {
				v := a.data[r*a.cols+c]
				if !seen || better(v, best) {
					best, bestLoc, seen = v, Location{r, c}, true
				}
			}
		}
	case Column:
		for c := lo; c < hi; c++ {
			for r := 0; r < a.rows; r++ {
				v := a.data[r*a.cols+c]
				if !seen || better(v, best) {
					best, bestLoc, seen = v, Location{r, c}, true
				}
			}
		}
	default:
		return best, bestLoc, fmt.Errorf("nparray: invalid axis %d", axis)
	}
	if !seen {
		return best, bestLoc, ErrNoResult
	}
	return best, bestLoc, nil
}

// Max returns the maximum element of the whole matrix. On a tie the first
// cell in row-major order wins.
func (a *NPArray[T]) Max() (T, error) {
	v, _, err := a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return cand > cur })
	return v, err
}

// MaxLoc returns the maximum element of the whole matrix and the row-major
// location of its first occurrence.
func (a *NPArray[T]) MaxLoc() (T, Location, error) {
	return a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return cand > cur })
}

// Min returns the minimum element of the whole matrix.
func (a *NPArray[T]) Min() (T, error) {
	v, _, err := a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return cand < cur })
	return v, err
}

// MinLoc returns the minimum element and its first row-major location.
func (a *NPArray[T]) MinLoc() (T, Location, error) {
	return a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return cand < cur })
}

// MaxOf returns the maximum element of row i (axis==Row) or column i
// (axis==Column).
func (a *NPArray[T]) MaxOf(axis Axis, i int) (T, error) {
	return a.MaxRange(axis, i, i+1)
}

// MinOf returns the minimum element of row i (axis==Row) or column i
// (axis==Column).
func (a *NPArray[T]) MinOf(axis Axis, i int) (T, error) {
	return a.MinRange(axis, i, i+1)
}

// MaxRange returns the maximum element merged over the half-open range
// [lo,hi) of rows (axis==Row) or columns (axis==Column).
func (a *NPArray[T]) MaxRange(axis Axis, lo, hi int) (T, error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return *new(T), err
	}
	v, _, err := a.reduceRange(axis, lo, hi, func(cand, cur T) bool { return cand > cur })
	return v, err
}

// MinRange returns the minimum element merged over the half-open range of
// axis.
func (a *NPArray[T]) MinRange(axis Axis, lo, hi int) (T, error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return *new(T), err
	}
	v, _, err := a.reduceRange(axis, lo, hi, func(cand, cur T) bool { return cand < cur })
	return v, err
}

// MaxAbs returns the element of largest absolute value in the whole matrix.
func (a *NPArray[T]) MaxAbs() (T, error) {
	v, _, err := a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return absT(cand) > absT(cur) })
	return v, err
}

// MaxAbsLoc returns MaxAbs's value and first row-major location.
func (a *NPArray[T]) MaxAbsLoc() (T, Location, error) {
	return a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return absT(cand) > absT(cur) })
}

// MinAbs returns the element of smallest absolute value in the whole
// matrix.
func (a *NPArray[T]) MinAbs() (T, error) {
	v, _, err := a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return absT(cand) < absT(cur) })
	return v, err
}

// MinAbsLoc returns MinAbs's value and first row-major location.
func (a *NPArray[T]) MinAbsLoc() (T, Location, error) {
	return a.reduceRange(Row, 0, a.rows, func(cand, cur T) bool { return absT(cand) < absT(cur) })
}

// line returns the values of row idx (axis==Row) or column idx
// (axis==Column) as a freshly allocated slice (columns are strided in
// row-major storage, so this always copies for Column; for Row it could
// alias but we copy uniformly to keep the two branches symmetric and the
// result safe to keep past further mutation of a).
func (a *NPArray[T]) line(axis Axis, idx int) []T {
	switch axis {
	case Row:
		out := make([]T, a.cols)
		copy(out, a.data[idx*a.cols:(idx+1)*a.cols])
		return out
	default: // Column
		out := make([]T, a.rows)
		for r := 0; r < a.rows; r++ {
			out[r] = a.data[r*a.cols+idx]
		}
		return out
	}
}

func (a *NPArray[T]) axisLimit(axis Axis) (int, error) {
	switch axis {
	case Row:
		return a.rows, nil
	case Column:
		return a.cols, nil
	default:
		return 0, fmt.Errorf("nparray: invalid axis %d", axis)
	}
}

// Sum returns the sum of all elements in the whole matrix, accumulated in
// type T.
func (a *NPArray[T]) Sum() T {
	var s T
	for _, v := range a.data {
		s += v
	}
	return s
}

// SumOf returns the sum of row i (axis==Row) or column i (axis==Column).
func (a *NPArray[T]) SumOf(axis Axis, i int) (T, error) {
	limit, err := a.axisLimit(axis)
	if err != nil {
		return *new(T), err
	}
	if i < 0 || i >= limit {
		return *new(T), fmt.Errorf("%w: index %d not in [0,%d)", ErrOutOfRange, i, limit)
	}
	var s T
	for _, v := range a.line(axis, i) {
		s += v
	}
	return s, nil
}

// SumAxis returns, as an NPArray[T], the per-row sums (axis==Row, shape
// rows x 1) or per-column sums (axis==Column, shape 1 x cols) of the whole
// matrix.
func (a *NPArray[T]) SumAxis(axis Axis) (*NPArray[T], error) {
	return a.sumAxisRange(axis, 0, -1)
}

// SumAxisRange is SumAxis restricted to the half-open range [lo,hi) of rows
// (axis==Row) or columns (axis==Column); the result has shape (hi-lo) x 1
// for Row, 1 x (hi-lo) for Column.
func (a *NPArray[T]) SumAxisRange(axis Axis, lo, hi int) (*NPArray[T], error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return nil, err
	}
	return a.sumAxisRange(axis, lo, hi)
}

func (a *NPArray[T]) sumAxisRange(axis Axis, lo, hi int) (*NPArray[T], error) {
	limit, err := a.axisLimit(axis)
	if err != nil {
		return nil, err
	}
	if hi < 0 {
		hi = limit
	}
	n := hi - lo
	out := make([]T, n)
	for k := 0; k < n; k++ {
		var s T
		for _, v := range a.line(axis, lo+k) {
			s += v
		}
		out[k] = s
	}
	return shapeAxisResult(axis, out)
}

func shapeAxisResult[T Numeric](axis Axis, vals []T) (*NPArray[T], error) {
	if axis == Row {
		return FromSlice[T](len(vals), 1, vals)
	}
	return FromSlice[T](1, len(vals), vals)
}

// MeanOf returns the arithmetic mean of row i (axis==Row) or column i
// (axis==Column) as float64.
func (a *NPArray[T]) MeanOf(axis Axis, i int) (float64, error) {
	limit, err := a.axisLimit(axis)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= limit {
		return 0, fmt.Errorf("%w: index %d not in [0,%d)", ErrOutOfRange, i, limit)
	}
	return meanOfFloats(a.line(axis, i)), nil
}

// MeanAxis returns, per spec's NPArray.mean(axis) contract, the per-row
// means (axis==Row, shape rows x 1) or per-column means (axis==Column,
// shape 1 x cols) of the whole matrix.
func (a *NPArray[T]) MeanAxis(axis Axis) (*NPArray[float64], error) {
	return a.meanAxisRange(axis, 0, -1)
}

// MeanAxisRange is MeanAxis restricted to the half-open range [lo,hi).
func (a *NPArray[T]) MeanAxisRange(axis Axis, lo, hi int) (*NPArray[float64], error) {
	if err := a.checkRange(axis, lo, hi); err != nil {
		return nil, err
	}
	return a.meanAxisRange(axis, lo, hi)
}

func (a *NPArray[T]) meanAxisRange(axis Axis, lo, hi int) (*NPArray[float64], error) {
	limit, err := a.axisLimit(axis)
	if err != nil {
		return nil, err
	}
	if hi < 0 {
		hi = limit
	}
	n := hi - lo
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = meanOfFloats(a.line(axis, lo+k))
	}
	return shapeAxisResult(axis, out)
}

func meanOfFloats[T Numeric](vals []T) float64 {
	if len(vals) == 0 {
		return 0
	}
	var s float64
	for _, v := range vals {
		s += float64(v)
	}
	return s / float64(len(vals))
}

// MeanWithVarOf returns the mean and ddof-adjusted variance of row i
// (axis==Row) or column i (axis==Column), computed with Welford's
// single-pass algorithm: the running mean is updated by
// delta1 = x - mean, then the running sum-of-squares is updated by
// delta1 * (x - newMean).
func (a *NPArray[T]) MeanWithVarOf(axis Axis, i int, ddof int) (mean, variance float64, err error) {
	limit, err := a.axisLimit(axis)
	if err != nil {
		return 0, 0, err
	}
	if i < 0 || i >= limit {
		return 0, 0, fmt.Errorf("%w: index %d not in [0,%d)", ErrOutOfRange, i, limit)
	}
	return welford(toFloats(a.line(axis, i)), ddof)
}

// MeanWithVarAxis returns mean and variance NPArrays shaped per MeanAxis's
// convention: rows x 1 for axis==Row, 1 x cols for axis==Column.
func (a *NPArray[T]) MeanWithVarAxis(axis Axis, ddof int) (mean, variance *NPArray[float64], err error) {
	return a.meanWithVarAxisRange(axis, 0, -1, ddof)
}

// MeanWithVarAxisRange is MeanWithVarAxis restricted to [lo,hi).
func (a *NPArray[T]) MeanWithVarAxisRange(axis Axis, lo, hi int, ddof int) (mean, variance *NPArray[float64], err error) {
	if err = a.checkRange(axis, lo, hi); err != nil {
		return nil, nil, err
	}
	return a.meanWithVarAxisRange(axis, lo, hi, ddof)
}

func (a *NPArray[T]) meanWithVarAxisRange(axis Axis, lo, hi int, ddof int) (mean, variance *NPArray[float64], err error) {
	limit, lerr := a.axisLimit(axis)
	if lerr != nil {
		return nil, nil, lerr
	}
	if hi < 0 {
		hi = limit
	}
	n := hi - lo
	means := make([]float64, n)
	vars := make([]float64, n)
	for k := 0; k < n; k++ {
		m, v, werr := welford(toFloats(a.line(axis, lo+k)), ddof)
		if werr != nil {
			return nil, nil, werr
		}
		means[k], vars[k] = m, v
	}
	mean, err = shapeAxisResult(axis, means)
	if err != nil {
		return nil, nil, err
	}
	variance, err = shapeAxisResult(axis, vars)
	return mean, variance, err
}

func toFloats[T Numeric](vals []T) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

// WelfordMeanVar computes the mean and ddof-adjusted variance of an
// arbitrary float64 slice using the same single-pass algorithm as the
// axis-wise reductions, for callers (e.g. package stats) building their
// own row/column selection on top of NPArray.
func WelfordMeanVar(vals []float64, ddof int) (mean, variance float64, err error) {
	return welford(vals, ddof)
}

// welford computes the mean and ddof-adjusted variance of vals using
// Welford's single-pass algorithm.
func welford(vals []float64, ddof int) (mean, variance float64, err error) {
	n := len(vals)
	if n == 0 {
		return 0, 0, ErrNoResult
	}
	var m, m2 float64
	for i, x := range vals {
		delta1 := x - m
		m += delta1 / float64(i+1)
		m2 += delta1 * (x - m)
	}
	denom := float64(n - ddof)
	if denom <= 0 {
		return m, 0, fmt.Errorf("nparray: ddof=%d leaves no degrees of freedom for n=%d samples", ddof, n)
	}
	return m, m2 / denom, nil
}
