// Package stats implements the statistical kernels consulted by a
// side-channel attack: Welsh and Student t-tests (including a
// constant-aware "perfect" variant), Pearson correlation, and the
// signal-to-noise ratio, all operating on float64 trace matrices from
// package nparray.
package stats

// Classification labels one trace's group membership for the
// single-matrix forms of the t-test kernels.
type Classification int

const (
	Group0 Classification = iota
	Group1
	Ignore
)
