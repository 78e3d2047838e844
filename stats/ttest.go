package stats

import (
	"fmt"
	"math"

	"github.com/paf-go/paf/nparray"
)

// Welsh computes the Welsh t-test over column range [b,e) between two
// groups of traces (rows = traces, cols = samples), one value per
// column: (mean0-mean1) / sqrt(var0/n0 + var1/n1), with ddof=1. Each
// group must have at least two rows.
func Welsh(group0, group1 *nparray.NPArray[float64], b, e int) (*nparray.NPArray[float64], error) {
	if group0.Rows() < 2 || group1.Rows() < 2 {
		return nil, fmt.Errorf("stats: Welsh t-test requires at least two samples per group")
	}
	mean0, var0, err := group0.MeanWithVarAxisRange(nparray.Column, b, e, 1)
	if err != nil {
		return nil, err
	}
	mean1, var1, err := group1.MeanWithVarAxisRange(nparray.Column, b, e, 1)
	if err != nil {
		return nil, err
	}

	var0.DivScalar(float64(group0.Rows()))
	var1.DivScalar(float64(group1.Rows()))
	if err := var0.Add(var1); err != nil {
		return nil, err
	}
	var0.Sqrt()

	if err := mean0.Sub(mean1); err != nil {
		return nil, err
	}
	if err := mean0.Div(var0); err != nil {
		return nil, err
	}
	return mean0, nil
}

// WelshAt is Welsh restricted to a single column.
func WelshAt(s int, group0, group1 *nparray.NPArray[float64]) (float64, error) {
	tt, err := Welsh(group0, group1, s, s+1)
	if err != nil {
		return 0, err
	}
	return tt.MustGet(0, 0), nil
}

// groupColumn pulls out the values of column s for the rows labeled
// want by classifier.
func groupColumn(traces *nparray.NPArray[float64], classifier []Classification, col int, want Classification) []float64 {
	var out []float64
	for row := 0; row < traces.Rows(); row++ {
		if classifier[row] == want {
			out = append(out, traces.MustGet(row, col))
		}
	}
	return out
}

// WelshClassified computes the Welsh t-test over column range [b,e) for
// one matrix of traces split into two groups by a per-row classifier
// (Ignore rows are excluded from both groups).
func WelshClassified(traces *nparray.NPArray[float64], classifier []Classification, b, e int) (*nparray.NPArray[float64], error) {
	if len(classifier) != traces.Rows() {
		return nil, fmt.Errorf("stats: classifier length %d does not match %d traces", len(classifier), traces.Rows())
	}
	out := make([]float64, e-b)
	for s := b; s < e; s++ {
		v0 := groupColumn(traces, classifier, s, Group0)
		v1 := groupColumn(traces, classifier, s, Group1)
		if len(v0) < 2 || len(v1) < 2 {
			return nil, fmt.Errorf("stats: Welsh t-test requires at least two samples per group")
		}
		m0, var0, err := nparray.WelfordMeanVar(v0, 1)
		if err != nil {
			return nil, err
		}
		m1, var1, err := nparray.WelfordMeanVar(v1, 1)
		if err != nil {
			return nil, err
		}
		out[s-b] = (m0 - m1) / math.Sqrt(var0/float64(len(v0))+var1/float64(len(v1)))
	}
	return nparray.FromSlice(1, e-b, out)
}

// WelshClassifiedAt is WelshClassified restricted to a single column.
func WelshClassifiedAt(s int, traces *nparray.NPArray[float64], classifier []Classification) (float64, error) {
	tt, err := WelshClassified(traces, classifier, s, s+1)
	if err != nil {
		return 0, err
	}
	return tt.MustGet(0, 0), nil
}

// Student computes Student's t-test at column s against reference mean
// m0: sqrt(n) * (mean-m0)/stddev, ddof=1.
func Student(s int, m0 float64, traces *nparray.NPArray[float64]) (float64, error) {
	mean, variance, err := traces.MeanWithVarOf(nparray.Column, s, 1)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(float64(traces.Rows())) * (mean - m0) / math.Sqrt(variance), nil
}

// StudentSelect is Student restricted to the rows for which select
// returns true. Returns NaN if fewer than two such rows remain.
func StudentSelect(s int, m0 float64, traces *nparray.NPArray[float64], selectRow func(row int) bool) (float64, error) {
	var vals []float64
	for row := 0; row < traces.Rows(); row++ {
		if selectRow(row) {
			vals = append(vals, traces.MustGet(row, s))
		}
	}
	if len(vals) <= 1 {
		return math.NaN(), nil
	}
	mean, variance, err := nparray.WelfordMeanVar(vals, 1)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(float64(len(vals))) * (mean - m0) / math.Sqrt(variance), nil
}

// StudentRange computes Student's t-test over [b,e), one reference mean
// m0[s-b] per column.
func StudentRange(b, e int, m0 []float64, traces *nparray.NPArray[float64]) (*nparray.NPArray[float64], error) {
	if len(m0) < e-b {
		return nil, fmt.Errorf("stats: need %d reference means, got %d", e-b, len(m0))
	}
	out := make([]float64, e-b)
	for s := b; s < e; s++ {
		v, err := Student(s, m0[s-b], traces)
		if err != nil {
			return nil, err
		}
		out[s-b] = v
	}
	return nparray.FromSlice(1, e-b, out)
}

// StudentRangeSelect is StudentRange restricted to the rows for which
// select returns true.
func StudentRangeSelect(b, e int, m0 []float64, traces *nparray.NPArray[float64], selectRow func(row int) bool) (*nparray.NPArray[float64], error) {
	if len(m0) < e-b {
		return nil, fmt.Errorf("stats: need %d reference means, got %d", e-b, len(m0))
	}
	out := make([]float64, e-b)
	for s := b; s < e; s++ {
		v, err := StudentSelect(s, m0[s-b], traces, selectRow)
		if err != nil {
			return nil, err
		}
		out[s-b] = v
	}
	return nparray.FromSlice(1, e-b, out)
}
