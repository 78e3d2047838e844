package stats

import (
	"fmt"

	"github.com/paf-go/paf/nparray"
)

// SNR computes, for each sample in [b,e), the signal-to-noise ratio of a
// trace matrix (rows = traces, cols = samples) grouped by a per-row
// classifier into n classes: the variance of the per-class means
// ("signal") divided by the mean of the per-class variances ("noise").
// Classes with fewer than two traces contribute to neither term.
//
// SNR is standard groundwork for the same attack family as the
// t-tests (partitioning traces into classes and comparing
// between-class to within-class spread), built directly on the
// classifier machinery already used by WelshClassified.
func SNR(traces *nparray.NPArray[float64], classes []int, numClasses int, b, e int) (*nparray.NPArray[float64], error) {
	if len(classes) != traces.Rows() {
		return nil, fmt.Errorf("stats: class count %d does not match %d traces", len(classes), traces.Rows())
	}

	byClass := make([][]int, numClasses)
	for row, cls := range classes {
		if cls < 0 || cls >= numClasses {
			return nil, fmt.Errorf("stats: class %d out of range [0,%d)", cls, numClasses)
		}
		byClass[cls] = append(byClass[cls], row)
	}

	out := make([]float64, e-b)
	for s := b; s < e; s++ {
		var means, vars []float64
		for _, rows := range byClass {
			if len(rows) < 2 {
				continue
			}
			vals := make([]float64, len(rows))
			for i, r := range rows {
				vals[i] = traces.MustGet(r, s)
			}
			m, v, err := nparray.WelfordMeanVar(vals, 1)
			if err != nil {
				return nil, err
			}
			means = append(means, m)
			vars = append(vars, v)
		}
		if len(means) < 2 {
			return nil, fmt.Errorf("stats: SNR needs at least two populated classes with >= 2 traces at sample %d", s)
		}
		signal, _, err := nparray.WelfordMeanVar(means, 1)
		if err != nil {
			return nil, err
		}
		var noise float64
		for _, v := range vars {
			noise += v
		}
		noise /= float64(len(vars))
		out[s-b] = signal / noise
	}
	return nparray.FromSlice(1, e-b, out)
}
