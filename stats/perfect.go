package stats

import "github.com/paf-go/paf/nparray"

// PerfectCase names which of the four "perfect" t-test branches a column
// fell into.
type PerfectCase int

const (
	BothConstantAndEqual PerfectCase = iota
	DifferentConstantValues
	OneConstant
	NeitherConstant
	lastPerfectCase
)

func (c PerfectCase) String() string {
	switch c {
	case BothConstantAndEqual:
		return "both constant and equal"
	case DifferentConstantValues:
		return "different constant values"
	case OneConstant:
		return "one constant"
	case NeitherConstant:
		return "neither constant"
	default:
		return "?"
	}
}

// PerfectHistogram tallies how many columns of a perfect t-test fell into
// each PerfectCase, for diagnostic reporting.
type PerfectHistogram struct {
	counts [lastPerfectCase]int
}

// Incr records one more column in case c.
func (h *PerfectHistogram) Incr(c PerfectCase) { h.counts[c]++ }

// Count returns how many columns fell into case c.
func (h *PerfectHistogram) Count(c PerfectCase) int { return h.counts[c] }

// Total returns the number of columns tallied.
func (h *PerfectHistogram) Total() int {
	n := 0
	for _, c := range h.counts {
		n += c
	}
	return n
}

func columnIsConstant(traces *nparray.NPArray[float64], col int) (bool, float64) {
	first := traces.MustGet(0, col)
	allEqual, _ := traces.AllInColumn(col, func(v float64) bool { return v == first })
	return allEqual, first
}

// PerfectTTest computes the "perfect" t-test over [b,e) between two
// groups: per column, it picks one of four behaviours depending on
// whether either group is constant there (see PerfectCase). hist, if
// non-nil, is updated with one Incr per column.
func PerfectTTest(group0, group1 *nparray.NPArray[float64], b, e int, hist *PerfectHistogram) (*nparray.NPArray[float64], error) {
	out := make([]float64, e-b)
	for s := b; s < e; s++ {
		const0, v0 := columnIsConstant(group0, s)
		const1, v1 := columnIsConstant(group1, s)

		switch {
		case const0 && const1 && v0 == v1:
			if hist != nil {
				hist.Incr(BothConstantAndEqual)
			}
			out[s-b] = 0.0
		case const0 && const1:
			if hist != nil {
				hist.Incr(DifferentConstantValues)
			}
			// Neither group varies, so no t-statistic is meaningful; 0.0
			// is a placeholder, not a claim of "no difference".
			out[s-b] = 0.0
		case const0 || const1:
			if hist != nil {
				hist.Incr(OneConstant)
			}
			var v float64
			var err error
			if const0 {
				v, err = Student(s, v0, group1)
			} else {
				v, err = Student(s, v1, group0)
			}
			if err != nil {
				return nil, err
			}
			out[s-b] = v
		default:
			if hist != nil {
				hist.Incr(NeitherConstant)
			}
			v, err := WelshAt(s, group0, group1)
			if err != nil {
				return nil, err
			}
			out[s-b] = v
		}
	}
	return nparray.FromSlice(1, e-b, out)
}

// PerfectTTestClassified is PerfectTTest for one matrix split by a
// per-row classifier instead of two separate matrices.
func PerfectTTestClassified(traces *nparray.NPArray[float64], classifier []Classification, b, e int, hist *PerfectHistogram) (*nparray.NPArray[float64], error) {
	out := make([]float64, e-b)
	for s := b; s < e; s++ {
		v0s := groupColumn(traces, classifier, s, Group0)
		v1s := groupColumn(traces, classifier, s, Group1)

		const0, val0 := sliceIsConstant(v0s)
		const1, val1 := sliceIsConstant(v1s)

		switch {
		case const0 && const1 && val0 == val1:
			if hist != nil {
				hist.Incr(BothConstantAndEqual)
			}
			out[s-b] = 0.0
		case const0 && const1:
			if hist != nil {
				hist.Incr(DifferentConstantValues)
			}
			out[s-b] = 0.0
		case const0 || const1:
			if hist != nil {
				hist.Incr(OneConstant)
			}
			selectGroup0 := func(row int) bool { return classifier[row] == Group0 }
			selectGroup1 := func(row int) bool { return classifier[row] == Group1 }
			var v float64
			var err error
			if const0 {
				v, err = StudentSelect(s, val0, traces, selectGroup1)
			} else {
				v, err = StudentSelect(s, val1, traces, selectGroup0)
			}
			if err != nil {
				return nil, err
			}
			out[s-b] = v
		default:
			if hist != nil {
				hist.Incr(NeitherConstant)
			}
			v, err := WelshClassifiedAt(s, traces, classifier)
			if err != nil {
				return nil, err
			}
			out[s-b] = v
		}
	}
	return nparray.FromSlice(1, e-b, out)
}

func sliceIsConstant(vals []float64) (bool, float64) {
	if len(vals) == 0 {
		return true, 0
	}
	first := vals[0]
	for _, v := range vals[1:] {
		if v != first {
			return false, first
		}
	}
	return true, first
}
