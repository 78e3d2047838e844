package stats

import (
	"fmt"
	"math"

	"github.com/paf-go/paf/nparray"
)

// Correl computes the Pearson correlation coefficient at each sample in
// [b,e) between a trace matrix (rows = traces, cols = samples) and a
// per-trace intermediate-value vector ival, using the standard
// single-pass Sx/Sxx/Sy/Syy/Sxy formula.
func Correl(traces *nparray.NPArray[float64], ival []float64, b, e int) (*nparray.NPArray[float64], error) {
	if len(ival) != traces.Rows() {
		return nil, fmt.Errorf("stats: intermediate-value count %d does not match %d traces", len(ival), traces.Rows())
	}
	nbTraces := float64(traces.Rows())
	nbSamples := e - b

	sumT := make([]float64, nbSamples)
	sumTSq := make([]float64, nbSamples)
	sumHT := make([]float64, nbSamples)
	var sumH, sumHSq float64

	for t := 0; t < traces.Rows(); t++ {
		iv := ival[t]
		sumH += iv
		sumHSq += iv * iv
		for s := 0; s < nbSamples; s++ {
			v := traces.MustGet(t, b+s)
			sumT[s] += v
			sumTSq[s] += v * v
			sumHT[s] += v * iv
		}
	}

	out := make([]float64, nbSamples)
	for s := 0; s < nbSamples; s++ {
		num := nbTraces*sumHT[s] - sumH*sumT[s]
		den := math.Sqrt((sumH*sumH - nbTraces*sumHSq) * (sumT[s]*sumT[s] - nbTraces*sumTSq[s]))
		out[s] = num / den
	}
	return nparray.FromSlice(1, nbSamples, out)
}
