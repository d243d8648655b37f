package calculator

import (
	"errors"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// RollingMean returns the simple moving average of values over window, aligned
// to the input. Entries without a full window of valid values are NaN. Leading
// NaN inputs (an indicator warming up) are skipped.
func RollingMean(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	start := firstValid(values)
	valid := values[start:]
	if len(valid) < window {
		return alignTail(len(values), nil), nil
	}
	sma := trend.NewSmaWithPeriod[float64](window)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(valid)))
	return alignTail(len(values), out), nil
}

// firstValid returns the index of the first non-NaN value, or len(values).
func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(values)
}

// alignTail places tail at the end of a NaN-filled slice of length n. Streaming
// indicators drop their warm-up period, so their output lines up with the last
// len(tail) inputs.
func alignTail(n int, tail []float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if len(tail) > n {
		tail = tail[len(tail)-n:]
	}
	copy(out[n-len(tail):], tail)
	return out
}
