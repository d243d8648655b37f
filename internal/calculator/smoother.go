package calculator

import (
	"errors"
	"math"
)

// SuperSmoother applies the Ehlers two-pole super-smoother filter to prices.
// The first two outputs are zero by construction. Coefficients depend only on
// period and are computed on every call.
func SuperSmoother(prices []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.New("period must be positive")
	}
	filt := make([]float64, len(prices))

	a1 := math.Exp(-1.414 * math.Pi / float64(period))
	b1 := 2 * a1 * math.Cos(1.414*math.Pi/float64(period))
	c2 := b1
	c3 := -a1 * a1
	c1 := 1 - c2 - c3

	for i := 2; i < len(prices); i++ {
		filt[i] = c1*(prices[i]+prices[i-1])/2 + c2*filt[i-1] + c3*filt[i-2]
	}
	return filt, nil
}
