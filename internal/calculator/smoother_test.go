package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperSmoother_ColdStartIsZero(t *testing.T) {
	inputs := [][]float64{
		{10, 20, 30, 40},
		{5, 5},
		{-3, 7, 1},
	}
	for _, prices := range inputs {
		for _, period := range []int{3, 10, 50, 250} {
			filt, err := SuperSmoother(prices, period)
			require.NoError(t, err)
			require.Len(t, filt, len(prices))
			assert.Zero(t, filt[0])
			assert.Zero(t, filt[1])
		}
	}
}

func TestSuperSmoother_ConvergesToConstant(t *testing.T) {
	prices := make([]float64, 5000)
	for i := range prices {
		prices[i] = 123.45
	}
	for _, period := range []int{3, 10, 50, 100, 250} {
		filt, err := SuperSmoother(prices, period)
		require.NoError(t, err)
		assert.InDelta(t, 123.45, filt[len(filt)-1], 1e-6, "period %d", period)
	}
}

func TestSuperSmoother_FirstFilteredValue(t *testing.T) {
	period := 10
	a1 := math.Exp(-1.414 * math.Pi / float64(period))
	b1 := 2 * a1 * math.Cos(1.414*math.Pi/float64(period))
	c1 := 1 - b1 + a1*a1

	filt, err := SuperSmoother([]float64{1, 3, 5}, period)
	require.NoError(t, err)
	// filt[1] and filt[0] are zero, so only the price term contributes.
	assert.InDelta(t, c1*(5+3)/2, filt[2], 1e-12)
}

func TestSuperSmoother_ShortAndEmptyInput(t *testing.T) {
	filt, err := SuperSmoother(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, filt)

	filt, err = SuperSmoother([]float64{42}, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, filt)
}

func TestSuperSmoother_InvalidPeriod(t *testing.T) {
	_, err := SuperSmoother([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestSuperSmoother_LagsLessThanTrend(t *testing.T) {
	// On a steady uptrend the filter trails price but keeps rising.
	prices := make([]float64, 400)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	filt, err := SuperSmoother(prices, 20)
	require.NoError(t, err)
	n := len(prices)
	assert.Less(t, filt[n-1], prices[n-1])
	assert.Greater(t, filt[n-1], filt[n-2])
}
