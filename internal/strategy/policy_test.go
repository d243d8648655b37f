package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

func TestCrossoverBuy_Rule(t *testing.T) {
	tests := []struct {
		name      string
		prevClose float64
		latest    float64
		prevFilts []float64
		refPrev   float64
		refLatest float64
		want      bool
	}{
		{"all below and crossed", 90, 110, []float64{100, 100, 100}, 100, 100, true},
		{"two below and crossed", 90, 110, []float64{100, 95, 80}, 100, 100, true},
		{"one below only", 90, 110, []float64{100, 80, 80}, 100, 100, false},
		{"below but no cross", 90, 99, []float64{100, 100, 100}, 100, 100, false},
		{"latest equal to filter is not a cross", 90, 100, []float64{100, 100, 100}, 100, 100, false},
		{"previous equal to filter is not below", 100, 110, []float64{100, 100, 100}, 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crossoverBuy(tt.prevClose, tt.latest, tt.prevFilts, tt.refPrev, tt.refLatest, 2)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrossoverPolicy_FreshCrossIsBuy(t *testing.T) {
	s := flatThenCross("ACME", 2000, 100, 80, 120)
	closes := s.Closes()
	n := len(closes)

	p := NewCrossoverPolicy([]int{250, 50, 100}, 0, 2)
	require.Equal(t, 50, p.reference())
	require.Equal(t, 250, p.MaxPeriod())

	for _, period := range []int{50, 100, 250} {
		filt, err := calculator.SuperSmoother(closes, period)
		require.NoError(t, err)
		require.Less(t, closes[n-2], filt[n-2], "period %d", period)
	}

	kind, ok, err := p.Classify(closes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.SignalBuy, kind)
}

func TestCrossoverPolicy_NoCrossNoSignal(t *testing.T) {
	s := flatThenCross("ACME", 2000, 100, 80, 85)
	_, ok, err := NewCrossoverPolicy([]int{50, 100, 250}, 0, 2).Classify(s.Closes())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCrossoverPolicy_InvalidPeriod(t *testing.T) {
	_, _, err := NewCrossoverPolicy([]int{0}, 0, 1).Classify([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestSlopeSignal_Rule(t *testing.T) {
	tests := []struct {
		name     string
		prev     float64
		latest   float64
		rsi      float64
		wantKind model.SignalKind
		wantOK   bool
	}{
		{"rising and oversold", 10, 11, 25, model.SignalBuy, true},
		{"rising but not oversold", 10, 11, 30, "", false},
		{"falling and overbought", 11, 10, 75, model.SignalSell, true},
		{"falling but not overbought", 11, 10, 70, "", false},
		{"flat", 10, 10, 10, "", false},
		{"rising and overbought", 10, 11, 90, "", false},
		{"nan oscillator", 10, 11, math.NaN(), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := slopeSignal(tt.prev, tt.latest, tt.rsi, 30, 70)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestSlopePolicy_FlatSeriesHasNoOpinion(t *testing.T) {
	s := flatThenCross("ACME", 300, 100, 100, 100)
	kind, ok, err := NewSlopePolicy(10, 14, 30, 70).Classify(s.Closes())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, kind)
}

func TestSlopePolicy_MaxPeriod(t *testing.T) {
	assert.Equal(t, 50, NewSlopePolicy(50, 14, 30, 70).MaxPeriod())
	assert.Equal(t, 15, NewSlopePolicy(10, 14, 30, 70).MaxPeriod())
}

func TestCrossedDown(t *testing.T) {
	nan := math.NaN()
	assert.True(t, crossedDown(60, 55, 50, 54))
	assert.False(t, crossedDown(55, 55, 50, 54))
	assert.False(t, crossedDown(60, 55, 56, 54))
	assert.False(t, crossedDown(nan, 55, 50, 54))
	assert.False(t, crossedDown(60, nan, 50, nan))
}

func TestOscillatorCross_ShortSeries(t *testing.T) {
	o := &OscillatorCross{RSIPeriod: 14, Window: 14}
	sell, err := o.CrossedDown([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, sell)
	assert.Equal(t, 29, o.MinBars())
}

func TestSlopePolicy_RisingTrendOversoldIsBuy(t *testing.T) {
	closes := rampThenShock("ACME", 300, 100, 1, -60).Closes()
	n := len(closes)
	p := NewSlopePolicy(50, 14, 30, 70)

	filt, err := calculator.SuperSmoother(closes, 50)
	require.NoError(t, err)
	require.Greater(t, filt[n-1], filt[n-2], "smoothed trend still rising")
	rsi, err := calculator.RSISeries(closes, 14)
	require.NoError(t, err)
	require.Less(t, rsi[n-1], 30.0)

	kind, ok, err := p.Classify(closes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.SignalBuy, kind)

	_, ok, err = p.Classify(closes[:n-1])
	require.NoError(t, err)
	assert.False(t, ok, "a plain uptrend is overbought, not a buy")
}

func TestSlopePolicy_FallingTrendOverboughtIsSell(t *testing.T) {
	closes := rampThenShock("ACME", 300, 400, -1, 60).Closes()
	n := len(closes)

	filt, err := calculator.SuperSmoother(closes, 50)
	require.NoError(t, err)
	require.Less(t, filt[n-1], filt[n-2], "smoothed trend still falling")
	rsi, err := calculator.RSISeries(closes, 14)
	require.NoError(t, err)
	require.Greater(t, rsi[n-1], 70.0)

	kind, ok, err := NewSlopePolicy(50, 14, 30, 70).Classify(closes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.SignalSell, kind)
}

func TestOscillatorCross_DropAfterRallyCrossesDown(t *testing.T) {
	closes := choppyRallyThenDrop("ACME").Closes()
	o := &OscillatorCross{RSIPeriod: 14, Window: 14}
	require.GreaterOrEqual(t, len(closes), o.MinBars())

	sell, err := o.CrossedDown(closes)
	require.NoError(t, err)
	assert.True(t, sell)

	sell, err = o.CrossedDown(closes[:len(closes)-1])
	require.NoError(t, err)
	assert.False(t, sell, "still rallying on the previous bar")
}
