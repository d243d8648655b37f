package strategy

import (
	"time"

	"TrendSentinel/internal/model"
)

// flatThenCross builds a long flat series at base, a dip to dip on the
// previous bar and a jump to jump on the latest bar.
func flatThenCross(symbol string, n int, base, dip, jump float64) model.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base
	}
	closes[n-2] = dip
	closes[n-1] = jump
	return seriesFromCloses(symbol, model.IntervalMonthly, closes)
}

func seriesFromCloses(symbol string, interval model.Interval, closes []float64) model.PriceSeries {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:  start.AddDate(0, i, 0),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return model.PriceSeries{Symbol: symbol, Interval: interval, Bars: bars}
}

// rampThenShock builds a steady ramp of n bars moving by step per bar, then
// one final bar moved by shock.
func rampThenShock(symbol string, n int, start, step, shock float64) model.PriceSeries {
	closes := make([]float64, n+1)
	for i := 0; i < n; i++ {
		closes[i] = start + step*float64(i)
	}
	closes[n] = closes[n-1] + shock
	return seriesFromCloses(symbol, model.IntervalMonthly, closes)
}

// choppyRallyThenDrop alternates 100/101 for 60 bars, rallies one point a bar
// for 10 bars and then drops 10 on the latest bar. RSI sits above its mean
// during the rally and falls through it on the drop.
func choppyRallyThenDrop(symbol string) model.PriceSeries {
	closes := make([]float64, 0, 71)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+float64(i%2))
	}
	for i := 0; i < 10; i++ {
		closes = append(closes, closes[len(closes)-1]+1)
	}
	closes = append(closes, closes[len(closes)-1]-10)
	return seriesFromCloses(symbol, model.IntervalMonthly, closes)
}
