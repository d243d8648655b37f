package model

import "time"

// Interval is the sampling interval of a price series.
type Interval string

const (
	IntervalMonthly Interval = "1mo"
	IntervalWeekly  Interval = "1wk"
	IntervalDaily   Interval = "1d"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars of one symbol at one interval, oldest first.
type PriceSeries struct {
	Symbol   string
	Interval Interval
	Bars     []OHLCV
}

// Closes returns the close prices of the series in bar order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Latest returns the most recent bar. ok is false for an empty series.
func (s PriceSeries) Latest() (bar OHLCV, ok bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
