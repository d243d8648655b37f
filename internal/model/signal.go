package model

import "time"

// SignalKind is the direction of a signal.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
)

// Signal is a classification of a symbol on the latest bar of one horizon.
type Signal struct {
	Symbol  string
	Kind    SignalKind
	Horizon Interval
	Price   float64
	BarTime time.Time
}
