package strategy

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// SellCondition is an extra SELL check evaluated on the same bar pair as the policy.
type SellCondition interface {
	CrossedDown(closes []float64) (bool, error)
}

// Detector classifies one horizon of a symbol with a policy and an optional
// oscillator cross SELL check.
type Detector struct {
	Horizon    model.Interval
	Lookback   string
	MinBars    int
	Policy     Policy
	Oscillator SellCondition
}

// NewDetector creates a Detector.
func NewDetector(horizon model.Interval, lookback string, minBars int, policy Policy, osc SellCondition) *Detector {
	return &Detector{
		Horizon:    horizon,
		Lookback:   lookback,
		MinBars:    minBars,
		Policy:     policy,
		Oscillator: osc,
	}
}

// Detect classifies the latest bar of series. A nil signal with a nil error
// means no signal, including when the series is shorter than MinBars.
func (d *Detector) Detect(series model.PriceSeries) (*model.Signal, error) {
	if series.Len() < d.MinBars || series.Len() < 2 {
		return nil, nil
	}
	closes := series.Closes()

	kind, ok, err := d.Policy.Classify(closes)
	if err != nil {
		return nil, fmt.Errorf("%s policy: %w", d.Policy.Name(), err)
	}

	if d.Oscillator != nil {
		sell, err := d.Oscillator.CrossedDown(closes)
		if err != nil {
			return nil, fmt.Errorf("oscillator cross: %w", err)
		}
		if sell {
			if ok && kind == model.SignalBuy {
				logrus.WithFields(logrus.Fields{"symbol": series.Symbol, "interval": d.Horizon}).
					Info("buy and oscillator sell on the same bar, dropping both")
				return nil, nil
			}
			kind, ok = model.SignalSell, true
		}
	}
	if !ok {
		return nil, nil
	}

	latest, _ := series.Latest()
	return &model.Signal{
		Symbol:  series.Symbol,
		Kind:    kind,
		Horizon: d.Horizon,
		Price:   latest.Close,
		BarTime: latest.Time,
	}, nil
}
