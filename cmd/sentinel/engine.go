package main

import (
	"fmt"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/strategy"
)

// buildEngine turns validated detector configs into detectors.
func buildEngine(cfgs []config.DetectorConfig) (*strategy.Engine, error) {
	detectors := make([]*strategy.Detector, 0, len(cfgs))
	for _, d := range cfgs {
		var policy strategy.Policy
		switch d.Policy {
		case strategy.PolicyCrossover:
			policy = strategy.NewCrossoverPolicy(d.Periods, d.Reference, d.MinBelow)
		case strategy.PolicySlope:
			policy = strategy.NewSlopePolicy(d.SlopePeriod, d.RSIPeriod, d.Oversold, d.Overbought)
		default:
			return nil, fmt.Errorf("%w: unknown policy %q", config.ErrConfiguration, d.Policy)
		}

		// left as a nil interface when disabled
		var osc strategy.SellCondition
		if d.Oscillator.Enabled {
			osc = &strategy.OscillatorCross{RSIPeriod: d.Oscillator.RSIPeriod, Window: d.Oscillator.Window}
		}
		detectors = append(detectors, strategy.NewDetector(model.Interval(d.Interval), d.Lookback, d.MinBars, policy, osc))
	}
	return strategy.NewEngine(detectors...), nil
}
