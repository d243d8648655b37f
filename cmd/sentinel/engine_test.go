package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
	"TrendSentinel/internal/strategy"
)

func TestBuildEngine_Defaults(t *testing.T) {
	e, err := buildEngine(config.DefaultDetectors())
	require.NoError(t, err)
	require.Len(t, e.Detectors, 2)

	monthly := e.Detectors[0]
	assert.Equal(t, model.IntervalMonthly, monthly.Horizon)
	assert.Equal(t, 260, monthly.MinBars)
	assert.Equal(t, strategy.PolicyCrossover, monthly.Policy.Name())
	assert.Equal(t, 250, monthly.Policy.MaxPeriod())
	assert.NotNil(t, monthly.Oscillator)
	assert.Nil(t, e.Detectors[1].Oscillator)

	assert.Equal(t, map[model.Interval]string{model.IntervalMonthly: "25y", model.IntervalWeekly: "6y"}, e.Intervals())
}

func TestBuildEngine_Slope(t *testing.T) {
	e, err := buildEngine([]config.DetectorConfig{{
		Interval: "1d", Lookback: "2y", MinBars: 60, Policy: strategy.PolicySlope,
		SlopePeriod: 20, RSIPeriod: 14, Oversold: 30, Overbought: 70,
	}})
	require.NoError(t, err)
	assert.Equal(t, strategy.PolicySlope, e.Detectors[0].Policy.Name())
}

func TestBuildEngine_UnknownPolicy(t *testing.T) {
	_, err := buildEngine([]config.DetectorConfig{{Interval: "1d", Policy: "magic"}})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}
