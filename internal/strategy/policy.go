package strategy

import (
	"fmt"
	"math"
	"sort"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

// Policy names accepted in configuration.
const (
	PolicyCrossover = "crossover"
	PolicySlope     = "slope"
)

// Policy classifies a series from its close prices, looking only at the
// previous and latest bars. ok is false when the policy has no opinion.
type Policy interface {
	Name() string
	MaxPeriod() int
	Classify(closes []float64) (kind model.SignalKind, ok bool, err error)
}

// CrossoverPolicy emits BUY when price was below enough of its smoothed trends
// on the previous bar and crosses above the reference trend on the latest bar.
type CrossoverPolicy struct {
	Periods   []int
	Reference int // 0 means the shortest period
	MinBelow  int
}

// NewCrossoverPolicy builds a multi-period crossover policy.
func NewCrossoverPolicy(periods []int, reference, minBelow int) *CrossoverPolicy {
	ps := append([]int(nil), periods...)
	sort.Ints(ps)
	return &CrossoverPolicy{Periods: ps, Reference: reference, MinBelow: minBelow}
}

func (p *CrossoverPolicy) Name() string { return PolicyCrossover }

func (p *CrossoverPolicy) MaxPeriod() int {
	m := p.reference()
	for _, period := range p.Periods {
		if period > m {
			m = period
		}
	}
	return m
}

func (p *CrossoverPolicy) reference() int {
	if p.Reference > 0 {
		return p.Reference
	}
	if len(p.Periods) == 0 {
		return 0
	}
	return p.Periods[0]
}

func (p *CrossoverPolicy) Classify(closes []float64) (model.SignalKind, bool, error) {
	n := len(closes)
	if n < 2 || len(p.Periods) == 0 {
		return "", false, nil
	}
	prevFilts := make([]float64, 0, len(p.Periods))
	for _, period := range p.Periods {
		filt, err := calculator.SuperSmoother(closes, period)
		if err != nil {
			return "", false, fmt.Errorf("smooth %d: %w", period, err)
		}
		prevFilts = append(prevFilts, filt[n-2])
	}
	ref, err := calculator.SuperSmoother(closes, p.reference())
	if err != nil {
		return "", false, fmt.Errorf("smooth reference %d: %w", p.reference(), err)
	}
	if crossoverBuy(closes[n-2], closes[n-1], prevFilts, ref[n-2], ref[n-1], p.MinBelow) {
		return model.SignalBuy, true, nil
	}
	return "", false, nil
}

// crossoverBuy holds the decision rule of CrossoverPolicy.
func crossoverBuy(prevClose, latestClose float64, prevFilts []float64, refPrev, refLatest float64, minBelow int) bool {
	below := 0
	for _, f := range prevFilts {
		if prevClose < f {
			below++
		}
	}
	crossed := prevClose < refPrev && latestClose > refLatest
	return below >= minBelow && crossed
}

// SlopePolicy emits BUY on a rising trend with an oversold oscillator and SELL
// on a falling trend with an overbought oscillator.
type SlopePolicy struct {
	Period     int
	RSIPeriod  int
	Oversold   float64
	Overbought float64
}

// NewSlopePolicy builds a single-period slope + oscillator threshold policy.
func NewSlopePolicy(period, rsiPeriod int, oversold, overbought float64) *SlopePolicy {
	return &SlopePolicy{Period: period, RSIPeriod: rsiPeriod, Oversold: oversold, Overbought: overbought}
}

func (p *SlopePolicy) Name() string { return PolicySlope }

func (p *SlopePolicy) MaxPeriod() int {
	if p.RSIPeriod+1 > p.Period {
		return p.RSIPeriod + 1
	}
	return p.Period
}

func (p *SlopePolicy) Classify(closes []float64) (model.SignalKind, bool, error) {
	n := len(closes)
	if n < 2 {
		return "", false, nil
	}
	filt, err := calculator.SuperSmoother(closes, p.Period)
	if err != nil {
		return "", false, fmt.Errorf("smooth %d: %w", p.Period, err)
	}
	rsi, err := calculator.RSISeries(closes, p.RSIPeriod)
	if err != nil {
		return "", false, fmt.Errorf("rsi %d: %w", p.RSIPeriod, err)
	}
	kind, ok := slopeSignal(filt[n-2], filt[n-1], rsi[n-1], p.Oversold, p.Overbought)
	return kind, ok, nil
}

// slopeSignal holds the decision rule of SlopePolicy. A NaN oscillator never fires.
func slopeSignal(prevFilt, latestFilt, latestRSI, oversold, overbought float64) (model.SignalKind, bool) {
	if math.IsNaN(latestRSI) {
		return "", false
	}
	switch {
	case latestFilt > prevFilt && latestRSI < oversold:
		return model.SignalBuy, true
	case latestFilt < prevFilt && latestRSI > overbought:
		return model.SignalSell, true
	}
	return "", false
}

// OscillatorCross detects RSI crossing down through its own moving average.
type OscillatorCross struct {
	RSIPeriod int
	Window    int
}

// MinBars is the number of bars needed before the cross can ever fire.
func (o *OscillatorCross) MinBars() int {
	return o.RSIPeriod + o.Window + 1
}

// CrossedDown reports whether RSI was above its mean on the previous bar and
// below it on the latest bar.
func (o *OscillatorCross) CrossedDown(closes []float64) (bool, error) {
	n := len(closes)
	if n < 2 {
		return false, nil
	}
	rsi, err := calculator.RSISeries(closes, o.RSIPeriod)
	if err != nil {
		return false, fmt.Errorf("rsi %d: %w", o.RSIPeriod, err)
	}
	ma, err := calculator.RollingMean(rsi, o.Window)
	if err != nil {
		return false, fmt.Errorf("rsi mean %d: %w", o.Window, err)
	}
	return crossedDown(rsi[n-2], ma[n-2], rsi[n-1], ma[n-1]), nil
}

// crossedDown compares with strict inequalities, so NaN operands never cross.
func crossedDown(prevA, prevB, latestA, latestB float64) bool {
	return prevA > prevB && latestA < latestB
}
