package strategy

import (
	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// Engine runs every configured detector over a symbol's series.
type Engine struct {
	Detectors []*Detector
}

// NewEngine creates an Engine.
func NewEngine(detectors ...*Detector) *Engine {
	return &Engine{Detectors: detectors}
}

// Evaluate returns the signals of all detectors whose horizon is present in
// series. Detector errors are logged and count as no signal.
func (e *Engine) Evaluate(symbol string, series map[model.Interval]model.PriceSeries) []model.Signal {
	var signals []model.Signal
	for _, d := range e.Detectors {
		s, ok := series[d.Horizon]
		if !ok {
			continue
		}
		log := logrus.WithFields(logrus.Fields{"symbol": symbol, "interval": d.Horizon})
		if s.Len() < d.MinBars {
			log.Debugf("insufficient history: %d bars, need %d", s.Len(), d.MinBars)
			continue
		}
		sig, err := d.Detect(s)
		if err != nil {
			log.Warnf("detect: %v", err)
			continue
		}
		if sig != nil {
			log.Infof("%s signal at %.2f", sig.Kind, sig.Price)
			signals = append(signals, *sig)
		}
	}
	return signals
}

// Intervals returns the distinct horizons the engine needs, with the lookback
// of the first detector for each.
func (e *Engine) Intervals() map[model.Interval]string {
	out := make(map[model.Interval]string, len(e.Detectors))
	for _, d := range e.Detectors {
		if _, ok := out[d.Horizon]; !ok {
			out[d.Horizon] = d.Lookback
		}
	}
	return out
}
