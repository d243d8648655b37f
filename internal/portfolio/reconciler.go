package portfolio

import (
	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// Reconcile applies signals to owned and returns the accepted ones. All BUY
// signals are applied before any SELL signal, each pass in input order:
//   - BUY is accepted only if the symbol is not owned; it then becomes owned.
//   - SELL is accepted only if the symbol is owned; it then stops being owned.
//
// A symbol bought in this run can therefore be sold in the same run.
// Dropped signals are not errors. owned is updated in place; a nil record is
// treated as empty and the resulting ownership is discarded.
func Reconcile(owned *model.OwnershipRecord, signals []model.Signal) []model.Signal {
	if owned == nil {
		owned = model.NewOwnershipRecord()
	}
	var accepted []model.Signal

	for _, s := range signals {
		if s.Kind != model.SignalBuy {
			continue
		}
		if owned.Add(s.Symbol) {
			accepted = append(accepted, s)
			continue
		}
		logrus.WithField("symbol", s.Symbol).Debugf("buy dropped, already owned (%s)", s.Horizon)
	}

	for _, s := range signals {
		if s.Kind != model.SignalSell {
			continue
		}
		if owned.Remove(s.Symbol) {
			accepted = append(accepted, s)
			continue
		}
		logrus.WithField("symbol", s.Symbol).Debugf("sell dropped, not owned (%s)", s.Horizon)
	}

	return accepted
}
