package recorder

import (
	"time"

	"TrendSentinel/internal/model"
)

// RunSummary holds everything recorded about one scan.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Source     string // fetcher name
	Scanned    int
	Skipped    int            // symbols with no usable data
	Detected   []model.Signal // every detector signal, before reconciliation
	Accepted   []model.Signal
	Owned      int
	SaveError  string
}

// IsAccepted reports whether sig made it through reconciliation.
func (s *RunSummary) IsAccepted(sig model.Signal) bool {
	for _, a := range s.Accepted {
		if a.Symbol == sig.Symbol && a.Kind == sig.Kind && a.Horizon == sig.Horizon {
			return true
		}
	}
	return false
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordRun(run *RunSummary) error
	Close() error
}
