package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// jsonState is the on-disk shape of the JSON store.
type jsonState struct {
	Portfolio []model.OwnershipRow `json:"portfolio"`
	Signals   []model.ReportRecord `json:"signals"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// JSONStore keeps ownership and the last run's signals in a JSON state file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store backed by the JSON file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Path() string { return s.path }

// Load reads the state file. A missing or corrupt file yields an empty record.
func (s *JSONStore) Load(_ context.Context) *model.OwnershipRecord {
	state, err := s.readState()
	if err != nil {
		logrus.WithField("path", s.path).Warnf("load portfolio: %v, starting empty", err)
		return model.NewOwnershipRecord()
	}
	rec := ownedFromRows(state.Portfolio)
	logrus.WithField("path", s.path).Infof("loaded portfolio: %d owned", rec.Len())
	return rec
}

func (s *JSONStore) readState() (*jsonState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnreadable, err)
	}
	var state jsonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrPersistenceUnreadable, err)
	}
	return &state, nil
}

// Save writes the whole state file.
func (s *JSONStore) Save(_ context.Context, report model.Report) error {
	state := jsonState{
		Portfolio: report.Portfolio,
		Signals:   report.Signals,
		UpdatedAt: time.Now(),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return writeAtomic(s.path, func(tmp *os.File) error {
		_, err := tmp.Write(data)
		return err
	})
}
