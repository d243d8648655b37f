package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	now := time.Now()
	monthly := model.Signal{Symbol: "ACME.NS", Kind: model.SignalBuy, Horizon: model.IntervalMonthly, Price: 120, BarTime: now}
	weekly := model.Signal{Symbol: "ACME.NS", Kind: model.SignalBuy, Horizon: model.IntervalWeekly, Price: 120, BarTime: now}

	run := &RunSummary{
		RunID:      "run-1",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
		Source:     "mock",
		Scanned:    3,
		Skipped:    1,
		Detected:   []model.Signal{monthly, weekly},
		Accepted:   []model.Signal{monthly},
		Owned:      1,
	}
	require.NoError(t, r.RecordRun(run))

	var scanned, detected, accepted int
	require.NoError(t, r.db.QueryRow(`SELECT scanned, detected, accepted FROM runs WHERE run_id = ?`, "run-1").
		Scan(&scanned, &detected, &accepted))
	assert.Equal(t, 3, scanned)
	assert.Equal(t, 2, detected)
	assert.Equal(t, 1, accepted)

	rows, err := r.db.Query(`SELECT horizon, accepted FROM run_signals WHERE run_id = ? ORDER BY id`, "run-1")
	require.NoError(t, err)
	defer rows.Close()
	got := map[string]int{}
	for rows.Next() {
		var h string
		var a int
		require.NoError(t, rows.Scan(&h, &a))
		got[h] = a
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int{"1mo": 1, "1wk": 0}, got)

	// run_id is unique
	assert.Error(t, r.RecordRun(run))
}

func TestSQLiteRecorder_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&RunSummary{RunID: "a", StartedAt: time.Now(), FinishedAt: time.Now()}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRun(&RunSummary{}))
	assert.NoError(t, rec.Close())
}
