package portfolio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TrendSentinel/internal/model"
)

// ErrPersistenceUnreadable is reported when the ownership file is missing or corrupt.
var ErrPersistenceUnreadable = errors.New("ownership store unreadable")

// Store persists the ownership record and the run's report.
type Store interface {
	// Load never fails: a missing or corrupt store yields an empty record.
	Load(ctx context.Context) *model.OwnershipRecord
	// Save replaces the whole store with the report's Portfolio and Signals tables.
	Save(ctx context.Context, report model.Report) error
	Path() string
}

// NewStore picks the store implementation for kind ("xlsx" or "json"). An
// empty kind is inferred from the file extension.
func NewStore(kind, path string) (Store, error) {
	if kind == "" {
		kind = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch kind {
	case "xlsx":
		return NewXLSXStore(path), nil
	case "json":
		return NewJSONStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// ownedFromRows rebuilds a record from persisted rows, skipping the sentinel row.
func ownedFromRows(rows []model.OwnershipRow) *model.OwnershipRecord {
	rec := model.NewOwnershipRecord()
	for _, r := range rows {
		sym := strings.TrimSpace(r.Symbol)
		if sym == "" || sym == model.SentinelSymbol {
			continue
		}
		if r.Status != "" && r.Status != string(model.StatusOwned) {
			continue
		}
		rec.Add(sym)
	}
	return rec
}

// writeAtomic writes path through a temp file in the same directory and a rename.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
