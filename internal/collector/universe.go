package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyUniverse is returned when the symbol list yields no symbols.
var ErrEmptyUniverse = errors.New("symbol universe is empty")

// LoadUniverse reads the symbol list from a CSV file.
func LoadUniverse(path, column, suffix string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()
	return ReadUniverse(f, column, suffix)
}

// ReadUniverse reads the named column of a CSV with a header row. Blank cells
// are skipped, duplicates keep their first position and suffix is appended to
// each symbol that does not already carry it.
func ReadUniverse(r io.Reader, column, suffix string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyUniverse
	}
	if err != nil {
		return nil, fmt.Errorf("read universe header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("universe column %q not found", column)
	}

	var symbols []string
	seen := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read universe: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(rec[col]))
		if sym == "" {
			continue
		}
		if suffix != "" && !strings.HasSuffix(sym, strings.ToUpper(suffix)) {
			sym += suffix
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyUniverse
	}
	return symbols, nil
}
