package portfolio

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"TrendSentinel/internal/model"
)

// Sheet names and headers of the workbook.
const (
	SheetPortfolio = "Portfolio"
	SheetSignals   = "Signals"
)

var (
	portfolioHeader = []interface{}{"Stock", "Status"}
	signalsHeader   = []interface{}{"Stock", "Signal"}
)

// XLSXStore keeps ownership and the last run's signals in a workbook with two
// sheets.
type XLSXStore struct {
	path string
}

// NewXLSXStore creates a store backed by the workbook at path.
func NewXLSXStore(path string) *XLSXStore {
	return &XLSXStore{path: path}
}

func (s *XLSXStore) Path() string { return s.path }

// Load reads the Portfolio sheet. Missing or unreadable workbooks yield an
// empty record.
func (s *XLSXStore) Load(_ context.Context) *model.OwnershipRecord {
	rows, err := s.readPortfolio()
	if err != nil {
		logrus.WithField("path", s.path).Warnf("load portfolio: %v, starting empty", err)
		return model.NewOwnershipRecord()
	}
	rec := ownedFromRows(rows)
	logrus.WithField("path", s.path).Infof("loaded portfolio: %d owned", rec.Len())
	return rec
}

func (s *XLSXStore) readPortfolio() ([]model.OwnershipRow, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnreadable, err)
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrPersistenceUnreadable, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetPortfolio)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrPersistenceUnreadable, SheetPortfolio, err)
	}
	out := make([]model.OwnershipRow, 0, len(rows))
	for i, r := range rows {
		if i == 0 || len(r) == 0 {
			continue // header
		}
		row := model.OwnershipRow{Symbol: r[0]}
		if len(r) > 1 {
			row.Status = r[1]
		}
		out = append(out, row)
	}
	return out, nil
}

// Save overwrites the workbook with the Portfolio and Signals sheets.
func (s *XLSXStore) Save(_ context.Context, report model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPortfolio); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSignals); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	portfolioRows := make([][]interface{}, 0, len(report.Portfolio))
	for _, r := range report.Portfolio {
		portfolioRows = append(portfolioRows, []interface{}{r.Symbol, r.Status})
	}
	if err := writeSheet(f, SheetPortfolio, portfolioHeader, portfolioRows); err != nil {
		return err
	}

	signalRows := make([][]interface{}, 0, len(report.Signals))
	for _, r := range report.Signals {
		signalRows = append(signalRows, []interface{}{r.Symbol, r.Kind})
	}
	if err := writeSheet(f, SheetSignals, signalsHeader, signalRows); err != nil {
		return err
	}

	return writeAtomic(s.path, func(tmp *os.File) error {
		if err := f.Write(tmp); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil
	})
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
