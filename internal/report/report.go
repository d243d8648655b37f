// Package report turns a run's accepted signals and ownership into the two
// tables handed to the ownership store. Neither table is ever empty.
package report

import "TrendSentinel/internal/model"

// Assemble builds the run report.
func Assemble(accepted []model.Signal, owned *model.OwnershipRecord) model.Report {
	return model.Report{
		Portfolio: OwnershipRows(owned),
		Signals:   SignalRows(accepted),
	}
}

// SignalRows returns one row per accepted signal, or the NO SIGNAL sentinel row.
func SignalRows(accepted []model.Signal) []model.ReportRecord {
	if len(accepted) == 0 {
		return []model.ReportRecord{{Symbol: model.SentinelSymbol, Kind: model.SentinelNoSignal}}
	}
	rows := make([]model.ReportRecord, 0, len(accepted))
	for _, s := range accepted {
		rows = append(rows, model.ReportRecord{Symbol: s.Symbol, Kind: string(s.Kind)})
	}
	return rows
}

// OwnershipRows returns one row per owned symbol, or the EMPTY sentinel row.
func OwnershipRows(owned *model.OwnershipRecord) []model.OwnershipRow {
	if owned.Len() == 0 {
		return []model.OwnershipRow{{Symbol: model.SentinelSymbol, Status: model.SentinelEmpty}}
	}
	syms := owned.Symbols()
	rows := make([]model.OwnershipRow, 0, len(syms))
	for _, s := range syms {
		rows = append(rows, model.OwnershipRow{Symbol: s, Status: string(model.StatusOwned)})
	}
	return rows
}
