package model

// Sentinel values written instead of an empty table.
const (
	SentinelSymbol   = "NONE"
	SentinelNoSignal = "NO SIGNAL"
	SentinelEmpty    = "EMPTY"
)

// ReportRecord is one row of the Signals table.
type ReportRecord struct {
	Symbol string `json:"stock"`
	Kind   string `json:"signal"`
}

// OwnershipRow is one row of the Portfolio table.
type OwnershipRow struct {
	Symbol string `json:"stock"`
	Status string `json:"status"`
}

// Report is the output of one run, as handed to the ownership store.
type Report struct {
	Portfolio []OwnershipRow
	Signals   []ReportRecord
}
