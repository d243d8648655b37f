package model

// OwnershipStatus is the status stored for an owned symbol.
type OwnershipStatus string

const StatusOwned OwnershipStatus = "OWNED"

// OwnershipRecord is the durable set of owned symbols. Insertion order is kept
// so the persisted table is stable between runs.
type OwnershipRecord struct {
	order []string
	index map[string]struct{}
}

// NewOwnershipRecord builds a record from symbols, dropping blanks and duplicates.
func NewOwnershipRecord(symbols ...string) *OwnershipRecord {
	r := &OwnershipRecord{index: make(map[string]struct{}, len(symbols))}
	for _, s := range symbols {
		r.Add(s)
	}
	return r
}

// Owns reports whether symbol is currently owned.
func (r *OwnershipRecord) Owns(symbol string) bool {
	if r == nil || r.index == nil {
		return false
	}
	_, ok := r.index[symbol]
	return ok
}

// Add marks symbol as owned. It returns false if it was already owned.
func (r *OwnershipRecord) Add(symbol string) bool {
	if symbol == "" || r.Owns(symbol) {
		return false
	}
	if r.index == nil {
		r.index = make(map[string]struct{})
	}
	r.index[symbol] = struct{}{}
	r.order = append(r.order, symbol)
	return true
}

// Remove drops ownership of symbol. It returns false if it was not owned.
func (r *OwnershipRecord) Remove(symbol string) bool {
	if !r.Owns(symbol) {
		return false
	}
	delete(r.index, symbol)
	for i, s := range r.order {
		if s == symbol {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Symbols returns the owned symbols in insertion order.
func (r *OwnershipRecord) Symbols() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of owned symbols.
func (r *OwnershipRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
