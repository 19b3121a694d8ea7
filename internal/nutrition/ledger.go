// internal/nutrition/ledger.go
package nutrition

import "mcp-nutricalci/internal/models"

// Ledger keeps the running totals for the current day. It only stores the
// sum, so a logged item cannot be taken back individually.
type Ledger struct {
	totals models.NutrientVector
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Add merges v into the totals. Goals do not cap the totals.
func (l *Ledger) Add(v models.NutrientVector) {
	l.totals = l.totals.Add(v)
}

func (l *Ledger) Reset() {
	l.totals = models.NutrientVector{}
}

func (l *Ledger) Totals() models.NutrientVector {
	return l.totals
}
