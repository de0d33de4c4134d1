// Package ledger reconstructs the statutory simplified-bookkeeping sheet
// (帳簿) from an unordered collection of accepted receipts: one row per
// receipt, daily and monthly subtotals, and a grand total. Sheets are built
// wholesale from a snapshot on every export and never mutated incrementally,
// so row data and subtotals cannot drift apart.
package ledger

import (
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
)

// Row is one ledger line derived from one receipt. Amounts is sparse and
// holds exactly one populated column, chosen by the category → column table.
type Row struct {
	ReceiptID   string                    `json:"receipt_id"`
	Date        time.Time                 `json:"date"`
	Description string                    `json:"description"`
	Amounts     map[category.Column]int64 `json:"amounts"`
}

// Amount returns the row's single populated column and value.
func (r Row) Amount() (category.Column, int64) {
	for col, v := range r.Amounts {
		return col, v
	}
	return "", 0
}

// Subtotal aggregates a set of rows over a date range. Columns is sparse:
// a column appears only if at least one contributing row populated it, so
// "no data" stays distinguishable from "sums to zero".
type Subtotal struct {
	Label string    `json:"label"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`

	Columns map[category.Column]int64 `json:"columns"`

	// Derived totals, computed here and nowhere else.
	TotalIncome   int64 `json:"total_income"`   // sales + misc income
	TotalExpenses int64 `json:"total_expenses"` // Σ expense columns
	NetAmount     int64 `json:"net_amount"`     // income − expenses − purchases
}

// Sheet is one fully built ledger: rows sorted by date (ties broken by
// receipt id for determinism), subtotals keyed by day ("2006-01-02") and
// month ("2006-01"), and one grand total.
type Sheet struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Rows    []Row                `json:"rows"`
	Daily   map[string]*Subtotal `json:"daily"`
	Monthly map[string]*Subtotal `json:"monthly"`
	Grand   *Subtotal            `json:"grand_total"`
}

// Fault identifies a receipt that could not be mapped onto a ledger row.
// The aggregator never drops a receipt silently; every exclusion is
// reported here so callers can fix or exclude the offending record.
type Fault struct {
	ReceiptID string `json:"receipt_id"`
	Reason    string `json:"reason"`
}

// DayKey formats a date as a daily bucket key.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

// MonthKey formats a date as a monthly bucket key.
func MonthKey(t time.Time) string { return t.Format("2006-01") }
