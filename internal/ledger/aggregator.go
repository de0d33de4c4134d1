package ledger

import (
	"sort"
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
)

// Build transforms an immutable snapshot of receipts into a ledger sheet
// for the given period. The period only labels the sheet and its grand
// total; rows are never filtered by it, so a receipt dated outside the period
// still lands in the day and month buckets of its own date.
//
// Receipts without a usable date cannot be keyed into any bucket; they are
// excluded from the sheet and reported as faults. Aggregation of the
// remaining rows proceeds. Building twice from the same snapshot yields
// deeply equal sheets.
func Build(receipts []domain.Receipt, from, to time.Time) (*Sheet, []Fault) {
	rows := make([]Row, 0, len(receipts))
	var faults []Fault

	for _, rcpt := range receipts {
		if rcpt.Data.TransactionDate.IsZero() {
			faults = append(faults, Fault{ReceiptID: rcpt.ID, Reason: "missing transaction date"})
			continue
		}
		rows = append(rows, mapRow(rcpt))
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].ReceiptID < rows[j].ReceiptID
	})
	sort.Slice(faults, func(i, j int) bool {
		return faults[i].ReceiptID < faults[j].ReceiptID
	})

	sheet := &Sheet{
		From:    from,
		To:      to,
		Rows:    rows,
		Daily:   make(map[string]*Subtotal),
		Monthly: make(map[string]*Subtotal),
	}

	daily := make(map[string][]Row)
	monthly := make(map[string][]Row)
	for _, row := range rows {
		daily[DayKey(row.Date)] = append(daily[DayKey(row.Date)], row)
		monthly[MonthKey(row.Date)] = append(monthly[MonthKey(row.Date)], row)
	}
	for key, group := range daily {
		sheet.Daily[key] = subtotal(key, group)
	}
	for key, group := range monthly {
		sheet.Monthly[key] = subtotal(key, group)
	}

	// The grand total sums all rows directly. By construction this equals
	// the sum of the daily subtotals; aggregator_test pins that property.
	sheet.Grand = subtotal("total", rows)
	sheet.Grand.From = from
	sheet.Grand.To = to

	return sheet, faults
}

// mapRow maps one receipt onto its single ledger column. A category with no
// table entry is not an error; it falls to the miscellaneous column.
func mapRow(rcpt domain.Receipt) Row {
	col := category.ColumnFor(rcpt.Data.SuggestedCategory)
	return Row{
		ReceiptID:   rcpt.ID,
		Date:        rcpt.Data.TransactionDate,
		Description: rcpt.Data.IssuerName,
		Amounts:     map[category.Column]int64{col: rcpt.Data.TotalAmount},
	}
}

// subtotal sums every column that appears in at least one row of the group.
// Columns absent from every row stay absent rather than showing up as zero.
func subtotal(label string, rows []Row) *Subtotal {
	st := &Subtotal{
		Label:   label,
		Columns: make(map[category.Column]int64),
	}
	for i, row := range rows {
		if i == 0 || row.Date.Before(st.From) {
			st.From = row.Date
		}
		if row.Date.After(st.To) {
			st.To = row.Date
		}
		for col, v := range row.Amounts {
			st.Columns[col] += v
		}
	}

	for col, v := range st.Columns {
		switch category.KindOf(col) {
		case category.KindIncome:
			st.TotalIncome += v
		case category.KindExpense:
			st.TotalExpenses += v
		}
	}
	st.NetAmount = st.TotalIncome - st.TotalExpenses - st.Columns[category.ColumnPurchases]

	return st
}
