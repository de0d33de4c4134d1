package ledger

import (
	"reflect"
	"testing"
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
)

func receipt(id string, date time.Time, cat category.Category, total int64) domain.Receipt {
	return domain.Receipt{
		ID:     id,
		Status: domain.StatusCompleted,
		Data: domain.ExtractedData{
			IssuerName:        "issuer-" + id,
			TransactionDate:   date,
			SuggestedCategory: cat,
			TotalAmount:       total,
		},
	}
}

var (
	jan10 = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	jan11 = time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)
	feb02 = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	periodFrom = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodTo   = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
)

func sampleReceipts() []domain.Receipt {
	return []domain.Receipt{
		receipt("r3", jan11, category.Rent, 80_000),
		receipt("r1", jan10, category.Sales, 50_000),
		receipt("r2", jan10, category.Consumables, 3_000),
		receipt("r4", feb02, category.Purchases, 20_000),
		receipt("r5", feb02, category.Sales, 65_000),
	}
}

func TestBuild_RowOrderIsDeterministic(t *testing.T) {
	sheet, faults := Build(sampleReceipts(), periodFrom, periodTo)
	if len(faults) != 0 {
		t.Fatalf("unexpected faults: %v", faults)
	}

	wantOrder := []string{"r1", "r2", "r3", "r4", "r5"}
	if len(sheet.Rows) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(sheet.Rows), len(wantOrder))
	}
	for i, id := range wantOrder {
		if sheet.Rows[i].ReceiptID != id {
			t.Errorf("row %d = %s, want %s", i, sheet.Rows[i].ReceiptID, id)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	receipts := sampleReceipts()
	first, _ := Build(receipts, periodFrom, periodTo)
	second, _ := Build(receipts, periodFrom, periodTo)

	if !reflect.DeepEqual(first, second) {
		t.Error("building twice from the same snapshot produced different sheets")
	}
}

func TestBuild_SubtotalsAgreeWithRows(t *testing.T) {
	sheet, _ := Build(sampleReceipts(), periodFrom, periodTo)

	// Sum of rows per column must equal the grand total per column.
	fromRows := make(map[category.Column]int64)
	for _, row := range sheet.Rows {
		for col, v := range row.Amounts {
			fromRows[col] += v
		}
	}
	if !reflect.DeepEqual(fromRows, sheet.Grand.Columns) {
		t.Errorf("grand total %v does not match row sums %v", sheet.Grand.Columns, fromRows)
	}

	// Sum of daily subtotals must equal the grand total per column.
	fromDaily := make(map[category.Column]int64)
	for _, sub := range sheet.Daily {
		for col, v := range sub.Columns {
			fromDaily[col] += v
		}
	}
	if !reflect.DeepEqual(fromDaily, sheet.Grand.Columns) {
		t.Errorf("grand total %v does not match daily sums %v", sheet.Grand.Columns, fromDaily)
	}

	// And the same through the monthly buckets.
	fromMonthly := make(map[category.Column]int64)
	for _, sub := range sheet.Monthly {
		for col, v := range sub.Columns {
			fromMonthly[col] += v
		}
	}
	if !reflect.DeepEqual(fromMonthly, sheet.Grand.Columns) {
		t.Errorf("grand total %v does not match monthly sums %v", sheet.Grand.Columns, fromMonthly)
	}
}

func TestBuild_DerivedTotals(t *testing.T) {
	sheet, _ := Build(sampleReceipts(), periodFrom, periodTo)

	grand := sheet.Grand
	if grand.TotalIncome != 115_000 {
		t.Errorf("TotalIncome = %d, want 115000", grand.TotalIncome)
	}
	if grand.TotalExpenses != 83_000 {
		t.Errorf("TotalExpenses = %d, want 83000", grand.TotalExpenses)
	}
	// income − expenses − purchases
	if grand.NetAmount != 115_000-83_000-20_000 {
		t.Errorf("NetAmount = %d, want %d", grand.NetAmount, 115_000-83_000-20_000)
	}
}

func TestBuild_SparseColumns(t *testing.T) {
	sheet, _ := Build([]domain.Receipt{
		receipt("r1", jan10, category.Sales, 10_000),
	}, periodFrom, periodTo)

	day := sheet.Daily[DayKey(jan10)]
	if day == nil {
		t.Fatal("missing daily subtotal")
	}
	if len(day.Columns) != 1 {
		t.Errorf("expected exactly one populated column, got %v", day.Columns)
	}
	if _, ok := day.Columns["rent"]; ok {
		t.Error("untouched column must be absent, not zero")
	}
}

func TestBuild_UnmappedCategoryFallsToMiscellaneous(t *testing.T) {
	sheet, _ := Build([]domain.Receipt{
		receipt("r1", jan10, category.Uncategorized, 5_000),
	}, periodFrom, periodTo)

	if got := sheet.Grand.Columns[category.ColumnMiscellaneous]; got != 5_000 {
		t.Errorf("miscellaneous column = %d, want 5000", got)
	}
}

func TestBuild_ReportsDatelessReceiptsAsFaults(t *testing.T) {
	receipts := sampleReceipts()
	receipts = append(receipts, receipt("r0", time.Time{}, category.Sales, 9_000))

	sheet, faults := Build(receipts, periodFrom, periodTo)

	if len(sheet.Rows) != 5 {
		t.Errorf("dateless receipt must not become a row, got %d rows", len(sheet.Rows))
	}
	if len(faults) != 1 || faults[0].ReceiptID != "r0" {
		t.Fatalf("faults = %v, want one fault for r0", faults)
	}
	if faults[0].Reason == "" {
		t.Error("fault must carry a reason")
	}
}

func TestBuild_OutOfRangeReceiptStillGetsARow(t *testing.T) {
	dec20 := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	receipts := []domain.Receipt{
		receipt("r1", dec20, category.Consumables, 4_000),
		receipt("r2", jan10, category.Sales, 50_000),
	}

	// r1 predates the requested period; the period only bounds labeling,
	// so the row must still land in the buckets of its own date.
	sheet, faults := Build(receipts, periodFrom, periodTo)
	if len(faults) != 0 {
		t.Fatalf("unexpected faults: %v", faults)
	}
	if len(sheet.Rows) != 2 || sheet.Rows[0].ReceiptID != "r1" {
		t.Fatalf("rows = %v, want r1 then r2", sheet.Rows)
	}

	day := sheet.Daily[DayKey(dec20)]
	if day == nil {
		t.Fatal("out-of-range receipt missing from its daily bucket")
	}
	if got := day.Columns[category.ColumnFor(category.Consumables)]; got != 4_000 {
		t.Errorf("daily consumables = %d, want 4000", got)
	}
	month := sheet.Monthly[MonthKey(dec20)]
	if month == nil {
		t.Fatal("out-of-range receipt missing from its monthly bucket")
	}
	if got := sheet.Grand.Columns[category.ColumnFor(category.Consumables)]; got != 4_000 {
		t.Errorf("grand consumables = %d, want 4000", got)
	}
}

func TestBuild_EmptySnapshot(t *testing.T) {
	sheet, faults := Build(nil, periodFrom, periodTo)
	if len(sheet.Rows) != 0 || len(faults) != 0 {
		t.Fatalf("unexpected rows or faults: %v %v", sheet.Rows, faults)
	}
	if sheet.Grand == nil || sheet.Grand.NetAmount != 0 {
		t.Error("empty sheet still needs a zero grand total")
	}
}
