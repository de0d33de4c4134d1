package export

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/ledger"
)

func buildSampleSheet(t *testing.T) *ledger.Sheet {
	t.Helper()

	jan10 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb02 := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	receipts := []domain.Receipt{
		{
			ID:     "r1",
			Status: domain.StatusCompleted,
			Data: domain.ExtractedData{
				IssuerName:        "クライアントA",
				TransactionDate:   jan10,
				SuggestedCategory: category.Sales,
				TotalAmount:       10_000,
			},
		},
		{
			ID:     "r2",
			Status: domain.StatusCompleted,
			Data: domain.ExtractedData{
				IssuerName:        "不動産B",
				TransactionDate:   jan10,
				SuggestedCategory: category.Rent,
				TotalAmount:       4_000,
			},
		},
		{
			ID:     "r3",
			Status: domain.StatusCompleted,
			Data: domain.ExtractedData{
				IssuerName:        "クライアントC",
				TransactionDate:   feb02,
				SuggestedCategory: category.Sales,
				TotalAmount:       5_000,
			},
		},
	}

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	sheet, faults := ledger.Build(receipts, from, to)
	if len(faults) != 0 {
		t.Fatalf("unexpected faults: %v", faults)
	}
	return sheet
}

func TestWorkbookLayout(t *testing.T) {
	sheet := buildSampleSheet(t)

	f, err := Workbook(sheet)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	get := func(ref string) string {
		v, err := f.GetCellValue(sheetName, ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", ref, err)
		}
		return v
	}

	// Header: fixed columns then the statutory labels.
	if get("A1") != "日付" || get("B1") != "摘要" {
		t.Errorf("fixed headers = %q, %q", get("A1"), get("B1"))
	}
	if get("C1") != "売上" {
		t.Errorf("first amount header = %q, want 売上", get("C1"))
	}

	// First receipt row: date, description, sales amount.
	if get("A2") != "2026-01-10" {
		t.Errorf("A2 = %q", get("A2"))
	}
	if get("B2") != "クライアントA" {
		t.Errorf("B2 = %q", get("B2"))
	}
	if get("C2") != "10000" {
		t.Errorf("C2 = %q, want 10000", get("C2"))
	}

	// Rent sits six columns into the amount block (sales, misc_income,
	// purchases, wages, outsourcing, rent).
	if get("H3") != "4000" {
		t.Errorf("H3 = %q, want 4000", get("H3"))
	}

	// Rows 4 and 5 are the daily and monthly subtotal lines for January.
	if get("B4") != "2026-01-10" {
		t.Errorf("B4 = %q, want daily subtotal label", get("B4"))
	}
	if get("C4") != "10000" {
		t.Errorf("daily sales subtotal = %q", get("C4"))
	}
	if get("B5") != "2026-01" {
		t.Errorf("B5 = %q, want monthly subtotal label", get("B5"))
	}

	// Row 6 is the February receipt, rows 7-8 its subtotals, row 9 the
	// grand total.
	if get("B6") != "クライアントC" {
		t.Errorf("B6 = %q", get("B6"))
	}
	if get("B9") != "total" {
		t.Errorf("B9 = %q, want grand total label", get("B9"))
	}
	if get("C9") != "15000" {
		t.Errorf("grand sales total = %q, want 15000", get("C9"))
	}

	// Net amount column sits right after the amount block: income 15000
	// minus expenses 4000.
	netRef, err := excelize.CoordinatesToCellName(firstAmountCol+len(category.Columns()), 9)
	if err != nil {
		t.Fatalf("CoordinatesToCellName: %v", err)
	}
	if get(netRef) != "11000" {
		t.Errorf("net amount = %q, want 11000", get(netRef))
	}
}

func TestWorkbookEmptySheet(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	sheet, _ := ledger.Build(nil, from, to)

	f, err := Workbook(sheet)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue(sheetName, "A1"); v != "日付" {
		t.Errorf("A1 = %q", v)
	}
}
