// Package export renders a built ledger sheet as an Excel workbook in the
// layout accountants expect for blue-return bookkeeping: one line per
// receipt, a subtotal line after each day and month, and a grand total.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/ledger"
)

const sheetName = "帳簿"

// fixed leading columns before the per-category amount columns
const (
	colDate = iota + 1
	colDescription
	firstAmountCol
)

// Workbook renders the ledger sheet into a new xlsx file. Callers own the
// returned file and should Close it after writing.
func Workbook(sheet *ledger.Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("Workbook: renaming sheet: %w", err)
	}

	cols := category.Columns()
	if err := writeHeader(f, cols); err != nil {
		return nil, err
	}

	rowNum := 2
	var prevDay, prevMonth string
	for _, row := range sheet.Rows {
		day := ledger.DayKey(row.Date)
		month := ledger.MonthKey(row.Date)

		if prevDay != "" && day != prevDay {
			if err := writeSubtotal(f, cols, rowNum, sheet.Daily[prevDay]); err != nil {
				return nil, err
			}
			rowNum++
		}
		if prevMonth != "" && month != prevMonth {
			if err := writeSubtotal(f, cols, rowNum, sheet.Monthly[prevMonth]); err != nil {
				return nil, err
			}
			rowNum++
		}

		if err := writeRow(f, cols, rowNum, row); err != nil {
			return nil, err
		}
		rowNum++
		prevDay, prevMonth = day, month
	}

	if prevDay != "" {
		if err := writeSubtotal(f, cols, rowNum, sheet.Daily[prevDay]); err != nil {
			return nil, err
		}
		rowNum++
		if err := writeSubtotal(f, cols, rowNum, sheet.Monthly[prevMonth]); err != nil {
			return nil, err
		}
		rowNum++
	}

	if sheet.Grand != nil {
		if err := writeSubtotal(f, cols, rowNum, sheet.Grand); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Write renders the sheet and streams the workbook to w.
func Write(sheet *ledger.Sheet, w io.Writer) error {
	f, err := Workbook(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("Write: writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, cols []category.Column) error {
	if err := setCell(f, colDate, 1, "日付"); err != nil {
		return err
	}
	if err := setCell(f, colDescription, 1, "摘要"); err != nil {
		return err
	}
	for i, col := range cols {
		if err := setCell(f, firstAmountCol+i, 1, category.Label(col)); err != nil {
			return err
		}
	}
	if err := setCell(f, firstAmountCol+len(cols), 1, "差引金額"); err != nil {
		return err
	}
	return nil
}

func writeRow(f *excelize.File, cols []category.Column, rowNum int, row ledger.Row) error {
	if err := setCell(f, colDate, rowNum, ledger.DayKey(row.Date)); err != nil {
		return err
	}
	if err := setCell(f, colDescription, rowNum, row.Description); err != nil {
		return err
	}
	for i, col := range cols {
		v, ok := row.Amounts[col]
		if !ok {
			continue
		}
		if err := setCell(f, firstAmountCol+i, rowNum, v); err != nil {
			return err
		}
	}
	return nil
}

func writeSubtotal(f *excelize.File, cols []category.Column, rowNum int, sub *ledger.Subtotal) error {
	if sub == nil {
		return nil
	}
	if err := setCell(f, colDescription, rowNum, sub.Label); err != nil {
		return err
	}
	for i, col := range cols {
		v, ok := sub.Columns[col]
		if !ok {
			// Columns no receipt touched stay blank, not zero.
			continue
		}
		if err := setCell(f, firstAmountCol+i, rowNum, v); err != nil {
			return err
		}
	}
	return setCell(f, firstAmountCol+len(cols), rowNum, sub.NetAmount)
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell coordinates (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
