package bigquery

import (
	"testing"
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
)

func TestReceiptRowRoundTrip(t *testing.T) {
	tnum := "T1234567890123"
	src := &domain.Receipt{
		ID:       "r-1",
		Status:   domain.StatusCompleted,
		ImageURI: "gs://b/receipts/r-1.jpg",
		Data: domain.ExtractedData{
			IssuerName:           "株式会社テスト商事",
			TNumber:              &tnum,
			TransactionDate:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			SubtotalExcludingTax: 9091,
			TotalAmount:          10000,
			SuggestedCategory:    category.Consumables,
			TaxBreakdown: []domain.TaxBreakdownEntry{
				{Rate: 10, Subtotal: 9091, TaxAmount: 909, Total: 10000},
			},
		},
		Confidence:  domain.ConfidenceScore{Overall: 0.93},
		NeedsReview: false,
		Notes:       "",
		CreatedAt:   time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 2, 10, 9, 1, 0, 0, time.UTC),
	}

	got := receiptFromRow(rowFromReceipt(src))

	if got.ID != src.ID || got.Status != src.Status || got.ImageURI != src.ImageURI {
		t.Errorf("identity fields changed: %+v", got)
	}
	if got.Data.TNumber == nil || *got.Data.TNumber != tnum {
		t.Errorf("TNumber = %v", got.Data.TNumber)
	}
	if !got.Data.TransactionDate.Equal(src.Data.TransactionDate) {
		t.Errorf("TransactionDate = %v, want %v", got.Data.TransactionDate, src.Data.TransactionDate)
	}
	if got.Data.SuggestedCategory != category.Consumables {
		t.Errorf("SuggestedCategory = %v", got.Data.SuggestedCategory)
	}
	if len(got.Data.TaxBreakdown) != 1 || got.Data.TaxBreakdown[0].TaxAmount != 909 {
		t.Errorf("TaxBreakdown = %+v", got.Data.TaxBreakdown)
	}
	if got.Confidence.Overall != 0.93 {
		t.Errorf("Confidence = %v", got.Confidence.Overall)
	}
}

func TestReceiptFromRowNullableFields(t *testing.T) {
	row := rowFromReceipt(&domain.Receipt{
		ID:     "r-2",
		Status: domain.StatusCompleted,
		Data: domain.ExtractedData{
			IssuerName:        "屋号なし商店",
			TotalAmount:       500,
			SuggestedCategory: category.Uncategorized,
		},
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	got := receiptFromRow(row)
	if got.Data.TNumber != nil {
		t.Errorf("TNumber = %v, want nil", got.Data.TNumber)
	}
	if !got.Data.TransactionDate.IsZero() {
		t.Errorf("TransactionDate = %v, want zero", got.Data.TransactionDate)
	}
	if !got.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt = %v, want zero", got.UpdatedAt)
	}
}
