package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
)

// TaxBreakdownRow is a nested REPEATED record on receipt rows.
type TaxBreakdownRow struct {
	Rate      int64 `bigquery:"rate"`       // REQUIRED
	Subtotal  int64 `bigquery:"subtotal"`   // REQUIRED
	TaxAmount int64 `bigquery:"tax_amount"` // REQUIRED
	Total     int64 `bigquery:"total"`      // REQUIRED
}

type ReceiptRow struct {
	ReceiptID string `bigquery:"receipt_id"` // REQUIRED
	Status    string `bigquery:"status"`     // REQUIRED
	ImageURI  string `bigquery:"image_uri"`  // NULLABLE

	IssuerName      string               `bigquery:"issuer_name"`      // NULLABLE
	TNumber         bigquery.NullString  `bigquery:"t_number"`         // NULLABLE
	TransactionDate bigquery.NullDate    `bigquery:"transaction_date"` // DATE, NULLABLE
	Subtotal        int64                `bigquery:"subtotal_excluding_tax"`
	TotalAmount     int64                `bigquery:"total_amount"` // REQUIRED
	TaxBreakdown    []TaxBreakdownRow    `bigquery:"tax_breakdown"`
	Category        string               `bigquery:"category"`       // REQUIRED
	PaymentMethod   string               `bigquery:"payment_method"` // NULLABLE
	Confidence      bigquery.NullFloat64 `bigquery:"confidence"`     // NULLABLE

	NeedsReview bool   `bigquery:"needs_review"` // REQUIRED
	Notes       string `bigquery:"notes"`        // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"` // REQUIRED
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

// rowFromReceipt flattens a domain receipt into its warehouse shape.
func rowFromReceipt(rcpt *domain.Receipt) *ReceiptRow {
	row := &ReceiptRow{
		ReceiptID:     rcpt.ID,
		Status:        string(rcpt.Status),
		ImageURI:      rcpt.ImageURI,
		IssuerName:    rcpt.Data.IssuerName,
		Subtotal:      rcpt.Data.SubtotalExcludingTax,
		TotalAmount:   rcpt.Data.TotalAmount,
		Category:      string(rcpt.Data.SuggestedCategory),
		PaymentMethod: rcpt.Data.PaymentMethod,
		Confidence: bigquery.NullFloat64{
			Float64: rcpt.Confidence.Overall,
			Valid:   true,
		},
		NeedsReview: rcpt.NeedsReview,
		Notes:       rcpt.Notes,
		CreatedTS:   rcpt.CreatedAt,
		UpdatedTS: bigquery.NullTimestamp{
			Timestamp: rcpt.UpdatedAt,
			Valid:     !rcpt.UpdatedAt.IsZero(),
		},
	}
	if rcpt.Data.TNumber != nil {
		row.TNumber = bigquery.NullString{StringVal: *rcpt.Data.TNumber, Valid: true}
	}
	if !rcpt.Data.TransactionDate.IsZero() {
		row.TransactionDate = bigquery.NullDate{
			Date:  civil.DateOf(rcpt.Data.TransactionDate),
			Valid: true,
		}
	}
	for _, e := range rcpt.Data.TaxBreakdown {
		row.TaxBreakdown = append(row.TaxBreakdown, TaxBreakdownRow{
			Rate:      int64(e.Rate),
			Subtotal:  e.Subtotal,
			TaxAmount: e.TaxAmount,
			Total:     e.Total,
		})
	}
	return row
}

// receiptFromRow rebuilds a domain receipt from its warehouse shape.
// Category strings go back through Parse so rows written by an older
// enumeration still land on a canonical value.
func receiptFromRow(row *ReceiptRow) domain.Receipt {
	rcpt := domain.Receipt{
		ID:       row.ReceiptID,
		Status:   domain.ReceiptStatus(row.Status),
		ImageURI: row.ImageURI,
		Data: domain.ExtractedData{
			IssuerName:           row.IssuerName,
			SubtotalExcludingTax: row.Subtotal,
			TotalAmount:          row.TotalAmount,
			SuggestedCategory:    category.Parse(row.Category),
			PaymentMethod:        row.PaymentMethod,
		},
		NeedsReview: row.NeedsReview,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedTS,
	}
	if row.TNumber.Valid {
		t := row.TNumber.StringVal
		rcpt.Data.TNumber = &t
	}
	if row.TransactionDate.Valid {
		rcpt.Data.TransactionDate = row.TransactionDate.Date.In(time.UTC)
	}
	if row.Confidence.Valid {
		rcpt.Confidence.Overall = row.Confidence.Float64
	}
	if row.UpdatedTS.Valid {
		rcpt.UpdatedAt = row.UpdatedTS.Timestamp
	}
	for _, e := range row.TaxBreakdown {
		rcpt.Data.TaxBreakdown = append(rcpt.Data.TaxBreakdown, domain.TaxBreakdownEntry{
			Rate:      int(e.Rate),
			Subtotal:  e.Subtotal,
			TaxAmount: e.TaxAmount,
			Total:     e.Total,
		})
	}
	return rcpt
}
