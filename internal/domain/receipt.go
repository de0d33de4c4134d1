// Package domain holds the core value types shared by the extraction
// pipeline, the validators and the ledger aggregator. Amounts are Japanese
// yen and are always whole int64 values; there is no sub-unit currency.
package domain

import (
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
)

// TaxBreakdownEntry is one per-rate slice of a receipt's consumption tax.
// Mixed-rate receipts (8% reduced rate plus 10% standard rate) carry one
// entry per rate.
type TaxBreakdownEntry struct {
	Rate      int   `json:"rate"`       // percent, expected to be 8 or 10
	Subtotal  int64 `json:"subtotal"`   // pre-tax amount taxed at this rate
	TaxAmount int64 `json:"tax_amount"` // tax charged at this rate
	Total     int64 `json:"total"`      // Subtotal + TaxAmount
}

// LineItem is one purchased item as read off the receipt. Optional; many
// receipts only yield totals.
type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// ExtractedData is the structured result of one OCR extraction pass over a
// receipt image. It is immutable once produced; validation annotates a
// Receipt around it rather than mutating it.
type ExtractedData struct {
	IssuerName string `json:"issuer_name"`

	// TNumber is the qualified-invoice-issuer registration number
	// ("T" + 13 digits). Nil when the receipt carries none, which is
	// legitimate for issuers below the registration threshold.
	TNumber *string `json:"t_number"`

	// TransactionDate is the purchase date. The zero value means the
	// extractor could not read a date.
	TransactionDate time.Time `json:"transaction_date"`

	SubtotalExcludingTax int64               `json:"subtotal_excluding_tax"`
	TaxBreakdown         []TaxBreakdownEntry `json:"tax_breakdown"`
	TotalAmount          int64               `json:"total_amount"`

	SuggestedCategory  category.Category `json:"suggested_category"`
	CategoryConfidence float64           `json:"category_confidence"`

	LineItems     []LineItem `json:"line_items,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
}

// ConfidenceField names a per-field confidence slot.
type ConfidenceField string

const (
	FieldIssuer       ConfidenceField = "issuer"
	FieldTNumber      ConfidenceField = "t_number"
	FieldDate         ConfidenceField = "date"
	FieldTotal        ConfidenceField = "total"
	FieldTaxBreakdown ConfidenceField = "tax_breakdown"
	FieldCategory     ConfidenceField = "category"
)

// ConfidenceScore is produced upstream by the extractor and consumed
// read-only. All values are in [0, 1].
type ConfidenceScore struct {
	Overall float64                     `json:"overall"`
	Fields  map[ConfidenceField]float64 `json:"fields"`
}

// Field returns the confidence for one field, or 1.0 when the extractor
// reported nothing for it (absence of a score is not evidence of a problem).
func (c ConfidenceScore) Field(f ConfidenceField) float64 {
	if v, ok := c.Fields[f]; ok {
		return v
	}
	return 1.0
}

// ReceiptStatus is the processing state of a receipt. Transitions are driven
// by the extraction pipeline and move forward only, except that failed
// receipts may be re-queued.
type ReceiptStatus string

const (
	StatusPending    ReceiptStatus = "pending"
	StatusProcessing ReceiptStatus = "processing"
	StatusCompleted  ReceiptStatus = "completed"
	StatusFailed     ReceiptStatus = "failed"
	StatusManual     ReceiptStatus = "manual"
)

// Receipt wraps one extraction result with identity and pipeline state.
// The ledger aggregator treats each Receipt as an immutable value for the
// duration of an aggregation pass.
type Receipt struct {
	ID        string        `json:"id"`
	Status    ReceiptStatus `json:"status"`
	ImageURI  string        `json:"image_uri,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Data       ExtractedData   `json:"data"`
	Confidence ConfidenceScore `json:"confidence"`

	NeedsReview bool   `json:"needs_review"`
	Notes       string `json:"notes,omitempty"`
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// reach shared slices.
func (r Receipt) Clone() Receipt {
	out := r
	if r.Data.TNumber != nil {
		t := *r.Data.TNumber
		out.Data.TNumber = &t
	}
	if r.Data.TaxBreakdown != nil {
		out.Data.TaxBreakdown = append([]TaxBreakdownEntry(nil), r.Data.TaxBreakdown...)
	}
	if r.Data.LineItems != nil {
		out.Data.LineItems = append([]LineItem(nil), r.Data.LineItems...)
	}
	if r.Confidence.Fields != nil {
		fields := make(map[ConfidenceField]float64, len(r.Confidence.Fields))
		for k, v := range r.Confidence.Fields {
			fields[k] = v
		}
		out.Confidence.Fields = fields
	}
	return out
}
