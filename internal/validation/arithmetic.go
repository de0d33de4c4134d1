package validation

import (
	"fmt"

	"github.com/tsaito/receipt-ledger/internal/domain"
)

// AmountTolerance is the absolute rounding slack, in yen, allowed between
// the receipt total and the reconstructed sums. Per-line rounding of the
// consumption tax legitimately drifts by up to one yen.
const AmountTolerance = 1

// legalRates is the fixed set of consumption tax rates. Anything else on a
// receipt is corrupted extraction, not rounding noise.
var legalRates = map[int]bool{8: true, 10: true}

// ValidateArithmetic checks the internal numeric consistency of one
// extraction: total = subtotal + Σ tax within tolerance, Σ per-rate totals =
// total within tolerance, and every rate in the legal set. The two mismatch
// checks are independent warnings; an out-of-domain rate is a hard error.
func ValidateArithmetic(data domain.ExtractedData) Result {
	res := Result{IsValid: true}

	var sumTax, sumTotal int64
	for _, entry := range data.TaxBreakdown {
		if !legalRates[entry.Rate] {
			res.addError(fmt.Sprintf("invalid tax rate %d%%", entry.Rate))
		}
		sumTax += entry.TaxAmount
		sumTotal += entry.Total
	}

	// Holds with an empty breakdown too: a receipt carrying no tax lines
	// must have total equal to subtotal, give or take rounding.
	if diff := abs(data.TotalAmount - data.SubtotalExcludingTax - sumTax); diff > AmountTolerance {
		res.AddWarning(WarnTaxMismatch, map[string]interface{}{
			"total":    data.TotalAmount,
			"subtotal": data.SubtotalExcludingTax,
			"tax_sum":  sumTax,
			"diff":     diff,
		})
	}

	// Per-rate totals can only be reconciled when a breakdown is present.
	if len(data.TaxBreakdown) > 0 {
		if diff := abs(sumTotal - data.TotalAmount); diff > AmountTolerance {
			res.AddWarning(WarnTotalMismatch, map[string]interface{}{
				"total":         data.TotalAmount,
				"breakdown_sum": sumTotal,
				"diff":          diff,
			})
		}
	}

	return res
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
