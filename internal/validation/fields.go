package validation

import (
	"regexp"
	"strings"

	"github.com/tsaito/receipt-ledger/internal/domain"
)

// tNumberPattern is the qualified-invoice registration number shape:
// one "T" prefix followed by exactly 13 digits.
var tNumberPattern = regexp.MustCompile(`^T\d{13}$`)

// ValidateFields checks the mandatory fields and the registration-number
// format. Absence of a T-number is only a warning (legitimate for simplified
// receipts); a present but malformed one is a hard error. That asymmetry is
// the business rule: absence is normal, corruption is not.
func ValidateFields(data domain.ExtractedData) Result {
	res := Result{IsValid: true}

	if strings.TrimSpace(data.IssuerName) == "" {
		res.addError("issuer name is required")
	}
	if data.TransactionDate.IsZero() {
		res.addError("transaction date is required")
	}
	if data.TotalAmount <= 0 {
		res.addError("total amount must be positive")
	}

	if data.TNumber == nil {
		res.AddWarning(WarnMissingTNumber, nil)
	} else if !tNumberPattern.MatchString(*data.TNumber) {
		res.addError("malformed registration number: " + *data.TNumber)
	}

	return res
}

// Validate runs the field and arithmetic validators and merges their
// outcomes into one result.
func Validate(data domain.ExtractedData) Result {
	res := ValidateFields(data)
	res.Merge(ValidateArithmetic(data))
	return res
}
