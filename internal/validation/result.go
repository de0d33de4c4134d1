// Package validation checks extracted receipt data against the consumption
// tax arithmetic and mandatory-field rules, and decides whether a receipt
// needs human review. All checks are pure functions over ExtractedData;
// expected business conditions come back as structured results, never as
// errors.
package validation

// WarningKind tags a structured warning. Warnings stay as tagged variants
// with parameter maps so presentation can localize them later; nothing in
// this package ever renders user-facing text.
type WarningKind string

const (
	// WarnMissingTNumber: the receipt carries no registration number.
	// Normal for simplified receipts below the registration threshold.
	WarnMissingTNumber WarningKind = "missing_t_number"

	// WarnTaxMismatch: total − subtotal disagrees with the summed tax
	// amounts beyond the 1-yen rounding tolerance.
	WarnTaxMismatch WarningKind = "tax_calculation_mismatch"

	// WarnTotalMismatch: the per-rate totals do not sum to the receipt
	// total beyond the 1-yen tolerance.
	WarnTotalMismatch WarningKind = "total_mismatch"

	// WarnDepreciationRequired: the amount crosses the high-value asset
	// threshold and the purchase looks like equipment.
	WarnDepreciationRequired WarningKind = "depreciation_required"
)

// Warning is one structured validation warning.
type Warning struct {
	Kind   WarningKind            `json:"kind"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Result is the outcome of validating one extraction. Warnings never flip
// IsValid; only hard errors do.
type Result struct {
	IsValid  bool      `json:"is_valid"`
	Errors   []string  `json:"errors,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`
}

func (r *Result) addError(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

// AddWarning appends a structured warning. The pipeline also calls this to
// attach the depreciation advisory after classification.
func (r *Result) AddWarning(kind WarningKind, params map[string]interface{}) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Params: params})
}

// HasWarning reports whether the result carries a warning of the given kind.
func (r Result) HasWarning(kind WarningKind) bool {
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// Merge folds another result into this one. Used to combine the field and
// arithmetic validators into one outcome.
func (r *Result) Merge(other Result) {
	if !other.IsValid {
		r.IsValid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
