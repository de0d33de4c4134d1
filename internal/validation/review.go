package validation

import "github.com/tsaito/receipt-ledger/internal/domain"

// ReviewPolicy decides when a receipt must be routed to a human. The policy
// is deliberately conservative: any warning at all forces review, trading
// false positives for never silently accepting bad data.
type ReviewPolicy struct {
	// MinOverall is the floor for the extractor's overall confidence.
	MinOverall float64

	// MinCriticalField is the floor for the registration-number and
	// total-amount field confidences. Other fields are not checked
	// individually.
	MinCriticalField float64
}

// DefaultReviewPolicy matches the thresholds the bookkeeping flow was tuned
// with.
var DefaultReviewPolicy = ReviewPolicy{
	MinOverall:       0.75,
	MinCriticalField: 0.80,
}

// NeedsReview is a pure function of confidence and validation outcome. It
// must be recomputed after every re-validation, never cached.
func (p ReviewPolicy) NeedsReview(conf domain.ConfidenceScore, res Result) bool {
	if conf.Overall < p.MinOverall {
		return true
	}
	if conf.Field(domain.FieldTNumber) < p.MinCriticalField {
		return true
	}
	if conf.Field(domain.FieldTotal) < p.MinCriticalField {
		return true
	}
	if len(res.Errors) > 0 {
		return true
	}
	if len(res.Warnings) > 0 {
		return true
	}
	return false
}
