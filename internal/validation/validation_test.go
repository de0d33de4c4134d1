package validation

import (
	"testing"
	"time"

	"github.com/tsaito/receipt-ledger/internal/domain"
)

func strPtr(s string) *string { return &s }

func validData() domain.ExtractedData {
	return domain.ExtractedData{
		IssuerName:           "株式会社テスト商事",
		TNumber:              strPtr("T1234567890123"),
		TransactionDate:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		SubtotalExcludingTax: 9091,
		TotalAmount:          10000,
		TaxBreakdown: []domain.TaxBreakdownEntry{
			{Rate: 10, Subtotal: 9091, TaxAmount: 909, Total: 10000},
		},
	}
}

func TestValidateArithmetic(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*domain.ExtractedData)
		wantValid   bool
		wantWarning WarningKind
	}{
		{
			name:      "consistent single rate receipt",
			mutate:    func(d *domain.ExtractedData) {},
			wantValid: true,
		},
		{
			name: "one yen rounding drift is tolerated",
			mutate: func(d *domain.ExtractedData) {
				d.TotalAmount = 10001
				d.TaxBreakdown[0].Total = 10001
			},
			wantValid: true,
		},
		{
			name: "tax sum mismatch beyond tolerance",
			mutate: func(d *domain.ExtractedData) {
				d.SubtotalExcludingTax = 9000
				d.TaxBreakdown[0].Subtotal = 9000
				d.TaxBreakdown[0].TaxAmount = 900
				d.TaxBreakdown[0].Total = 9900
			},
			wantValid:   true,
			wantWarning: WarnTaxMismatch,
		},
		{
			name: "breakdown total mismatch beyond tolerance",
			mutate: func(d *domain.ExtractedData) {
				d.TaxBreakdown[0].Total = 9500
			},
			wantValid:   true,
			wantWarning: WarnTotalMismatch,
		},
		{
			name: "mixed legal rates reconcile",
			mutate: func(d *domain.ExtractedData) {
				d.SubtotalExcludingTax = 10000
				d.TotalAmount = 10880
				d.TaxBreakdown = []domain.TaxBreakdownEntry{
					{Rate: 8, Subtotal: 6000, TaxAmount: 480, Total: 6480},
					{Rate: 10, Subtotal: 4000, TaxAmount: 400, Total: 4400},
				}
			},
			wantValid: true,
		},
		{
			name: "illegal rate is a hard error",
			mutate: func(d *domain.ExtractedData) {
				d.TaxBreakdown[0].Rate = 5
			},
			wantValid: false,
		},
		{
			name: "no breakdown with total equal to subtotal",
			mutate: func(d *domain.ExtractedData) {
				d.TaxBreakdown = nil
				d.SubtotalExcludingTax = 10000
			},
			wantValid: true,
		},
		{
			name: "no breakdown with diverging total still warns",
			mutate: func(d *domain.ExtractedData) {
				d.TaxBreakdown = nil
			},
			wantValid:   true,
			wantWarning: WarnTaxMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validData()
			tt.mutate(&data)

			res := ValidateArithmetic(data)
			if res.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", res.IsValid, tt.wantValid, res.Errors)
			}
			if tt.wantWarning != "" && !res.HasWarning(tt.wantWarning) {
				t.Errorf("expected warning %q, got %v", tt.wantWarning, res.Warnings)
			}
			if tt.wantWarning == "" && tt.wantValid && len(res.Warnings) > 0 {
				t.Errorf("unexpected warnings: %v", res.Warnings)
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*domain.ExtractedData)
		wantValid   bool
		wantWarning WarningKind
	}{
		{
			name:      "complete receipt",
			mutate:    func(d *domain.ExtractedData) {},
			wantValid: true,
		},
		{
			name:        "missing registration number warns only",
			mutate:      func(d *domain.ExtractedData) { d.TNumber = nil },
			wantValid:   true,
			wantWarning: WarnMissingTNumber,
		},
		{
			name:      "malformed registration number is a hard error",
			mutate:    func(d *domain.ExtractedData) { d.TNumber = strPtr("T123") },
			wantValid: false,
		},
		{
			name:      "registration number with fourteen digits rejected",
			mutate:    func(d *domain.ExtractedData) { d.TNumber = strPtr("T12345678901234") },
			wantValid: false,
		},
		{
			name:      "missing issuer",
			mutate:    func(d *domain.ExtractedData) { d.IssuerName = "  " },
			wantValid: false,
		},
		{
			name:      "missing date",
			mutate:    func(d *domain.ExtractedData) { d.TransactionDate = time.Time{} },
			wantValid: false,
		},
		{
			name: "non-positive total",
			mutate: func(d *domain.ExtractedData) {
				d.TotalAmount = 0
				d.TaxBreakdown = nil
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validData()
			tt.mutate(&data)

			res := ValidateFields(data)
			if res.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", res.IsValid, tt.wantValid, res.Errors)
			}
			if tt.wantWarning != "" && !res.HasWarning(tt.wantWarning) {
				t.Errorf("expected warning %q, got %v", tt.wantWarning, res.Warnings)
			}
		})
	}
}

func TestReviewPolicy_NeedsReview(t *testing.T) {
	policy := DefaultReviewPolicy
	cleanResult := Result{IsValid: true}

	highConf := domain.ConfidenceScore{
		Overall: 0.95,
		Fields: map[domain.ConfidenceField]float64{
			domain.FieldTNumber: 0.95,
			domain.FieldTotal:   0.95,
		},
	}

	tests := []struct {
		name string
		conf domain.ConfidenceScore
		res  Result
		want bool
	}{
		{
			name: "confident and clean",
			conf: highConf,
			res:  cleanResult,
			want: false,
		},
		{
			name: "overall confidence below floor",
			conf: domain.ConfidenceScore{Overall: 0.70},
			res:  cleanResult,
			want: true,
		},
		{
			name: "registration number confidence below floor",
			conf: domain.ConfidenceScore{
				Overall: 0.95,
				Fields:  map[domain.ConfidenceField]float64{domain.FieldTNumber: 0.60},
			},
			res:  cleanResult,
			want: true,
		},
		{
			name: "total confidence below floor",
			conf: domain.ConfidenceScore{
				Overall: 0.95,
				Fields:  map[domain.ConfidenceField]float64{domain.FieldTotal: 0.79},
			},
			res:  cleanResult,
			want: true,
		},
		{
			name: "unreported fields default to confident",
			conf: domain.ConfidenceScore{Overall: 0.95},
			res:  cleanResult,
			want: false,
		},
		{
			name: "any warning forces review",
			conf: highConf,
			res: Result{
				IsValid:  true,
				Warnings: []Warning{{Kind: WarnMissingTNumber}},
			},
			want: true,
		},
		{
			name: "any error forces review",
			conf: highConf,
			res: Result{
				IsValid: false,
				Errors:  []string{"issuer name is required"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.NeedsReview(tt.conf, tt.res); got != tt.want {
				t.Errorf("NeedsReview() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateMergesFieldAndArithmeticFindings(t *testing.T) {
	data := validData()
	data.TNumber = nil
	data.TaxBreakdown[0].Total = 9000

	res := Validate(data)
	if !res.IsValid {
		t.Fatalf("expected valid result with warnings, got errors: %v", res.Errors)
	}
	if !res.HasWarning(WarnMissingTNumber) {
		t.Error("missing t-number warning not merged")
	}
	if !res.HasWarning(WarnTotalMismatch) {
		t.Error("total mismatch warning not merged")
	}
}
