package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
)

// transformModelOutput converts the raw model JSON into typed extraction
// values. Wrong types are errors, since that is corrupted output rather than
// a business condition; unreadable business values (null date, null t_number)
// pass through for the validators to judge.
func transformModelOutput(raw map[string]interface{}) (domain.ExtractedData, domain.ConfidenceScore, error) {
	var data domain.ExtractedData
	var conf domain.ConfidenceScore

	issuer, err := getStringField(raw, "issuer_name", false)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}
	data.IssuerName = issuer

	data.TNumber, err = getOptionalStringField(raw, "t_number")
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}

	dateStr, err := getOptionalStringField(raw, "transaction_date")
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}
	if dateStr != nil {
		date, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			return data, conf, fmt.Errorf("transformModelOutput: invalid transaction_date %q: %w", *dateStr, err)
		}
		data.TransactionDate = date
	}

	data.SubtotalExcludingTax, err = getInt64Field(raw, "subtotal_excluding_tax", false)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}
	data.TotalAmount, err = getInt64Field(raw, "total_amount", false)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}

	data.TaxBreakdown, err = transformTaxBreakdown(raw)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}

	catStr, err := getStringField(raw, "category", false)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}
	data.SuggestedCategory = category.Parse(catStr)

	data.CategoryConfidence, err = getFloat64Field(raw, "category_confidence", false)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}

	data.LineItems, err = transformLineItems(raw)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}

	payment, err := getOptionalStringField(raw, "payment_method")
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}
	if payment != nil {
		data.PaymentMethod = *payment
	}

	conf, err = transformConfidence(raw)
	if err != nil {
		return data, conf, fmt.Errorf("transformModelOutput: %w", err)
	}

	return data, conf, nil
}

func transformTaxBreakdown(raw map[string]interface{}) ([]domain.TaxBreakdownEntry, error) {
	v, ok := raw["tax_breakdown"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field \"tax_breakdown\" has type %T, want array", v)
	}

	entries := make([]domain.TaxBreakdownEntry, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tax_breakdown[%d] has type %T, want object", i, item)
		}
		rate, err := getInt64Field(obj, "rate", true)
		if err != nil {
			return nil, fmt.Errorf("tax_breakdown[%d]: %w", i, err)
		}
		subtotal, err := getInt64Field(obj, "subtotal", false)
		if err != nil {
			return nil, fmt.Errorf("tax_breakdown[%d]: %w", i, err)
		}
		taxAmount, err := getInt64Field(obj, "tax_amount", false)
		if err != nil {
			return nil, fmt.Errorf("tax_breakdown[%d]: %w", i, err)
		}
		total, err := getInt64Field(obj, "total", false)
		if err != nil {
			return nil, fmt.Errorf("tax_breakdown[%d]: %w", i, err)
		}
		entries = append(entries, domain.TaxBreakdownEntry{
			Rate:      int(rate),
			Subtotal:  subtotal,
			TaxAmount: taxAmount,
			Total:     total,
		})
	}
	return entries, nil
}

func transformLineItems(raw map[string]interface{}) ([]domain.LineItem, error) {
	v, ok := raw["line_items"]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field \"line_items\" has type %T, want array", v)
	}

	items := make([]domain.LineItem, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("line_items[%d] has type %T, want object", i, item)
		}
		name, err := getStringField(obj, "name", true)
		if err != nil {
			return nil, fmt.Errorf("line_items[%d]: %w", i, err)
		}
		qty, err := getInt64Field(obj, "quantity", false)
		if err != nil {
			return nil, fmt.Errorf("line_items[%d]: %w", i, err)
		}
		price, err := getInt64Field(obj, "price", false)
		if err != nil {
			return nil, fmt.Errorf("line_items[%d]: %w", i, err)
		}
		items = append(items, domain.LineItem{Name: name, Quantity: int(qty), Price: price})
	}
	return items, nil
}

func transformConfidence(raw map[string]interface{}) (domain.ConfidenceScore, error) {
	var conf domain.ConfidenceScore

	v, ok := raw["confidence"]
	if !ok || v == nil {
		// Missing confidence block: treat everything as uncertain so the
		// review policy flags the receipt.
		return domain.ConfidenceScore{Overall: 0}, nil
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return conf, fmt.Errorf("field \"confidence\" has type %T, want object", v)
	}

	overall, err := getFloat64Field(obj, "overall", false)
	if err != nil {
		return conf, err
	}
	conf.Overall = clamp01(overall)

	fieldsAny, ok := obj["fields"]
	if !ok || fieldsAny == nil {
		return conf, nil
	}
	fieldsObj, ok := fieldsAny.(map[string]interface{})
	if !ok {
		return conf, fmt.Errorf("field \"confidence.fields\" has type %T, want object", fieldsAny)
	}

	conf.Fields = make(map[domain.ConfidenceField]float64, len(fieldsObj))
	for key := range fieldsObj {
		f, err := getFloat64Field(fieldsObj, key, false)
		if err != nil {
			return conf, fmt.Errorf("confidence.fields[%q]: %w", key, err)
		}
		conf.Fields[domain.ConfidenceField(key)] = clamp01(f)
	}
	return conf, nil
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

// getInt64Field reads a yen amount. encoding/json decodes numbers as
// float64; fractional yen is a type error because the currency has no
// sub-unit.
func getInt64Field(m map[string]interface{}, key string, required bool) (int64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("field %q is %v, want whole yen", key, val)
		}
		return int64(val), nil
	case int:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
