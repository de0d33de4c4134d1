// Package depreciation decides whether a purchase crosses the high-value
// asset threshold and which depreciation regime applies. The small-asset
// immediate-expensing limit changes at a statutory cutover date, so the
// limit is looked up from an ordered effective-from table rather than
// hardcoded against one date.
package depreciation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tsaito/receipt-ledger/internal/category"
	"github.com/tsaito/receipt-ledger/internal/domain"
)

// Method tags a depreciation regime. Tests and downstream consumers assert
// on the tag; the note text is advisory only.
type Method string

const (
	// MethodImmediate: expensed in full in the purchase year under the
	// small-asset special measure.
	MethodImmediate Method = "immediate"

	// MethodLumpSum: pooled and written off evenly over three years
	// (一括償却資産).
	MethodLumpSum Method = "lumpsum"

	// MethodStandard: regular depreciation over the statutory useful
	// life, with mandatory entry in the fixed-asset register.
	MethodStandard Method = "standard"
)

// LimitEntry is one row of the date-dependent limit table.
type LimitEntry struct {
	EffectiveFrom time.Time
	Limit         int64 // yen
}

// Config carries the yen limits and their cutover dates. The host injects
// these; future law changes become new table entries, not code edits.
type Config struct {
	// EquipmentThreshold is the amount at or above which a purchase is
	// treated as a high-value asset at all.
	EquipmentThreshold int64

	// SmallAssetLimits is the immediate-expensing limit over time, sorted
	// ascending by EffectiveFrom. The amount in force on a given day is
	// the last entry whose EffectiveFrom is not after that day.
	SmallAssetLimits []LimitEntry

	// LumpSumBand is the width of the lump-sum regime above the
	// immediate-expensing limit.
	LumpSumBand int64
}

// DefaultConfig reflects the rules in force around the 2026-04-01 revision:
// the immediate-expensing limit rises from ¥200,000 to ¥300,000.
func DefaultConfig() Config {
	return Config{
		EquipmentThreshold: 100_000,
		SmallAssetLimits: []LimitEntry{
			{EffectiveFrom: time.Time{}, Limit: 200_000},
			{EffectiveFrom: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), Limit: 300_000},
		},
		LumpSumBand: 200_000,
	}
}

// Classifier applies the depreciation rules for one Config.
type Classifier struct {
	cfg Config
}

// NewClassifier builds a classifier. The limit table is sorted so callers
// can pass entries in any order.
func NewClassifier(cfg Config) *Classifier {
	entries := append([]LimitEntry(nil), cfg.SmallAssetLimits...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EffectiveFrom.Before(entries[j].EffectiveFrom)
	})
	cfg.SmallAssetLimits = entries
	return &Classifier{cfg: cfg}
}

// IsEligible reports whether the amount crosses the high-value asset
// threshold.
func (c *Classifier) IsEligible(total int64) bool {
	return total >= c.cfg.EquipmentThreshold
}

// equipmentKeywords is the fallback list for uncategorized receipts. OCR
// sometimes fails to categorize obviously-equipment purchases; matching any
// of these nouns pulls the receipt into depreciation consideration. Recall
// matters here, not precision: a false positive just asks a human to look.
var equipmentKeywords = []string{
	"パソコン", "ノートpc", "カメラ", "プリンター", "プリンタ", "モニター",
	"ディスプレイ", "サーバー", "複合機", "エアコン", "冷蔵庫", "デスク", "チェア",
	"computer", "laptop", "camera", "printer", "monitor", "server", "desk", "chair",
}

// RequiresConsideration reports whether the receipt should carry a
// depreciation advisory: the amount is eligible AND the purchase looks like
// equipment, either because the category says consumables or because an
// uncategorized receipt mentions an equipment noun.
func (c *Classifier) RequiresConsideration(data domain.ExtractedData) bool {
	if !c.IsEligible(data.TotalAmount) {
		return false
	}
	switch data.SuggestedCategory {
	case category.Consumables:
		return true
	case category.Uncategorized:
		return containsEquipmentKeyword(data)
	}
	return false
}

func containsEquipmentKeyword(data domain.ExtractedData) bool {
	text := strings.ToLower(data.IssuerName)
	for _, item := range data.LineItems {
		text += "\n" + strings.ToLower(item.Name)
	}
	for _, kw := range equipmentKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Note is the machine-checkable outcome of regime selection.
type Note struct {
	Method Method `json:"method"`

	// RequiresRegistration is set only for standard depreciation, which
	// obliges an entry in the fixed-asset register.
	RequiresRegistration bool `json:"requires_registration"`

	// Text is a human-readable advisory. Never assert on it.
	Text string `json:"text"`
}

// SmallAssetLimitFor returns the immediate-expensing limit in force on the
// given day.
func (c *Classifier) SmallAssetLimitFor(day time.Time) int64 {
	var limit int64
	for _, e := range c.cfg.SmallAssetLimits {
		if e.EffectiveFrom.After(day) {
			break
		}
		limit = e.Limit
	}
	return limit
}

// Note selects the depreciation regime for an amount as of the given day.
// Below the equipment threshold it returns nil: no asset treatment applies.
// The three regimes are mutually exclusive bands above the threshold.
func (c *Classifier) Note(amount int64, asOf time.Time) *Note {
	if amount < c.cfg.EquipmentThreshold {
		return nil
	}

	limit := c.SmallAssetLimitFor(asOf)
	switch {
	case amount < limit:
		return &Note{
			Method: MethodImmediate,
			Text:   fmt.Sprintf("少額減価償却資産: ¥%d は全額を本年の経費にできます (限度額 ¥%d)", amount, limit),
		}
	case amount < limit+c.cfg.LumpSumBand:
		return &Note{
			Method: MethodLumpSum,
			Text:   fmt.Sprintf("一括償却資産: ¥%d は3年間で均等償却します", amount),
		}
	default:
		return &Note{
			Method:               MethodStandard,
			RequiresRegistration: true,
			Text:                 fmt.Sprintf("固定資産: ¥%d は法定耐用年数で償却し、固定資産台帳への登録が必要です", amount),
		}
	}
}
