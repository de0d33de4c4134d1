// Package category defines the canonical expense-category enumeration and
// the mapping from categories to statutory ledger columns. Both the
// depreciation classifier and the ledger aggregator consult the same table
// here so the two can never drift apart.
package category

import "strings"

// Category is one of the closed set of official bookkeeping categories,
// modeled on the blue-return (青色申告) simplified ledger columns.
type Category string

const (
	Sales         Category = "sales"          // 売上
	MiscIncome    Category = "misc_income"    // 雑収入
	Purchases     Category = "purchases"      // 仕入
	Wages         Category = "wages"          // 給料賃金
	Outsourcing   Category = "outsourcing"    // 外注工賃
	Rent          Category = "rent"           // 地代家賃
	Utilities     Category = "utilities"      // 水道光熱費
	Travel        Category = "travel"         // 旅費交通費
	Communication Category = "communication"  // 通信費
	Advertising   Category = "advertising"    // 広告宣伝費
	Entertainment Category = "entertainment"  // 接待交際費
	Insurance     Category = "insurance"      // 損害保険料
	Repairs       Category = "repairs"        // 修繕費
	Consumables   Category = "consumables"    // 消耗品費
	TaxesAndDues  Category = "taxes_dues"     // 租税公課
	Freight       Category = "freight"        // 荷造運賃
	Interest      Category = "interest"       // 利子割引料
	Welfare       Category = "welfare"        // 福利厚生費
	Miscellaneous Category = "miscellaneous"  // 雑費
	Uncategorized Category = "uncategorized"  // extractor could not decide
)

// All lists the canonical enumeration in ledger-column order.
var All = []Category{
	Sales, MiscIncome, Purchases,
	Wages, Outsourcing, Rent, Utilities, Travel, Communication,
	Advertising, Entertainment, Insurance, Repairs, Consumables,
	TaxesAndDues, Freight, Interest, Welfare, Miscellaneous,
	Uncategorized,
}

var valid = func() map[Category]bool {
	m := make(map[Category]bool, len(All))
	for _, c := range All {
		m[c] = true
	}
	return m
}()

// IsValid reports whether c belongs to the canonical enumeration.
func IsValid(c Category) bool {
	return valid[c]
}

// Parse normalizes a raw string into a canonical Category. Unknown values,
// including values from retired enumerations, fall through MigrateLegacy;
// anything still unknown becomes Uncategorized.
func Parse(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if valid[c] {
		return c
	}
	if migrated, ok := MigrateLegacy(string(c)); ok {
		return migrated
	}
	return Uncategorized
}

// legacyAliases maps values from the two retired category enumerations onto
// the canonical set. Stored receipts from before the consolidation still
// carry these values.
var legacyAliases = map[string]Category{
	// first-generation names
	"supplies":        Consumables,
	"office_supplies": Consumables,
	"transportation":  Travel,
	"phone_internet":  Communication,
	"ads":             Advertising,
	"meeting":         Entertainment,
	"other":           Miscellaneous,
	"none":            Uncategorized,

	// second-generation names
	"travel_expenses":      Travel,
	"advertising_expenses": Advertising,
	"utility_costs":        Utilities,
	"rent_expenses":        Rent,
	"subcontracting":       Outsourcing,
	"public_dues":          TaxesAndDues,
	"shipping":             Freight,
	"revenue":              Sales,
	"other_income":         MiscIncome,
}

// MigrateLegacy maps a retired enumeration value to its canonical category.
func MigrateLegacy(raw string) (Category, bool) {
	c, ok := legacyAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}
